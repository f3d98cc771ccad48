// Package ui renders the conversation in the terminal. It consumes the
// events the client core emits and owns all formatting; no protocol
// logic lives here.
package ui

import (
	"fmt"
	"strings"
	"sync"

	"parley/internal/models"
)

// maxScrollback bounds the conversation history kept on screen.
const maxScrollback = 50

type entry struct {
	peer      bool
	messageID uint64 // own messages only
	username  string
	contents  string
	clock     string
	delivered bool
	read      bool
}

// Conversation is the render model behind the chat screen: a bounded
// scrollback plus the delivery state of this client's own messages.
type Conversation struct {
	mu      sync.Mutex
	entries []entry
}

func NewConversation() *Conversation {
	return &Conversation{}
}

func (c *Conversation) push(e entry) {
	c.entries = append(c.entries, e)
	if len(c.entries) > maxScrollback {
		c.entries = c.entries[1:]
	}
}

func (c *Conversation) PeerMessage(m models.PeerMessage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.push(entry{
		peer:     true,
		username: m.Username,
		contents: m.Contents,
		clock:    m.ReceivedAt.Format("15:04:05"),
	})
}

func (c *Conversation) MessageSent(m models.OwnMessageSent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.push(entry{
		messageID: m.MessageID,
		username:  m.Username,
		contents:  m.Contents,
		clock:     m.SentAt.Format("15:04:05"),
	})
}

// MessageDelivered applies the cumulative watermark: every own message
// with an id up to and including the acknowledged one is delivered.
func (c *Conversation) MessageDelivered(ev models.OwnMessageDelivered) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if !c.entries[i].peer && c.entries[i].messageID <= ev.MessageID {
			c.entries[i].delivered = true
		}
	}
}

func (c *Conversation) MessageRead(ev models.OwnMessageRead) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.entries {
		if !c.entries[i].peer && c.entries[i].messageID <= ev.MessageID {
			c.entries[i].read = true
		}
	}
}

// Render returns the full conversation text. Peer lines are indented;
// own lines carry ✓ once delivered and ✓✓ once read.
func (c *Conversation) Render() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for _, e := range c.entries {
		if e.peer {
			fmt.Fprintf(&b, "    [%s] %s: %s\n", e.clock, e.username, e.contents)
			continue
		}
		check := ""
		if e.read {
			check = "✓✓"
		} else if e.delivered {
			check = "✓"
		}
		fmt.Fprintf(&b, "[%s] %s %s: %s\n", e.clock, check, e.username, e.contents)
	}
	return b.String()
}
