// Package client implements the chat client core: it joins a room over
// one TCP connection, sends chat messages with per-connection ids, emits
// delivery and read receipts for peer messages automatically, and tracks
// the acknowledgment watermarks for its own messages.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"parley/internal/models"
	"parley/internal/protocol"
)

type Config struct {
	ServerAddr string
	Username   string
	Room       string
	// LocalPort pins the local end of the connection, which keeps the
	// "name(port)" identity stable across restarts. 0 means ephemeral.
	LocalPort int
}

// Handlers receives the events the core surfaces to the presentation
// layer. Nil callbacks are skipped. Callbacks run on the receive
// goroutine and must not block.
type Handlers struct {
	PeerMessage      func(models.PeerMessage)
	MessageSent      func(models.OwnMessageSent)
	MessageDelivered func(models.OwnMessageDelivered)
	MessageRead      func(models.OwnMessageRead)
}

type ChatClient struct {
	cfg      Config
	conn     net.Conn
	handlers Handlers
	acks     *AckTracker

	mu     sync.Mutex // serializes writes and guards nextID
	nextID uint64
}

// Dial connects to the relay and joins the configured room. The
// connection is in the message loop state when Dial returns.
func Dial(ctx context.Context, cfg Config, handlers Handlers) (*ChatClient, error) {
	conn, err := dial(ctx, cfg.ServerAddr, cfg.LocalPort)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}

	if _, err := conn.Write(protocol.Encode(protocol.JoinRoom{RoomID: cfg.Room})); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join room %q: %w", cfg.Room, err)
	}

	c := &ChatClient{
		cfg:      cfg,
		conn:     conn,
		handlers: handlers,
		acks:     NewAckTracker(),
	}
	log.Printf("[CLIENT] joined room %q on %s as %s", cfg.Room, cfg.ServerAddr, c.Username())
	return c, nil
}

// Username is the identity that travels on the wire: the configured name
// plus the local port, which disambiguates same-named clients on one
// host.
func (c *ChatClient) Username() string {
	port := 0
	if addr, ok := c.conn.LocalAddr().(*net.TCPAddr); ok {
		port = addr.Port
	}
	return fmt.Sprintf("%s(%d)", c.cfg.Username, port)
}

// Acks exposes the watermark tracker for the client's own messages.
func (c *ChatClient) Acks() *AckTracker {
	return c.acks
}

// Send assigns the next message id, hands the chat message to the relay
// and reports it to the MessageSent handler.
func (c *ChatClient) Send(contents string) (models.OwnMessageSent, error) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	sent := models.OwnMessageSent{
		MessageID: id,
		Username:  c.Username(),
		Contents:  contents,
		SentAt:    time.Now(),
	}
	_, err := c.conn.Write(protocol.Encode(protocol.ChatMessage{
		MessageID: id,
		RoomID:    c.cfg.Room,
		Username:  sent.Username,
		Contents:  contents,
	}))
	c.mu.Unlock()

	if err != nil {
		return models.OwnMessageSent{}, fmt.Errorf("send message %d: %w", id, err)
	}
	if c.handlers.MessageSent != nil {
		c.handlers.MessageSent(sent)
	}
	return sent, nil
}

// Run is the receive loop. It decodes server frames in arrival order,
// emits the automatic delivery receipt as soon as a peer message is
// decoded and the read receipt once it has been surfaced through the
// PeerMessage handler. Run returns nil on a clean server close.
func (c *ChatClient) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	for {
		frame, err := protocol.ReadServerFrame(c.conn)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("receive: %w", err)
		}

		switch m := frame.(type) {
		case protocol.PeerChatMessage:
			if err := c.write(protocol.ReceivedReceipt{MessageID: m.MessageID, RoomID: c.cfg.Room}); err != nil {
				return fmt.Errorf("delivery receipt for %d: %w", m.MessageID, err)
			}
			if c.handlers.PeerMessage != nil {
				c.handlers.PeerMessage(models.PeerMessage{
					Username:   m.Username,
					Contents:   m.Contents,
					ReceivedAt: time.Now(),
				})
			}
			if err := c.write(protocol.ReadReceipt{MessageID: m.MessageID, RoomID: c.cfg.Room}); err != nil {
				return fmt.Errorf("read receipt for %d: %w", m.MessageID, err)
			}

		case protocol.MessageDelivered:
			c.acks.MarkDelivered(m.MessageID)
			if c.handlers.MessageDelivered != nil {
				c.handlers.MessageDelivered(models.OwnMessageDelivered{MessageID: m.MessageID})
			}

		case protocol.MessageRead:
			c.acks.MarkRead(m.MessageID)
			if c.handlers.MessageRead != nil {
				c.handlers.MessageRead(models.OwnMessageRead{MessageID: m.MessageID})
			}
		}
	}
}

func (c *ChatClient) write(f protocol.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.conn.Write(protocol.Encode(f))
	return err
}

func (c *ChatClient) Close() error {
	return c.conn.Close()
}
