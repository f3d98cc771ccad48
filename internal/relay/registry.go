package relay

import (
	"log"
	"net"
	"sort"
	"sync"
	"time"

	"parley/internal/protocol"
)

// DefaultWriteTimeout bounds each per-peer write during fan-out so a
// stalled peer cannot hold up the rest of the room.
const DefaultWriteTimeout = 5 * time.Second

// member is one joined connection. The registry is the exclusive owner
// of the write side of conn; nothing else may write to it.
type member struct {
	connID string // correlation id for logs
	conn   net.Conn
}

// Registry holds the authoritative room-to-members mapping and performs
// all fan-out. A single mutex guards the maps, which also makes each
// broadcast atomic with respect to other broadcasts into the same room.
type Registry struct {
	mu           sync.Mutex
	rooms        map[string]map[string]*member // room id -> remote addr -> member
	authors      map[string]map[uint64]string  // room id -> message id -> author addr
	writeTimeout time.Duration
}

func NewRegistry(writeTimeout time.Duration) *Registry {
	if writeTimeout <= 0 {
		writeTimeout = DefaultWriteTimeout
	}
	return &Registry{
		rooms:        make(map[string]map[string]*member),
		authors:      make(map[string]map[uint64]string),
		writeTimeout: writeTimeout,
	}
}

// Join inserts the connection into the room, creating the room on first
// reference. Joining the same room twice with the same address is a
// no-op; the per-connection state machine prevents everything else.
func (reg *Registry) Join(roomID, addr, connID string, conn net.Conn) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		room = make(map[string]*member)
		reg.rooms[roomID] = room
		log.Printf("[ROOMS] room %q created", roomID)
	}
	room[addr] = &member{connID: connID, conn: conn}
	log.Printf("[ROOMS] %s joined room %q (%d members, conn %s)", addr, roomID, len(room), connID)
}

// Leave removes the membership and every author-index entry that points
// at it. Called from the connection handler on every exit path.
func (reg *Registry) Leave(roomID, addr string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return
	}
	if _, ok := room[addr]; !ok {
		return
	}
	delete(room, addr)
	for id, author := range reg.authors[roomID] {
		if author == addr {
			delete(reg.authors[roomID], id)
		}
	}
	log.Printf("[ROOMS] %s left room %q (%d members)", addr, roomID, len(room))
}

// Members returns the addresses currently joined to the room, sorted.
func (reg *Registry) Members(roomID string) []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	addrs := make([]string, 0, len(reg.rooms[roomID]))
	for addr := range reg.rooms[roomID] {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	return addrs
}

// BroadcastChat fans a chat message out to every room member except its
// sender and records the sender as the author of the message id, so
// later receipts can be routed back. An unknown room is a silent no-op.
func (reg *Registry) BroadcastChat(roomID, sender string, msg protocol.PeerChatMessage) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return
	}

	if reg.authors[roomID] == nil {
		reg.authors[roomID] = make(map[uint64]string)
	}
	// Ids are per-sender counters, so two senders can reuse an id; the
	// last writer wins.
	reg.authors[roomID][msg.MessageID] = sender

	reg.fanOut(roomID, room, sender, protocol.Encode(msg))
}

// RouteDelivered forwards a delivery notice for the given message id to
// the member that authored it. Without an author on record it falls back
// to broadcasting to the room minus the acker.
func (reg *Registry) RouteDelivered(roomID, acker string, messageID uint64) {
	reg.route(roomID, acker, messageID, protocol.Encode(protocol.MessageDelivered{MessageID: messageID}))
}

// RouteRead forwards a read notice the same way as RouteDelivered.
func (reg *Registry) RouteRead(roomID, acker string, messageID uint64) {
	reg.route(roomID, acker, messageID, protocol.Encode(protocol.MessageRead{MessageID: messageID}))
}

func (reg *Registry) route(roomID, acker string, messageID uint64, payload []byte) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomID]
	if !ok {
		return
	}

	if author, ok := reg.authors[roomID][messageID]; ok {
		if m, ok := room[author]; ok {
			if err := reg.writeTo(m, payload); err != nil {
				log.Printf("[ROOMS] dropping %s from room %q: write failed: %v", author, roomID, err)
				delete(room, author)
			}
			return
		}
	}
	reg.fanOut(roomID, room, acker, payload)
}

// fanOut writes payload to every member except exclude. Write failures
// are per-peer: the failing member is dropped and the rest still get the
// payload. Callers must hold reg.mu.
func (reg *Registry) fanOut(roomID string, room map[string]*member, exclude string, payload []byte) {
	var dead []string
	for addr, m := range room {
		if addr == exclude {
			continue
		}
		if err := reg.writeTo(m, payload); err != nil {
			log.Printf("[ROOMS] dropping %s from room %q: write failed: %v", addr, roomID, err)
			dead = append(dead, addr)
		}
	}
	for _, addr := range dead {
		delete(room, addr)
	}
}

func (reg *Registry) writeTo(m *member, payload []byte) error {
	if err := m.conn.SetWriteDeadline(time.Now().Add(reg.writeTimeout)); err != nil {
		return err
	}
	_, err := m.conn.Write(payload)
	return err
}
