package relay

import (
	"errors"
	"io"
	"log"
	"net"

	"github.com/google/uuid"

	"parley/internal/protocol"
)

// handleConn runs the per-connection state machine:
//
//	Unjoined -> Joined(room) -> Closed
//
// The first frame must be JoinRoom; any other kind, a decode failure, or
// a second JoinRoom is a protocol violation that closes this connection
// only. Read errors and EOF close the connection without touching the
// rest of the server.
func (s *Server) handleConn(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	connID := uuid.NewString()
	defer conn.Close()

	log.Printf("[RELAY] connection from %s (conn %s)", addr, connID)

	// Unjoined: exactly one JoinRoom is acceptable here.
	first, err := protocol.ReadClientFrame(conn)
	if err != nil {
		logReadEnd(addr, connID, err)
		return
	}
	join, ok := first.(protocol.JoinRoom)
	if !ok {
		log.Printf("[RELAY] protocol violation from %s (conn %s): %v, got %T", addr, connID, ErrJoinRequired, first)
		return
	}

	s.Registry.Join(join.RoomID, addr, connID, conn)
	defer s.Registry.Leave(join.RoomID, addr)

	// Joined: frames are processed strictly in arrival order.
	for {
		frame, err := protocol.ReadClientFrame(conn)
		if err != nil {
			logReadEnd(addr, connID, err)
			return
		}

		switch m := frame.(type) {
		case protocol.JoinRoom:
			log.Printf("[RELAY] protocol violation from %s (conn %s): %v", addr, connID, ErrAlreadyJoined)
			return
		case protocol.ChatMessage:
			s.Registry.BroadcastChat(m.RoomID, addr, protocol.PeerChatMessage{
				MessageID: m.MessageID,
				Username:  m.Username,
				Contents:  m.Contents,
			})
		case protocol.ReceivedReceipt:
			s.Registry.RouteDelivered(m.RoomID, addr, m.MessageID)
		case protocol.ReadReceipt:
			s.Registry.RouteRead(m.RoomID, addr, m.MessageID)
		}
	}
}

func logReadEnd(addr, connID string, err error) {
	if errors.Is(err, io.EOF) {
		log.Printf("[RELAY] %s disconnected (conn %s)", addr, connID)
		return
	}
	log.Printf("[RELAY] closing %s (conn %s): %v", addr, connID, err)
}
