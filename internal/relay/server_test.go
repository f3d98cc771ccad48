package relay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"parley/internal/protocol"
)

func startTestServer(t *testing.T) *Server {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(ln.Addr().String(), time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	go srv.Serve(ctx, ln)

	t.Cleanup(cancel)
	return srv
}

func dialAndJoin(t *testing.T, srv *Server, room string) net.Conn {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	_, err = conn.Write(protocol.Encode(protocol.JoinRoom{RoomID: room}))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return len(srv.Registry.Members(room)) > 0 &&
			contains(srv.Registry.Members(room), conn.LocalAddr().String())
	}, 2*time.Second, 10*time.Millisecond, "join was not registered")
	return conn
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestChatAndAcknowledgmentFlow(t *testing.T) {
	srv := startTestServer(t)

	connA := dialAndJoin(t, srv, "general")
	connB := dialAndJoin(t, srv, "general")

	// A sends a chat message; B is the only other member.
	_, err := connA.Write(protocol.Encode(protocol.ChatMessage{
		MessageID: 0, RoomID: "general", Username: "ana(1)", Contents: "hello",
	}))
	require.NoError(t, err)

	require.Equal(t,
		protocol.PeerChatMessage{MessageID: 0, Username: "ana(1)", Contents: "hello"},
		readServerFrame(t, connB))

	// B acknowledges delivery and then read; both notices reach A only.
	_, err = connB.Write(protocol.Encode(protocol.ReceivedReceipt{MessageID: 0, RoomID: "general"}))
	require.NoError(t, err)
	require.Equal(t, protocol.MessageDelivered{MessageID: 0}, readServerFrame(t, connA))

	_, err = connB.Write(protocol.Encode(protocol.ReadReceipt{MessageID: 0, RoomID: "general"}))
	require.NoError(t, err)
	require.Equal(t, protocol.MessageRead{MessageID: 0}, readServerFrame(t, connA))
}

func TestFirstFrameMustBeJoin(t *testing.T) {
	srv := startTestServer(t)

	conn, err := net.Dial("tcp", srv.Addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(protocol.Encode(protocol.ChatMessage{
		MessageID: 0, RoomID: "general", Username: "x(1)", Contents: "sneaky",
	}))
	require.NoError(t, err)

	requireClosed(t, conn)
}

func TestSecondJoinIsFatal(t *testing.T) {
	srv := startTestServer(t)

	conn := dialAndJoin(t, srv, "general")
	_, err := conn.Write(protocol.Encode(protocol.JoinRoom{RoomID: "general"}))
	require.NoError(t, err)

	requireClosed(t, conn)

	// Cleanup ran: the membership is gone.
	require.Eventually(t, func() bool {
		return len(srv.Registry.Members("general")) == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestViolatingConnectionDoesNotDisturbOthers(t *testing.T) {
	srv := startTestServer(t)

	connA := dialAndJoin(t, srv, "general")
	connB := dialAndJoin(t, srv, "general")

	// A third connection opens with an unrecognized discriminant.
	bad, err := net.Dial("tcp", srv.Addr)
	require.NoError(t, err)
	defer bad.Close()
	_, err = bad.Write([]byte{0xff})
	require.NoError(t, err)
	requireClosed(t, bad)

	// The joined pair keeps working.
	_, err = connA.Write(protocol.Encode(protocol.ChatMessage{
		MessageID: 0, RoomID: "general", Username: "ana(1)", Contents: "still here",
	}))
	require.NoError(t, err)
	require.Equal(t,
		protocol.PeerChatMessage{MessageID: 0, Username: "ana(1)", Contents: "still here"},
		readServerFrame(t, connB))
}

func TestDisconnectCleansUpMembership(t *testing.T) {
	srv := startTestServer(t)

	connA := dialAndJoin(t, srv, "general")
	connB := dialAndJoin(t, srv, "general")

	require.NoError(t, connA.Close())
	require.Eventually(t, func() bool {
		return len(srv.Registry.Members("general")) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Broadcasting into the now 1-member room reaches nobody and errors
	// nothing.
	_, err := connB.Write(protocol.Encode(protocol.ChatMessage{
		MessageID: 0, RoomID: "general", Username: "bo(2)", Contents: "anyone?",
	}))
	require.NoError(t, err)
	requireNoFrame(t, connB)
}

// requireClosed waits for the server to drop the connection.
func requireClosed(t *testing.T, conn net.Conn) {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 1)
	_, err := conn.Read(buf)
	require.Error(t, err, "connection was not closed by the server")
}
