package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientFrameRoundTrip(t *testing.T) {
	frames := []ClientFrame{
		JoinRoom{RoomID: "general"},
		ChatMessage{MessageID: 42, RoomID: "general", Username: "ana(55123)", Contents: "hello"},
		ReceivedReceipt{MessageID: 7, RoomID: "general"},
		ReadReceipt{MessageID: 7, RoomID: "general"},
	}

	for _, want := range frames {
		got, err := ReadClientFrame(bytes.NewReader(Encode(want)))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestServerFrameRoundTrip(t *testing.T) {
	frames := []ServerFrame{
		PeerChatMessage{MessageID: 42, Username: "ana(55123)", Contents: "hello"},
		MessageDelivered{MessageID: 3},
		MessageRead{MessageID: 3},
	}

	for _, want := range frames {
		got, err := ReadServerFrame(bytes.NewReader(Encode(want)))
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestLengthPrefixCountsBytesNotRunes(t *testing.T) {
	// 4 runes, 12 bytes
	contents := "日本語テ"
	raw := Encode(ChatMessage{MessageID: 0, RoomID: "général", Username: "ü", Contents: contents})

	got, err := ReadClientFrame(bytes.NewReader(raw))
	require.NoError(t, err)
	require.Equal(t, contents, got.(ChatMessage).Contents)
	require.Equal(t, "général", got.(ChatMessage).RoomID)
}

func TestUnknownKindIsFatal(t *testing.T) {
	_, err := ReadClientFrame(bytes.NewReader([]byte{0x7f}))
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = ReadServerFrame(bytes.NewReader([]byte{0xff}))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestJoinRoomNeverDecodesOnClientSide(t *testing.T) {
	_, err := ReadServerFrame(bytes.NewReader(Encode(JoinRoom{RoomID: "general"})))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestTruncatedFrameFailsDecode(t *testing.T) {
	raw := Encode(ChatMessage{MessageID: 9, RoomID: "general", Username: "bo(1024)", Contents: "hi"})

	// Every strict prefix of the frame (beyond the kind byte) must fail,
	// never decode to a partial message.
	for cut := 1; cut < len(raw); cut++ {
		_, err := ReadClientFrame(bytes.NewReader(raw[:cut]))
		require.Error(t, err, "prefix of %d bytes decoded", cut)
		require.NotErrorIs(t, err, io.EOF)
	}
}

func TestCleanCloseBeforeFrameIsEOF(t *testing.T) {
	_, err := ReadClientFrame(bytes.NewReader(nil))
	require.ErrorIs(t, err, io.EOF)
}

func TestOversizedLengthPrefixRejected(t *testing.T) {
	var b bytes.Buffer
	b.WriteByte(byte(KindJoinRoom))
	b.Write([]byte{0xff, 0xff, 0xff, 0xff})

	_, err := ReadClientFrame(&b)
	require.ErrorIs(t, err, ErrFieldTooLong)
}

func TestDeliveredBodyIsTruncatedChatOnServerPath(t *testing.T) {
	// A bare id body under the shared discriminant cannot satisfy the
	// client-to-server receipt layout, which also carries a room id.
	_, err := ReadClientFrame(bytes.NewReader(Encode(MessageDelivered{MessageID: 1})))
	require.Error(t, err)
}
