package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Encode serializes a frame to its wire representation.
func Encode(f Frame) []byte {
	var b bytes.Buffer
	b.WriteByte(byte(f.Kind()))
	f.encodeBody(&b)
	return b.Bytes()
}

// ReadClientFrame decodes the next client-to-server frame from r. It is
// the only decode path the relay uses; discriminants that are valid in
// the other direction but carry a different body here fail as truncated
// or malformed frames. A clean close before the kind byte returns io.EOF.
func ReadClientFrame(r io.Reader) (ClientFrame, error) {
	kind, err := readKind(r)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindJoinRoom:
		room, err := readString(r)
		if err != nil {
			return nil, fmt.Errorf("decode JoinRoom: %w", err)
		}
		return JoinRoom{RoomID: room}, nil

	case KindChatMessage:
		m := ChatMessage{}
		if m.MessageID, err = readUint64(r); err == nil {
			if m.RoomID, err = readString(r); err == nil {
				if m.Username, err = readString(r); err == nil {
					m.Contents, err = readString(r)
				}
			}
		}
		if err != nil {
			return nil, fmt.Errorf("decode ChatMessage: %w", err)
		}
		return m, nil

	case KindMessageReceived:
		id, room, err := readReceipt(r)
		if err != nil {
			return nil, fmt.Errorf("decode MessageReceived: %w", err)
		}
		return ReceivedReceipt{MessageID: id, RoomID: room}, nil

	case KindMessageRead:
		id, room, err := readReceipt(r)
		if err != nil {
			return nil, fmt.Errorf("decode MessageRead: %w", err)
		}
		return ReadReceipt{MessageID: id, RoomID: room}, nil

	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownKind, byte(kind))
	}
}

// ReadServerFrame decodes the next server-to-client frame from r. The
// JoinRoom discriminant never travels in this direction and is rejected.
func ReadServerFrame(r io.Reader) (ServerFrame, error) {
	kind, err := readKind(r)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindChatMessage:
		m := PeerChatMessage{}
		if m.MessageID, err = readUint64(r); err == nil {
			if m.Username, err = readString(r); err == nil {
				m.Contents, err = readString(r)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("decode peer ChatMessage: %w", err)
		}
		return m, nil

	case KindMessageReceived:
		id, err := readUint64(r)
		if err != nil {
			return nil, fmt.Errorf("decode MessageDelivered: %w", err)
		}
		return MessageDelivered{MessageID: id}, nil

	case KindMessageRead:
		id, err := readUint64(r)
		if err != nil {
			return nil, fmt.Errorf("decode MessageRead: %w", err)
		}
		return MessageRead{MessageID: id}, nil

	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownKind, byte(kind))
	}
}

func readKind(r io.Reader) (Kind, error) {
	var b [1]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return Kind(b[0]), nil
}

func readReceipt(r io.Reader) (uint64, string, error) {
	id, err := readUint64(r)
	if err != nil {
		return 0, "", err
	}
	room, err := readString(r)
	if err != nil {
		return 0, "", err
	}
	return id, room, nil
}

func readUint64(r io.Reader) (uint64, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, noEOF(err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}

func readString(r io.Reader) (string, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return "", noEOF(err)
	}
	n := binary.BigEndian.Uint32(b[:])
	if n > MaxTextBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrFieldTooLong, n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", noEOF(err)
	}
	return string(buf), nil
}

// noEOF turns a clean EOF inside a frame body into ErrUnexpectedEOF so a
// truncated frame is never mistaken for a clean close.
func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func writeUint64(b *bytes.Buffer, v uint64) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], v)
	b.Write(n[:])
}

func writeString(b *bytes.Buffer, s string) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(s)))
	b.Write(n[:])
	b.WriteString(s)
}
