// Package protocol implements the binary wire format spoken between the
// chat client and the relay.
//
// Every frame starts with a single kind byte followed by a kind-specific
// body. Text fields are prefixed with their byte length as a big-endian
// uint32; message ids are big-endian uint64. There is no overall frame
// length, so a decoder must know the layout of each kind to find the end
// of a frame.
package protocol

import "bytes"

// Kind is the leading discriminant byte of every frame.
type Kind byte

const (
	KindJoinRoom        Kind = 0
	KindChatMessage     Kind = 1
	KindMessageRead     Kind = 2
	KindMessageReceived Kind = 3
)

// MaxTextBytes bounds every length-prefixed text field on the wire. A
// decoded length above this is treated as a malformed frame.
const MaxTextBytes = 4096

// Frame is any message that can travel on the wire, in either direction.
type Frame interface {
	Kind() Kind
	encodeBody(b *bytes.Buffer)
}

// ClientFrame is a frame sent by the client and decoded by the relay.
type ClientFrame interface {
	Frame
	clientFrame()
}

// ServerFrame is a frame sent by the relay and decoded by the client.
type ServerFrame interface {
	Frame
	serverFrame()
}

// JoinRoom must be the first frame on every connection.
type JoinRoom struct {
	RoomID string
}

func (JoinRoom) Kind() Kind   { return KindJoinRoom }
func (JoinRoom) clientFrame() {}

func (m JoinRoom) encodeBody(b *bytes.Buffer) {
	writeString(b, m.RoomID)
}

// ChatMessage carries one chat message from its author to the relay.
// MessageID is a per-connection counter starting at 0; it is not unique
// across senders.
type ChatMessage struct {
	MessageID uint64
	RoomID    string
	Username  string
	Contents  string
}

func (ChatMessage) Kind() Kind   { return KindChatMessage }
func (ChatMessage) clientFrame() {}

func (m ChatMessage) encodeBody(b *bytes.Buffer) {
	writeUint64(b, m.MessageID)
	writeString(b, m.RoomID)
	writeString(b, m.Username)
	writeString(b, m.Contents)
}

// ReceivedReceipt is emitted by a client as soon as it has decoded a
// peer's chat message.
type ReceivedReceipt struct {
	MessageID uint64
	RoomID    string
}

func (ReceivedReceipt) Kind() Kind   { return KindMessageReceived }
func (ReceivedReceipt) clientFrame() {}

func (m ReceivedReceipt) encodeBody(b *bytes.Buffer) {
	writeUint64(b, m.MessageID)
	writeString(b, m.RoomID)
}

// ReadReceipt is emitted by a client once a peer's chat message has been
// surfaced to the presentation layer.
type ReadReceipt struct {
	MessageID uint64
	RoomID    string
}

func (ReadReceipt) Kind() Kind   { return KindMessageRead }
func (ReadReceipt) clientFrame() {}

func (m ReadReceipt) encodeBody(b *bytes.Buffer) {
	writeUint64(b, m.MessageID)
	writeString(b, m.RoomID)
}

// PeerChatMessage is a chat message relayed to the other room members.
type PeerChatMessage struct {
	MessageID uint64
	Username  string
	Contents  string
}

func (PeerChatMessage) Kind() Kind   { return KindChatMessage }
func (PeerChatMessage) serverFrame() {}

func (m PeerChatMessage) encodeBody(b *bytes.Buffer) {
	writeUint64(b, m.MessageID)
	writeString(b, m.Username)
	writeString(b, m.Contents)
}

// MessageDelivered tells an author that a peer has received the message
// with the given id. Authors apply it as a cumulative watermark.
type MessageDelivered struct {
	MessageID uint64
}

func (MessageDelivered) Kind() Kind   { return KindMessageReceived }
func (MessageDelivered) serverFrame() {}

func (m MessageDelivered) encodeBody(b *bytes.Buffer) {
	writeUint64(b, m.MessageID)
}

// MessageRead tells an author that a peer has read the message with the
// given id. Applied as a cumulative watermark, like MessageDelivered.
type MessageRead struct {
	MessageID uint64
}

func (MessageRead) Kind() Kind   { return KindMessageRead }
func (MessageRead) serverFrame() {}

func (m MessageRead) encodeBody(b *bytes.Buffer) {
	writeUint64(b, m.MessageID)
}
