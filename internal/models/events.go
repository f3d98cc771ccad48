// Package models defines the data types the core hands to the
// presentation layer. The core never formats these; rendering belongs
// entirely to the consumer.
package models

import "time"

// PeerMessage is a chat message authored by another member of the room.
type PeerMessage struct {
	Username   string
	Contents   string
	ReceivedAt time.Time
}

// OwnMessageSent records a message this client authored, at the moment
// it was handed to the relay.
type OwnMessageSent struct {
	MessageID uint64
	Username  string
	Contents  string
	SentAt    time.Time
}

// OwnMessageDelivered reports that the delivery watermark now covers
// MessageID: every own message with an id up to and including it has
// reached at least one peer.
type OwnMessageDelivered struct {
	MessageID uint64
}

// OwnMessageRead reports that the read watermark now covers MessageID.
type OwnMessageRead struct {
	MessageID uint64
}
