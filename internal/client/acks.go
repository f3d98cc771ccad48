package client

import "sync"

// watermark is a cumulative acknowledgment level: once it has seen id N,
// every id up to and including N counts as acknowledged. It only ever
// moves forward.
type watermark struct {
	seen bool
	upto uint64
}

func (w *watermark) advance(id uint64) {
	if !w.seen || id > w.upto {
		w.seen = true
		w.upto = id
	}
}

func (w watermark) covers(id uint64) bool {
	return w.seen && id <= w.upto
}

// AckTracker keeps the delivery and read watermarks for messages this
// client authored. The two watermarks advance independently, so delivery
// and read notices may arrive in any order relative to each other.
type AckTracker struct {
	mu        sync.Mutex
	delivered watermark
	read      watermark
}

func NewAckTracker() *AckTracker {
	return &AckTracker{}
}

func (t *AckTracker) MarkDelivered(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.delivered.advance(id)
}

func (t *AckTracker) MarkRead(id uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.read.advance(id)
}

// Delivered reports whether the delivery watermark covers id.
func (t *AckTracker) Delivered(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delivered.covers(id)
}

// Read reports whether the read watermark covers id.
func (t *AckTracker) Read(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.read.covers(id)
}

// DeliveredUpto returns the delivery watermark, and false before any
// delivery notice has arrived.
func (t *AckTracker) DeliveredUpto() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.delivered.upto, t.delivered.seen
}

// ReadUpto returns the read watermark, and false before any read notice
// has arrived.
func (t *AckTracker) ReadUpto() (uint64, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.read.upto, t.read.seen
}
