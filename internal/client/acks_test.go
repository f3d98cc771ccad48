package client

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWatermarkNeverDecreases(t *testing.T) {
	acks := NewAckTracker()

	acks.MarkDelivered(5)
	acks.MarkDelivered(3)

	upto, ok := acks.DeliveredUpto()
	require.True(t, ok)
	require.EqualValues(t, 5, upto)
}

func TestWatermarkIsCumulative(t *testing.T) {
	acks := NewAckTracker()

	acks.MarkDelivered(5)
	for id := uint64(0); id <= 5; id++ {
		require.True(t, acks.Delivered(id), "id %d should be delivered", id)
	}
	require.False(t, acks.Delivered(6))
}

func TestNothingAcknowledgedInitially(t *testing.T) {
	acks := NewAckTracker()

	require.False(t, acks.Delivered(0))
	require.False(t, acks.Read(0))

	_, ok := acks.DeliveredUpto()
	require.False(t, ok)
	_, ok = acks.ReadUpto()
	require.False(t, ok)
}

func TestAcknowledgmentOrderDoesNotMatter(t *testing.T) {
	acks := NewAckTracker()

	// A read notice for message 1 lands before any delivery notice. On
	// its own it must not mark anything delivered.
	acks.MarkRead(1)
	require.True(t, acks.Read(0))
	require.True(t, acks.Read(1))
	require.False(t, acks.Delivered(0))

	// Once the delivery notice arrives, the final state is the same as
	// if the notices had arrived in order.
	acks.MarkDelivered(0)
	require.True(t, acks.Delivered(0))
	require.False(t, acks.Delivered(1))

	acks.MarkDelivered(1)
	require.True(t, acks.Delivered(1))
}

func TestReadAndDeliveredAdvanceIndependently(t *testing.T) {
	acks := NewAckTracker()

	acks.MarkDelivered(10)
	acks.MarkRead(4)

	require.True(t, acks.Delivered(10))
	require.True(t, acks.Read(4))
	require.False(t, acks.Read(5))
}
