package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeReservationEvent(t *testing.T) {
	event := ReservationEvent{
		Type:          "reservation_accept",
		ReservationID: 42,
		HostID:        "host-1",
		RoomID:        7,
		Status:        "PENDING",
		PaymentStatus: "UNPAID",
		OccurredAt:    time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	decoded, err := DecodeReservationEvent(kafka.Message{Value: payload})
	require.NoError(t, err)
	assert.Equal(t, event, decoded)

	_, err = DecodeReservationEvent(kafka.Message{Value: []byte("{")})
	assert.Error(t, err)
}

func TestConsumer_CloseNil(t *testing.T) {
	var c *Consumer
	assert.NoError(t, c.Close())
}
