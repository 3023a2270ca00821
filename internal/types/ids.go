package types

import (
	"time"

	"github.com/google/uuid"
)

// BatchID identifies one applied command batch (all commands of one event).
// String alias enables type safety while maintaining JSON string serialization.
// UUIDv7 time-ordering ensures sequential batches cluster in B-tree indexes.
type BatchID string

// NewBatchID generates a UUIDv7 batch identifier.
// Panics if the random source fails (uuid.Must); acceptable for ID generation.
func NewBatchID() BatchID {
	return BatchID(uuid.Must(uuid.NewV7()).String())
}

// ParseBatchID validates and converts a string to BatchID.
// Rejects malformed UUIDs to prevent invalid IDs from entering the store.
func ParseBatchID(s string) (BatchID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return BatchID(s), nil
}

// BatchIDTime extracts the timestamp embedded in a UUIDv7 batch ID.
// Enables time-based queries without a store lookup.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func BatchIDTime(id BatchID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
