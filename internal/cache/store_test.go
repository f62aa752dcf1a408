package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "booking:confirmed:BK-001", ConfirmedKey("BK-001"))
	assert.Equal(t, "booking:review:BK-001", ReviewKey("BK-001"))
}

func TestReviewNoteEncode(t *testing.T) {
	n := ReviewNote{
		BookingCode: "BK-001",
		Reason:      "seat confirm rejected: lock expired",
		FlaggedAt:   time.Date(2026, 3, 7, 9, 0, 0, 0, time.UTC),
	}
	var back ReviewNote
	require.NoError(t, json.Unmarshal([]byte(n.Encode()), &back))
	assert.Equal(t, n, back)
}

func TestNilRedisStoreIsNoOp(t *testing.T) {
	s := NewRedisStore(nil)
	ctx := context.Background()

	assert.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	v, err := s.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Empty(t, v)
	assert.NoError(t, s.Delete(ctx, "k"))
}
