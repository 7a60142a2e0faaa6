package store

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	blob := bytes.Repeat([]byte(`{"array":[0,1,2,3],"phase":"sort"}`), 50)
	require.NoError(t, s.SaveSnapshot(ctx, "slot-a", 42, blob))

	var codec string
	require.NoError(t, s.db.QueryRow(`SELECT codec FROM snapshots WHERE name = 'slot-a'`).Scan(&codec))
	assert.Equal(t, codecLZ4, codec)

	got, seq, err := s.LoadSnapshot(ctx, "slot-a")
	require.NoError(t, err)
	assert.Equal(t, blob, got)
	assert.Equal(t, int64(42), seq)
}

func TestSnapshot_IncompressibleStoredRaw(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	blob := []byte(`{}`)
	require.NoError(t, s.SaveSnapshot(ctx, "tiny", 1, blob))

	got, _, err := s.LoadSnapshot(ctx, "tiny")
	require.NoError(t, err)
	assert.Equal(t, blob, got)
}

func TestSnapshot_Overwrite(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveSnapshot(ctx, "slot", 1, []byte(`{"v":1}`)))
	require.NoError(t, s.SaveSnapshot(ctx, "slot", 2, []byte(`{"v":2}`)))

	got, seq, err := s.LoadSnapshot(ctx, "slot")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"v":2}`), got)
	assert.Equal(t, int64(2), seq)

	names, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"slot"}, names)
}

func TestSnapshot_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, _, err := s.LoadSnapshot(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
}
