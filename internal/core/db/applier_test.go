package db

import (
	"path/filepath"
	"testing"

	"github.com/solatis/tallykeeper/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testApplier(t *testing.T) *Applier {
	t.Helper()

	dbURL := "sqlite://" + filepath.Join(t.TempDir(), "tally.db")
	database, err := Open(dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, MigrateUp(database))

	applier, err := NewApplier(database)
	require.NoError(t, err)
	return applier
}

func TestApplyBatch_CountersAccumulate(t *testing.T) {
	applier := testApplier(t)

	batch := []types.Command{
		{Kind: types.CmdIncrement, Key: "add:d:1696118400:event:purchase", Amount: 1},
		{Kind: types.CmdIncrementBy, Key: "adv:d:1696118400:amount:event:purchase", Amount: 99.99},
	}

	id, err := applier.ApplyBatch(batch)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	// Second event, same keys: totals accumulate
	_, err = applier.ApplyBatch(batch)
	require.NoError(t, err)

	total, err := applier.Counter("add:d:1696118400:event:purchase")
	require.NoError(t, err)
	assert.Equal(t, 2.0, total)

	amount, err := applier.Counter("adv:d:1696118400:amount:event:purchase")
	require.NoError(t, err)
	assert.InDelta(t, 199.98, amount, 1e-9)
}

func TestApplyBatch_BitmapMembersDistinct(t *testing.T) {
	applier := testApplier(t)

	key := "bmp:d:1696118400:ip"
	_, err := applier.ApplyBatch([]types.Command{
		{Kind: types.CmdBitmap, Key: key, Member: "10.0.0.1"},
		{Kind: types.CmdBitmap, Key: key, Member: "10.0.0.2"},
	})
	require.NoError(t, err)

	// Repeated member does not grow cardinality
	_, err = applier.ApplyBatch([]types.Command{
		{Kind: types.CmdBitmap, Key: key, Member: "10.0.0.1"},
	})
	require.NoError(t, err)

	count, err := applier.BitmapCardinality(key)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestApplyBatch_EmptyBatch(t *testing.T) {
	applier := testApplier(t)

	id, err := applier.ApplyBatch(nil)
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestApplyBatch_RecordsBatch(t *testing.T) {
	applier := testApplier(t)

	id, err := applier.ApplyBatch([]types.Command{
		{Kind: types.CmdIncrement, Key: "add:d:1696118400:event:click", Amount: 1},
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, applier.queries.Get("get-batch-count", &count, string(id)))
	assert.Equal(t, 1, count)

	// UUIDv7 batch IDs parse and carry an embedded timestamp
	parsed, err := types.ParseBatchID(string(id))
	require.NoError(t, err)
	assert.False(t, types.BatchIDTime(parsed).IsZero())
}

func TestCounter_MissingKeyReadsZero(t *testing.T) {
	applier := testApplier(t)

	total, err := applier.Counter("add:d:0:event:never")
	require.NoError(t, err)
	assert.Zero(t, total)
}
