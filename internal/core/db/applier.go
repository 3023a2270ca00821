package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/solatis/tallykeeper/internal/types"
)

/*
 * Command batch application.
 *
 * Applies one event's command bag to the SQL reference store: bitmap
 * commands insert distinct (key, member) rows so cardinality queries are
 * COUNT(*) by key; Increment and IncrementBy upsert into a counters table.
 *
 * One batch = one transaction. The engine guarantees all-or-nothing
 * emission per event; the applier extends the same property to the store.
 * Each batch is stamped with a UUIDv7 batch ID for audit queries.
 */

// Applier writes command batches to the store.
type Applier struct {
	db      *sqlx.DB
	queries *Queries
}

// NewApplier loads the named queries and returns a ready applier.
func NewApplier(database *sqlx.DB) (*Applier, error) {
	queries, err := LoadQueries(database)
	if err != nil {
		return nil, fmt.Errorf("failed to load queries: %w", err)
	}
	return &Applier{db: database, queries: queries}, nil
}

// ApplyBatch applies all commands of one event in a single transaction and
// returns the batch ID recorded with it. An empty batch records nothing and
// returns an empty ID.
func (a *Applier) ApplyBatch(commands []types.Command) (types.BatchID, error) {
	if len(commands) == 0 {
		return "", nil
	}

	batchID := types.NewBatchID()

	tx, err := a.db.Beginx()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, cmd := range commands {
		if err := a.applyOne(tx, cmd); err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to apply %s %s: %w", cmd.Kind, cmd.Key, err)
		}
	}

	if _, err := a.queries.ExecTx(tx, "record-batch", string(batchID), len(commands)); err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to record batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit batch: %w", err)
	}

	return batchID, nil
}

// applyOne dispatches a single command to its named query.
func (a *Applier) applyOne(tx *sqlx.Tx, cmd types.Command) error {
	switch cmd.Kind {
	case types.CmdBitmap:
		_, err := a.queries.ExecTx(tx, "insert-bitmap-member", cmd.Key, cmd.Member)
		return err
	case types.CmdIncrement, types.CmdIncrementBy:
		_, err := a.queries.ExecTx(tx, "increment-counter", cmd.Key, cmd.Amount)
		return err
	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

// Counter returns the accumulated total for a counter key. Missing keys
// read as zero.
func (a *Applier) Counter(key string) (float64, error) {
	var total float64
	err := a.queries.Get("get-counter", &total, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return total, nil
}

// BitmapCardinality returns the distinct member count for a bitmap key.
func (a *Applier) BitmapCardinality(key string) (int64, error) {
	var count int64
	if err := a.queries.Get("count-bitmap", &count, key); err != nil {
		return 0, err
	}
	return count, nil
}
