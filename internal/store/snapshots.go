package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clutterstack/corro-cli/internal/streamjson"
)

// ErrNoSnapshots means the store holds no snapshot yet (e.g. `members
// --cached` before any live fetch succeeded).
var ErrNoSnapshots = errors.New("no snapshots stored")

// Snapshot describes one saved members fetch.
type Snapshot struct {
	ID          string    `json:"id"`
	TakenAt     time.Time `json:"taken_at"`
	MemberCount int       `json:"member_count"`
}

// SaveSnapshot stores recs as a new snapshot and returns its metadata.
// Records are stored verbatim in decode order.
func (s *Store) SaveSnapshot(ctx context.Context, recs []streamjson.Record) (Snapshot, error) {
	snap := Snapshot{
		ID:          uuid.NewString(),
		TakenAt:     timeNow().UTC().Truncate(time.Second),
		MemberCount: len(recs),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, taken_at, member_count) VALUES (?, ?, ?)`,
		snap.ID, snap.TakenAt.Unix(), snap.MemberCount,
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}

	for i, rec := range recs {
		payload, err := json.Marshal(rec)
		if err != nil {
			return Snapshot{}, fmt.Errorf("save snapshot: marshal member %d: %w", i, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO snapshot_members (snapshot_id, position, payload) VALUES (?, ?, ?)`,
			snap.ID, i, string(payload),
		)
		if err != nil {
			return Snapshot{}, fmt.Errorf("save snapshot: member %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("save snapshot: %w", err)
	}
	return snap, nil
}

// ListSnapshots returns up to limit snapshots, newest first. A limit of
// zero or less means all of them.
func (s *Store) ListSnapshots(ctx context.Context, limit int) ([]Snapshot, error) {
	q := `SELECT id, taken_at, member_count FROM snapshots ORDER BY taken_at DESC, id ASC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var takenAt int64
		if err := rows.Scan(&snap.ID, &takenAt, &snap.MemberCount); err != nil {
			return nil, fmt.Errorf("list snapshots: %w", err)
		}
		snap.TakenAt = time.Unix(takenAt, 0).UTC()
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// LoadSnapshot returns the member records of one snapshot in their
// original decode order.
func (s *Store) LoadSnapshot(ctx context.Context, id string) ([]streamjson.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM snapshot_members WHERE snapshot_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	defer rows.Close()

	var recs []streamjson.Record
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("load snapshot %s: %w", id, err)
		}
		decoded, err := streamjson.Decode(payload, nil)
		if err != nil || len(decoded) != 1 {
			return nil, fmt.Errorf("load snapshot %s: corrupt member payload: %v", id, err)
		}
		recs = append(recs, decoded[0])
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	if recs == nil {
		recs = []streamjson.Record{}
	}
	return recs, nil
}

// Latest returns the newest snapshot and its records.
func (s *Store) Latest(ctx context.Context) (Snapshot, []streamjson.Record, error) {
	var snap Snapshot
	var takenAt int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, taken_at, member_count FROM snapshots ORDER BY taken_at DESC, id ASC LIMIT 1`,
	).Scan(&snap.ID, &takenAt, &snap.MemberCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil, ErrNoSnapshots
	}
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("latest snapshot: %w", err)
	}
	snap.TakenAt = time.Unix(takenAt, 0).UTC()

	recs, err := s.LoadSnapshot(ctx, snap.ID)
	if err != nil {
		return Snapshot{}, nil, err
	}
	return snap, recs, nil
}
