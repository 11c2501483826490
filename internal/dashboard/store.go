package dashboard

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, userID int) (*Snapshot, error) {
	var (
		raw       []byte
		updatedAt time.Time
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT data, updated_at
		FROM dashboard_snapshots
		WHERE user_id = $1
	`, userID).Scan(&raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.UpdatedAt = updatedAt
	return &snap, nil
}

// Put replaces the user's snapshot.
func (s *Store) Put(ctx context.Context, userID int, snap *Snapshot) error {
	snap.UpdatedAt = time.Now().UTC()

	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO dashboard_snapshots (user_id, data, updated_at)
		VALUES ($1, $2::jsonb, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`, userID, string(b), snap.UpdatedAt)
	if err != nil {
		return fmt.Errorf("put snapshot: %w", err)
	}
	return nil
}
