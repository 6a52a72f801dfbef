package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"overwatch-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(sqlDB *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Append inserts one immutable snapshot. ID and ObservedAt are assigned at
// insertion time when the caller leaves them unset. A single INSERT, so a
// failed call leaves no partial write.
func (r *SnapshotRepository) Append(ctx context.Context, snap *domain.RankSnapshot) error {
	if snap.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		snap.ID = id
	}
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, user_id, tank_rank, damage_rank, support_rank, observed_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.UserID,
		levelToNull(snap.Tank), levelToNull(snap.Damage), levelToNull(snap.Support),
		snap.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	r.logger.Debug().
		Str("snapshot_id", snap.ID).
		Str("user_id", snap.UserID).
		Time("observed_at", snap.ObservedAt).
		Msg("snapshot appended")
	return nil
}

// Latest returns the most recent snapshot for a user by observed_at, or
// ErrNotFound when the user has no history.
func (r *SnapshotRepository) Latest(ctx context.Context, userID string) (*domain.RankSnapshot, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, tank_rank, damage_rank, support_rank, observed_at
		 FROM snapshots WHERE user_id = ? ORDER BY observed_at DESC LIMIT 1`,
		userID,
	)

	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snap, nil
}

// History returns the full snapshot history for a user ascending by
// observed_at. May be empty.
func (r *SnapshotRepository) History(ctx context.Context, userID string) ([]domain.RankSnapshot, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, tank_rank, damage_rank, support_rank, observed_at
		 FROM snapshots WHERE user_id = ? ORDER BY observed_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot history: %w", err)
	}
	defer rows.Close()

	var history []domain.RankSnapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		history = append(history, *snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return history, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (*domain.RankSnapshot, error) {
	var snap domain.RankSnapshot
	var tank, damage, support sql.NullInt64
	if err := row.Scan(&snap.ID, &snap.UserID, &tank, &damage, &support, &snap.ObservedAt); err != nil {
		return nil, err
	}
	snap.Tank = nullToLevel(tank)
	snap.Damage = nullToLevel(damage)
	snap.Support = nullToLevel(support)
	return &snap, nil
}

func levelToNull(level *int) sql.NullInt64 {
	if level == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*level), Valid: true}
}

func nullToLevel(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	level := int(value.Int64)
	return &level
}
