package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"overwatch-tracker/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyLinked = errors.New("account already linked")
)

type UserRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewUserRepository(sqlDB *sql.DB, logger zerolog.Logger) *UserRepository {
	return &UserRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// Create inserts a new linked account. The discord_id unique constraint
// enforces one account per Discord identity; violating it returns
// ErrAlreadyLinked.
func (r *UserRepository) Create(ctx context.Context, user *domain.UserAccount) error {
	if user.ID == "" {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		user.ID = id
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, discord_id, battle_tag, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.DiscordID, user.BattleTag, user.CreatedAt,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return ErrAlreadyLinked
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	r.logger.Info().
		Str("user_id", user.ID).
		Str("discord_id", user.DiscordID).
		Str("battle_tag", user.BattleTag).
		Msg("user created")
	return nil
}

func (r *UserRepository) GetByDiscordID(ctx context.Context, discordID string) (*domain.UserAccount, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, discord_id, battle_tag, created_at FROM users WHERE discord_id = ?`,
		discordID,
	)

	var user domain.UserAccount
	err := row.Scan(&user.ID, &user.DiscordID, &user.BattleTag, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// All returns the full roster, read once at the start of each sweep.
func (r *UserRepository) All(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, discord_id, battle_tag, created_at FROM users ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []domain.UserAccount
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.ID, &user.DiscordID, &user.BattleTag, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}
