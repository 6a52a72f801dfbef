package repository

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"overwatch-tracker/internal/config"
	"overwatch-tracker/internal/database"
	"overwatch-tracker/internal/domain"

	"github.com/rs/zerolog"
)

// newTestDB opens a throwaway SQLite database with migrations applied. A
// file under t.TempDir rather than :memory:, because the pool opens more
// than one connection and each :memory: connection would get its own
// database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}
	db, err := database.New(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, users *UserRepository, discordID, battleTag string) *domain.UserAccount {
	t.Helper()
	user := &domain.UserAccount{DiscordID: discordID, BattleTag: battleTag}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func level(v int) *int { return &v }
