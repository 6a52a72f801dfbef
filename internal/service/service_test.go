package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"overwatch-tracker/internal/api"
	"overwatch-tracker/internal/chart"
	"overwatch-tracker/internal/config"
	"overwatch-tracker/internal/database"
	"overwatch-tracker/internal/domain"
	"overwatch-tracker/internal/notify"
	"overwatch-tracker/internal/repository"

	"github.com/rs/zerolog"
)

func level(v int) *int { return &v }

// fakeFetcher serves canned profiles (or errors) per BattleTag.
type fakeFetcher struct {
	mu       sync.Mutex
	profiles map[string]*api.ProfileResponse
	errs     map[string]error
	calls    map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		profiles: make(map[string]*api.ProfileResponse),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

func (f *fakeFetcher) GetProfile(ctx context.Context, battleTag string) (*api.ProfileResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[battleTag]++
	if err, ok := f.errs[battleTag]; ok {
		return nil, err
	}
	if profile, ok := f.profiles[battleTag]; ok {
		return profile, nil
	}
	return nil, api.ErrProfileUnavailable
}

func (f *fakeFetcher) set(battleTag string, profile *api.ProfileResponse) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, battleTag)
	f.profiles[battleTag] = profile
}

func (f *fakeFetcher) fail(battleTag string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[battleTag] = err
}

type sentNotification struct {
	embed notify.Embed
	image []byte
}

// fakeSink records every delivery; safe for the sweep's worker pool.
type fakeSink struct {
	mu   sync.Mutex
	sent []sentNotification
	err  error
}

func (s *fakeSink) Send(ctx context.Context, embed notify.Embed, image []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentNotification{embed: embed, image: image})
	return nil
}

func (s *fakeSink) notifications() []sentNotification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentNotification(nil), s.sent...)
}

// newTestDB opens a throwaway SQLite database under t.TempDir; :memory:
// would hand each pooled connection its own empty database.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(&config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

type testEnv struct {
	tracker   *TrackerService
	users     *repository.UserRepository
	snapshots *repository.SnapshotRepository
	fetcher   *fakeFetcher
	sink      *fakeSink
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db, zerolog.Nop())
	snapshots := repository.NewSnapshotRepository(db, zerolog.Nop())
	fetcher := newFakeFetcher()
	sink := &fakeSink{}

	tracker := &TrackerService{
		fetcher:   fetcher,
		users:     users,
		snapshots: snapshots,
		sink:      sink,
		render:    chart.Render,
		logger:    zerolog.Nop(),
	}

	return &testEnv{
		tracker:   tracker,
		users:     users,
		snapshots: snapshots,
		fetcher:   fetcher,
		sink:      sink,
	}
}

// linkUser seeds a user with a baseline snapshot, the way the linking flow
// does.
func (e *testEnv) linkUser(t *testing.T, discordID, battleTag string, tank, damage, support *int) *domain.UserAccount {
	t.Helper()
	user := &domain.UserAccount{DiscordID: discordID, BattleTag: battleTag}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	baseline := &domain.RankSnapshot{
		UserID:  user.ID,
		Tank:    tank,
		Damage:  damage,
		Support: support,
	}
	if err := e.snapshots.Append(context.Background(), baseline); err != nil {
		t.Fatalf("failed to append baseline: %v", err)
	}
	return user
}

func (e *testEnv) snapshotCount(t *testing.T, userID string) int {
	t.Helper()
	history, err := e.snapshots.History(context.Background(), userID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	return len(history)
}

func profileWith(name string, tank, damage, support *int) *api.ProfileResponse {
	profile := &api.ProfileResponse{Name: name}
	if tank != nil {
		profile.Ratings = append(profile.Ratings, api.Rating{Role: domain.RoleTank, Level: *tank})
	}
	if damage != nil {
		profile.Ratings = append(profile.Ratings, api.Rating{Role: domain.RoleDamage, Level: *damage})
	}
	if support != nil {
		profile.Ratings = append(profile.Ratings, api.Rating{Role: domain.RoleSupport, Level: *support})
	}
	return profile
}
