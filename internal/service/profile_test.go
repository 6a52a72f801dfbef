package service

import (
	"context"
	"testing"

	"overwatch-tracker/internal/api"
	"overwatch-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(env *testEnv) *ProfileService {
	return &ProfileService{
		client:    env.fetcher,
		users:     env.users,
		snapshots: env.snapshots,
		logger:    zerolog.Nop(),
	}
}

func TestLink(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.set("Player-1234", profileWith("Player#1234", level(2500), nil, level(2100)))

	user, err := svc.Link(context.Background(), "discord-1", "Player#1234")
	require.NoError(t, err)
	assert.Equal(t, "Player-1234", user.BattleTag, "BattleTag must be normalized before storage")

	baseline, err := env.snapshots.Latest(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotNil(t, baseline.Tank)
	assert.Equal(t, 2500, *baseline.Tank)
	assert.Nil(t, baseline.Damage)
	require.NotNil(t, baseline.Support)
	assert.Equal(t, 2100, *baseline.Support)

	assert.Equal(t, 1, env.snapshotCount(t, user.ID), "link stores exactly one baseline snapshot")
}

func TestLink_AlreadyLinked(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.set("Player-1234", profileWith("Player#1234", level(2500), nil, nil))

	_, err := svc.Link(context.Background(), "discord-1", "Player#1234")
	require.NoError(t, err)

	_, err = svc.Link(context.Background(), "discord-1", "Other#5678")
	assert.ErrorIs(t, err, repository.ErrAlreadyLinked)
}

func TestLink_PrivateProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.set("Player-1234", &api.ProfileResponse{Name: "Player#1234", Private: true})

	_, err := svc.Link(context.Background(), "discord-1", "Player#1234")
	assert.ErrorIs(t, err, api.ErrProfilePrivate)

	_, err = env.users.GetByDiscordID(context.Background(), "discord-1")
	assert.ErrorIs(t, err, repository.ErrNotFound, "failed link must not create a user")
}

func TestLink_ProfileUnavailable(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.fail("Player-1234", api.ErrProfileUnavailable)

	_, err := svc.Link(context.Background(), "discord-1", "Player#1234")
	assert.ErrorIs(t, err, api.ErrProfileUnavailable)
}

func TestProfile_ByLinkedAccount(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.set("Player-1234", profileWith("Player#1234", level(2500), nil, nil))

	_, err := svc.Link(context.Background(), "discord-1", "Player#1234")
	require.NoError(t, err)

	view, err := svc.Profile(context.Background(), "discord-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Player#1234", view.Name)
	require.Len(t, view.Ratings, 1)
	assert.Equal(t, "tank", view.Ratings[0].Role)
	assert.Equal(t, 2500, view.Ratings[0].Level)
}

func TestProfile_ByExplicitTag(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.set("Someone-9999", profileWith("Someone#9999", nil, level(3200), nil))

	view, err := svc.Profile(context.Background(), "", "Someone#9999")
	require.NoError(t, err)
	assert.Equal(t, "Someone#9999", view.Name)
}

func TestProfile_NotLinked(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)

	_, err := svc.Profile(context.Background(), "discord-1", "")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfile_NoCompetitiveRecords(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.set("Player-1234", &api.ProfileResponse{Name: "Player#1234"})

	_, err := svc.Profile(context.Background(), "", "Player#1234")
	assert.ErrorIs(t, err, ErrNoCompetitiveRecords)
}

func TestProfile_Private(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	env.fetcher.set("Player-1234", &api.ProfileResponse{Name: "Player#1234", Private: true})

	_, err := svc.Profile(context.Background(), "", "Player#1234")
	assert.ErrorIs(t, err, api.ErrProfilePrivate)
}
