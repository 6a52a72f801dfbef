package service

import (
	"context"
	"errors"
	"fmt"

	"overwatch-tracker/internal/api"
	"overwatch-tracker/internal/constants"
	"overwatch-tracker/internal/domain"
	"overwatch-tracker/internal/repository"

	"github.com/rs/zerolog"
)

// ErrNoCompetitiveRecords marks a public profile with no ratings for the
// current season. Only surfaced by the read path; the sweep stores such
// observations as all-nil snapshots.
var ErrNoCompetitiveRecords = errors.New("profile has no competitive records")

type ProfileService struct {
	client    ProfileFetcher
	users     *repository.UserRepository
	snapshots *repository.SnapshotRepository
	logger    zerolog.Logger
}

func NewProfileService(
	client *api.OWClient,
	users *repository.UserRepository,
	snapshots *repository.SnapshotRepository,
	logger zerolog.Logger,
) *ProfileService {
	return &ProfileService{
		client:    client,
		users:     users,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Link verifies the BattleTag against the stats provider, creates the
// account and stores the baseline snapshot future sweeps diff against.
func (s *ProfileService) Link(ctx context.Context, discordID, battleTag string) (*domain.UserAccount, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	battleTag = api.NormalizeTag(battleTag)
	s.logger.Info().Str("discord_id", discordID).Str("battle_tag", battleTag).Msg("linking profile")

	if _, err := s.users.GetByDiscordID(ctx, discordID); err == nil {
		return nil, repository.ErrAlreadyLinked
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing link: %w", err)
	}

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	profile, err := s.client.GetProfile(apiCtx, battleTag)
	if err != nil {
		s.logger.Warn().Err(err).Str("battle_tag", battleTag).Msg("profile fetch failed during link")
		return nil, err
	}
	if profile.Private {
		return nil, api.ErrProfilePrivate
	}

	user := &domain.UserAccount{
		DiscordID: discordID,
		BattleTag: battleTag,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	tank, damage, support := profile.Ranks()
	baseline := &domain.RankSnapshot{
		UserID:  user.ID,
		Tank:    tank,
		Damage:  damage,
		Support: support,
	}
	if err := s.snapshots.Append(ctx, baseline); err != nil {
		return nil, fmt.Errorf("failed to store baseline snapshot: %w", err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("name", profile.Name).
		Msg("profile linked with baseline snapshot")
	return user, nil
}

// ProfileView is the read-path response for the show-profile command.
type ProfileView struct {
	Name       string       `json:"name"`
	Icon       string       `json:"icon,omitempty"`
	RatingIcon string       `json:"rating_icon,omitempty"`
	Ratings    []RoleRating `json:"ratings"`
}

type RoleRating struct {
	Role  string `json:"role"`
	Level int    `json:"level"`
}

// Profile resolves a BattleTag (explicit, or through a linked account when
// empty) and returns the live ratings. No write.
func (s *ProfileService) Profile(ctx context.Context, discordID, battleTag string) (*ProfileView, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	if battleTag == "" {
		user, err := s.users.GetByDiscordID(ctx, discordID)
		if err != nil {
			return nil, err
		}
		battleTag = user.BattleTag
	}
	battleTag = api.NormalizeTag(battleTag)

	apiCtx, apiCancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer apiCancel()

	profile, err := s.client.GetProfile(apiCtx, battleTag)
	if err != nil {
		return nil, err
	}
	if profile.Private {
		return nil, api.ErrProfilePrivate
	}
	if profile.Ratings == nil {
		return nil, ErrNoCompetitiveRecords
	}

	view := &ProfileView{
		Name:       profile.Name,
		Icon:       profile.Icon,
		RatingIcon: profile.RatingIcon,
	}
	for _, rating := range profile.Ratings {
		view.Ratings = append(view.Ratings, RoleRating{Role: rating.Role, Level: rating.Level})
	}
	return view, nil
}
