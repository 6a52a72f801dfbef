package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"overwatch-tracker/internal/api"
	"overwatch-tracker/internal/chart"
	"overwatch-tracker/internal/constants"
	"overwatch-tracker/internal/domain"
	"overwatch-tracker/internal/notify"
	"overwatch-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ProfileFetcher is the slice of the stats client the services need.
type ProfileFetcher interface {
	GetProfile(ctx context.Context, battleTag string) (*api.ProfileResponse, error)
}

// Notifier delivers one change summary with its chart.
type Notifier interface {
	Send(ctx context.Context, embed notify.Embed, image []byte) error
}

// RenderFunc turns an ordered snapshot history into a chart image.
type RenderFunc func(history []domain.RankSnapshot, label string) ([]byte, error)

// TrackerService runs the reconciliation sweep: for every linked account it
// compares the live profile against the latest stored snapshot, appends a
// new snapshot when ratings changed and announces the change. At most one
// write and one notification per actual change, never one per tick.
type TrackerService struct {
	fetcher   ProfileFetcher
	users     *repository.UserRepository
	snapshots *repository.SnapshotRepository
	sink      Notifier
	render    RenderFunc
	logger    zerolog.Logger
}

func NewTrackerService(
	client *api.OWClient,
	users *repository.UserRepository,
	snapshots *repository.SnapshotRepository,
	sink *notify.WebhookSink,
	logger zerolog.Logger,
) *TrackerService {
	return &TrackerService{
		fetcher:   client,
		users:     users,
		snapshots: snapshots,
		sink:      sink,
		render:    chart.Render,
		logger:    logger,
	}
}

// Sweep processes the whole roster once. Users are handled by a bounded
// worker pool; one user's failure is logged and never aborts the others.
// The only fatal outcome is failing to load the roster at all, which is
// returned so the scheduler can log it and wait for the next tick.
func (s *TrackerService) Sweep(ctx context.Context) error {
	rosterCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	users, err := s.users.All(rosterCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	start := time.Now()
	s.logger.Debug().Int("users", len(users)).Msg("sweep started")

	g := new(errgroup.Group)
	g.SetLimit(constants.SweepWorkers)
	for _, user := range users {
		g.Go(func() error {
			if err := s.reconcile(ctx, user); err != nil {
				s.logger.Error().
					Err(err).
					Str("user_id", user.ID).
					Str("battle_tag", user.BattleTag).
					Msg("failed to reconcile user")
			}
			return nil
		})
	}
	g.Wait()

	s.logger.Info().
		Int("users", len(users)).
		Dur("duration", time.Since(start)).
		Msg("sweep completed")
	return nil
}

// reconcile runs the read-fetch-diff-write-notify sequence for one user.
// Steps are strictly sequential; private and unavailable profiles skip the
// tick silently.
func (s *TrackerService) reconcile(ctx context.Context, user domain.UserAccount) error {
	readCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	previous, err := s.snapshots.Latest(readCtx, user.ID)
	cancel()
	hasBaseline := true
	if errors.Is(err, repository.ErrNotFound) {
		// Linking normally stores a baseline; recover by establishing
		// one now instead of crashing.
		hasBaseline = false
	} else if err != nil {
		return err
	}

	apiCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	profile, err := s.fetcher.GetProfile(apiCtx, user.BattleTag)
	cancel()
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("battle_tag", user.BattleTag).
			Msg("profile unavailable, skipping this tick")
		return nil
	}
	if profile.Private {
		s.logger.Debug().
			Str("battle_tag", user.BattleTag).
			Msg("profile is private, skipping this tick")
		return nil
	}

	tank, damage, support := profile.Ranks()
	current := domain.RankSnapshot{
		UserID:     user.ID,
		Tank:       tank,
		Damage:     damage,
		Support:    support,
		ObservedAt: time.Now(),
	}

	if !hasBaseline {
		writeCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
		err := s.snapshots.Append(writeCtx, &current)
		cancel()
		if err != nil {
			return err
		}
		s.logger.Info().Str("user_id", user.ID).Msg("baseline snapshot established")
		return nil
	}

	if domain.SameRanks(current, *previous) {
		return nil
	}

	writeCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	err = s.snapshots.Append(writeCtx, &current)
	cancel()
	if err != nil {
		return err
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("name", profile.Name).
		Msg("rank change detected")

	historyCtx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	history, err := s.snapshots.History(historyCtx, user.ID)
	cancel()
	if err != nil {
		// The snapshot is committed; only the announcement is lost.
		return fmt.Errorf("change recorded but history read failed: %w", err)
	}

	image, err := s.render(history, user.BattleTag)
	if err != nil {
		return fmt.Errorf("change recorded but chart render failed: %w", err)
	}

	embed := notify.RankUpdateEmbed(profile, *previous, current)
	notifyCtx, cancel := context.WithTimeout(ctx, constants.NotifyTimeout)
	err = s.sink.Send(notifyCtx, embed, image)
	cancel()
	if err != nil {
		return fmt.Errorf("change recorded but notification failed: %w", err)
	}
	return nil
}
