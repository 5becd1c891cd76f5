package discover

import (
	"context"
	"errors"
	"fmt"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/metrics"
	"github.com/befriend-app/befriend-backend/internal/repository"
	"github.com/befriend-app/befriend-backend/internal/usecase/recommend"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type DiscoverUseCase struct {
	profileRepo repository.ProfileRepository
	recommender recommend.Recommender
	cache       repository.DiscoverCache
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewDiscoverUseCase wires the discover flow. cache and m may be nil.
func NewDiscoverUseCase(
	profileRepo repository.ProfileRepository,
	recommender recommend.Recommender,
	cache repository.DiscoverCache,
	m *metrics.Metrics,
	log *zap.Logger,
) *DiscoverUseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiscoverUseCase{
		profileRepo: profileRepo,
		recommender: recommender,
		cache:       cache,
		metrics:     m,
		logger:      log,
	}
}

// Discover returns activity suggestions and match cards for the authenticated uid.
func (uc *DiscoverUseCase) Discover(ctx context.Context, uid string, limits domain.DiscoverLimits) (*domain.DiscoverResponse, error) {
	if err := limits.Validate(); err != nil {
		uc.metrics.DiscoverRequest(metrics.OutcomeInvalid)
		return nil, err
	}

	if uc.cache != nil {
		cached, err := uc.cache.Get(ctx, uid, limits)
		switch {
		case err == nil:
			uc.metrics.DiscoverRequest(metrics.OutcomeCacheHit)
			return cached, nil
		case !errors.Is(err, domain.ErrCacheMiss):
			uc.logger.Warn("discover cache read failed", zap.String("uid", uid), zap.Error(err))
		}
	}

	me, pool, err := uc.load(ctx, uid)
	if err != nil {
		uc.metrics.DiscoverRequest(outcomeFor(err))
		return nil, err
	}

	result, err := uc.recommender.Recommend(ctx, me, pool, limits)
	if err != nil {
		uc.metrics.DiscoverRequest(metrics.OutcomeError)
		return nil, fmt.Errorf("recommend: %w", err)
	}
	uc.metrics.RecommenderSource(result.Source)

	resp := project(uid, pool, result, limits)

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, uid, limits, resp); err != nil {
			uc.logger.Warn("discover cache write failed", zap.String("uid", uid), zap.Error(err))
		}
	}

	uc.logger.Info("discover served",
		zap.String("uid", uid),
		zap.Int("pool", len(pool)),
		zap.Int("matches", len(resp.Matches)),
		zap.Int("activities", len(resp.Activities)),
		zap.String("source", result.Source),
	)
	uc.metrics.DiscoverRequest(metrics.OutcomeOK)
	return resp, nil
}

// load fetches the requester and the candidate pool concurrently.
func (uc *DiscoverUseCase) load(ctx context.Context, uid string) (*domain.Profile, []*domain.Profile, error) {
	var (
		me   *domain.Profile
		pool []*domain.Profile
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := uc.profileRepo.GetByUID(gctx, uid)
		if err != nil {
			return err
		}
		if !p.Onboarded {
			return domain.ErrProfileNotOnboarded
		}
		me = p
		return nil
	})
	g.Go(func() error {
		candidates, err := uc.profileRepo.ListCandidates(gctx, uid, domain.MaxCandidatePool)
		if err != nil {
			return fmt.Errorf("list candidates: %w", err)
		}
		pool = candidates
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return me, pool, nil
}

// project turns recommended uids into cards. Only onboarded pool members other than
// the requester survive, each at most once, and both lists are cut to the limits.
func project(uid string, pool []*domain.Profile, result *recommend.Result, limits domain.DiscoverLimits) *domain.DiscoverResponse {
	byUID := make(map[string]*domain.Profile, len(pool))
	for _, p := range pool {
		if p == nil || !p.Onboarded || p.UID == uid {
			continue
		}
		byUID[p.UID] = p
	}

	matches := make([]domain.MatchCard, 0, limits.People)
	seen := make(map[string]struct{}, limits.People)
	for _, id := range result.UIDs {
		if len(matches) >= limits.People {
			break
		}
		p, ok := byUID[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		matches = append(matches, p.Card())
	}

	activities := make([]string, 0, limits.Activities)
	for _, a := range result.Activities {
		if len(activities) >= limits.Activities {
			break
		}
		activities = append(activities, a)
	}

	return &domain.DiscoverResponse{Activities: activities, Matches: matches}
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, domain.ErrProfileNotOnboarded):
		return metrics.OutcomeNotOnboarded
	default:
		return metrics.OutcomeError
	}
}
