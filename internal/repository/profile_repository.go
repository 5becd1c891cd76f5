package repository

import (
	"context"

	"github.com/befriend-app/befriend-backend/internal/domain"
)

// ProfileRepository is the per-user profile document store.
type ProfileRepository interface {
	GetByUID(ctx context.Context, uid string) (*domain.Profile, error)
	// Merge applies the patch to the document for uid, creating it if absent.
	Merge(ctx context.Context, uid string, patch *domain.ProfilePatch) (*domain.Profile, error)
	// ListCandidates returns onboarded profiles other than excludeUID, at most limit of them.
	ListCandidates(ctx context.Context, excludeUID string, limit int) ([]*domain.Profile, error)
}

// DiscoverCache stores recent discover responses. Get returns domain.ErrCacheMiss when absent.
type DiscoverCache interface {
	Get(ctx context.Context, uid string, limits domain.DiscoverLimits) (*domain.DiscoverResponse, error)
	Set(ctx context.Context, uid string, limits domain.DiscoverLimits, resp *domain.DiscoverResponse) error
}
