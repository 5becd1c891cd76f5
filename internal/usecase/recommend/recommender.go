package recommend

import (
	"context"

	"github.com/befriend-app/befriend-backend/internal/domain"
)

const (
	SourceGemini    = "gemini"
	SourceHeuristic = "heuristic"
	// SourceFallback means Gemini was configured but every attempt failed.
	SourceFallback = "gemini_fallback"
)

// Result is an ordered selection of candidate uids plus activity lines.
type Result struct {
	UIDs       []string
	Activities []string
	Source     string
}

type Recommender interface {
	Recommend(ctx context.Context, me *domain.Profile, candidates []*domain.Profile, limits domain.DiscoverLimits) (*Result, error)
}

// HeuristicRecommender ranks by Score and suggests canned activities.
type HeuristicRecommender struct{}

func NewHeuristicRecommender() *HeuristicRecommender {
	return &HeuristicRecommender{}
}

func (h *HeuristicRecommender) Recommend(_ context.Context, me *domain.Profile, candidates []*domain.Profile, limits domain.DiscoverLimits) (*Result, error) {
	return heuristic(me, candidates, limits, SourceHeuristic), nil
}

func heuristic(me *domain.Profile, candidates []*domain.Profile, limits domain.DiscoverLimits, source string) *Result {
	ranked := Rank(me, candidates)
	if len(ranked) == 0 {
		return &Result{UIDs: []string{}, Activities: []string{}, Source: source}
	}

	uids := make([]string, 0, limits.People)
	for _, p := range ranked {
		if len(uids) >= limits.People {
			break
		}
		uids = append(uids, p.UID)
	}

	return &Result{
		UIDs:       uids,
		Activities: FallbackActivities(limits.Activities),
		Source:     source,
	}
}
