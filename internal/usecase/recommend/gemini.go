package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/logger"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	defaultAttempts   = 3
	defaultRetryDelay = 200 * time.Millisecond
	minShortlist      = 20
	maxLogLength      = 300
)

type contentGenerator interface {
	GenerateJSON(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// GeminiRecommender asks the model to pick people from a pre-ranked shortlist and to
// suggest activities. Model output is sanitized; whatever it fails to deliver is filled
// from the heuristic ranking and the canned activity list.
type GeminiRecommender struct {
	generator  contentGenerator
	area       string
	logger     *zap.Logger
	attempts   int
	retryDelay time.Duration
}

type Option func(*GeminiRecommender)

func WithAttempts(n int) Option {
	return func(g *GeminiRecommender) {
		if n > 0 {
			g.attempts = n
		}
	}
}

func WithRetryDelay(d time.Duration) Option {
	return func(g *GeminiRecommender) {
		if d > 0 {
			g.retryDelay = d
		}
	}
}

func NewGeminiRecommender(generator contentGenerator, area string, log *zap.Logger, opts ...Option) *GeminiRecommender {
	if log == nil {
		log = zap.NewNop()
	}
	g := &GeminiRecommender{
		generator:  generator,
		area:       strings.TrimSpace(area),
		logger:     log,
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type compactUser struct {
	UID            string `json:"uid"`
	Name           string `json:"name"`
	Program        string `json:"program"`
	Clubs          string `json:"clubs"`
	Interests      string `json:"interests"`
	Accommodations string `json:"accommodations"`
}

func compact(p *domain.Profile) compactUser {
	return compactUser{
		UID:            strings.TrimSpace(p.UID),
		Name:           strings.TrimSpace(p.Name),
		Program:        strings.TrimSpace(p.Program),
		Clubs:          strings.TrimSpace(p.Clubs),
		Interests:      strings.TrimSpace(p.Interests),
		Accommodations: strings.TrimSpace(p.Accommodations),
	}
}

type promptPayload struct {
	Area          string        `json:"area"`
	Limits        promptLimits  `json:"limits"`
	CurrentUser   compactUser   `json:"currentUser"`
	CandidateUIDs []string      `json:"candidateUids"`
	Candidates    []compactUser `json:"candidates"`
	Instruction   string        `json:"instruction"`
}

type promptLimits struct {
	People     int `json:"people"`
	Activities int `json:"activities"`
}

type recommendedPerson struct {
	UID        string  `json:"uid"`
	MatchScore float64 `json:"matchScore"`
	Why        string  `json:"why"`
}

type modelResponse struct {
	RecommendedPeople []recommendedPerson `json:"recommendedPeople"`
	Activities        []Activity          `json:"activities"`
}

func (g *GeminiRecommender) systemInstruction(limits domain.DiscoverLimits) string {
	return fmt.Sprintf(`You match university students into potential friends and suggest activities in this area: %s.

Return ONLY a single JSON object. No markdown. No extra text. No trailing commas.
Use exactly these keys: recommendedPeople, activities.

JSON shape:
{
  "recommendedPeople": [
    { "uid": "string", "matchScore": 0.0, "why": "short reason" }
  ],
  "activities": [
    { "title": "string", "location": "string", "whyItWorks": "string", "accessibilityNotes": "string" }
  ]
}

Hard constraints:
- Output exactly %d recommendedPeople.
- Every recommendedPeople[i].uid MUST be one of the provided candidate uids.
- Output exactly %d activities realistically doable in the area: %s.
- Respect current user's accommodations in matching and activity design.
- Keep "why" and "whyItWorks" short and natural.`,
		g.area, limits.People, limits.Activities, g.area)
}

func (g *GeminiRecommender) Recommend(ctx context.Context, me *domain.Profile, candidates []*domain.Profile, limits domain.DiscoverLimits) (*Result, error) {
	ranked := Rank(me, candidates)
	if len(ranked) == 0 {
		return &Result{UIDs: []string{}, Activities: []string{}, Source: SourceGemini}, nil
	}

	shortlist := ranked
	if k := max(minShortlist, limits.People*10); len(shortlist) > k {
		shortlist = shortlist[:k]
	}

	prompt, err := g.buildPrompt(me, shortlist, limits)
	if err != nil {
		return nil, err
	}
	system := g.systemInstruction(limits)

	g.logger.Debug("gemini discover request",
		zap.String("uid", me.UID),
		zap.Int("shortlist", len(shortlist)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, maxLogLength)),
	)

	var result *Result
	attempt := 0
	op := func() error {
		attempt++
		raw, err := g.generator.GenerateJSON(ctx, system, prompt)
		if err != nil {
			g.logger.Warn("gemini discover attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}

		g.logger.Debug("gemini discover response",
			zap.Int("attempt", attempt),
			zap.Int("response_length", utf8.RuneCountInString(raw)),
			zap.String("response_preview", logger.TruncateForLog(raw, maxLogLength)),
		)

		parsed, err := parseModelResponse(raw)
		if err != nil {
			g.logger.Warn("gemini discover response unusable", zap.Int("attempt", attempt), zap.Error(err))
			return err
		}
		result = sanitize(parsed, shortlist, limits)
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.retryDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2

	err = backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(b, uint64(g.attempts-1)), ctx))
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	g.logger.Warn("gemini discover failed, using heuristic ranking",
		zap.String("uid", me.UID),
		zap.Int("attempts", attempt),
		zap.Error(err),
	)
	return heuristic(me, ranked, limits, SourceFallback), nil
}

func (g *GeminiRecommender) buildPrompt(me *domain.Profile, shortlist []*domain.Profile, limits domain.DiscoverLimits) (string, error) {
	payload := promptPayload{
		Area:          g.area,
		Limits:        promptLimits{People: limits.People, Activities: limits.Activities},
		CurrentUser:   compact(me),
		CandidateUIDs: make([]string, 0, len(shortlist)),
		Candidates:    make([]compactUser, 0, len(shortlist)),
		Instruction:   "Return the JSON object now.",
	}
	for _, c := range shortlist {
		payload.CandidateUIDs = append(payload.CandidateUIDs, c.UID)
		payload.Candidates = append(payload.Candidates, compact(c))
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal discover prompt: %w", err)
	}
	return string(raw), nil
}

// extractJSONObject returns the outermost {...} block of the model output.
func extractJSONObject(text string) (string, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return "", errors.New("empty model response")
	}
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s, nil
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", errors.New("no JSON object found in model output")
	}
	return s[start : end+1], nil
}

func parseModelResponse(raw string) (*modelResponse, error) {
	obj, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}
	var resp modelResponse
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}
	return &resp, nil
}

// sanitize keeps only shortlisted, unique uids and tops both lists up to the limits.
func sanitize(resp *modelResponse, shortlist []*domain.Profile, limits domain.DiscoverLimits) *Result {
	allowed := make(map[string]struct{}, len(shortlist))
	for _, c := range shortlist {
		allowed[c.UID] = struct{}{}
	}

	seen := make(map[string]struct{}, limits.People)
	uids := make([]string, 0, limits.People)
	add := func(uid string) {
		if len(uids) >= limits.People {
			return
		}
		uid = strings.TrimSpace(uid)
		if uid == "" {
			return
		}
		if _, ok := allowed[uid]; !ok {
			return
		}
		if _, dup := seen[uid]; dup {
			return
		}
		seen[uid] = struct{}{}
		uids = append(uids, uid)
	}

	for _, p := range resp.RecommendedPeople {
		add(p.UID)
	}
	for _, c := range shortlist {
		add(c.UID)
	}

	lines := fillActivities(formatActivities(resp.Activities, limits.Activities), limits.Activities)

	return &Result{UIDs: uids, Activities: lines, Source: SourceGemini}
}
