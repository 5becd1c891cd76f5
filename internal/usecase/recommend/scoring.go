package recommend

import (
	"regexp"
	"sort"
	"strings"

	"github.com/befriend-app/befriend-backend/internal/domain"
)

const (
	weightProgram        = 1.5
	weightClubs          = 2.5
	weightInterests      = 1.0
	weightAccommodations = 2.0

	// applied when the requester lists accommodations and the candidate lists none
	silentAccommodationPenalty = 0.5
)

var wordRE = regexp.MustCompile(`[a-z0-9]+`)

var stopwords = map[string]struct{}{
	"and": {}, "or": {}, "the": {}, "a": {}, "an": {}, "to": {}, "of": {}, "in": {},
	"for": {}, "with": {}, "on": {}, "at": {}, "from": {}, "is": {}, "are": {}, "be": {},
	"this": {}, "that": {}, "i": {}, "me": {}, "my": {}, "we": {}, "us": {}, "you": {},
	"your": {}, "it": {}, "as": {}, "by": {}, "into": {}, "etc": {},
	"mcmaster": {}, "mac": {}, "student": {}, "students": {},
}

type tokenSet map[string]struct{}

func tokenize(s string) tokenSet {
	out := tokenSet{}
	for _, tok := range wordRE.FindAllString(strings.ToLower(s), -1) {
		if len(tok) < 2 {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out[tok] = struct{}{}
	}
	return out
}

func (t tokenSet) overlap(other tokenSet) int {
	small, big := t, other
	if len(small) > len(big) {
		small, big = big, small
	}
	n := 0
	for tok := range small {
		if _, ok := big[tok]; ok {
			n++
		}
	}
	return n
}

type features struct {
	program        tokenSet
	clubs          tokenSet
	interests      tokenSet
	accommodations tokenSet
}

func extract(p *domain.Profile) features {
	return features{
		program:        tokenize(p.Program),
		clubs:          tokenize(p.Clubs),
		interests:      tokenize(p.Interests),
		accommodations: tokenize(p.Accommodations),
	}
}

// Score rates how well candidate fits me by shared words in program, clubs,
// interests and accommodations. Higher is better; it can be negative.
func Score(me, candidate *domain.Profile) float64 {
	return score(extract(me), extract(candidate))
}

func score(me, c features) float64 {
	s := weightProgram*float64(me.program.overlap(c.program)) +
		weightClubs*float64(me.clubs.overlap(c.clubs)) +
		weightInterests*float64(me.interests.overlap(c.interests))

	if len(me.accommodations) > 0 {
		s += weightAccommodations * float64(me.accommodations.overlap(c.accommodations))
		if len(c.accommodations) == 0 {
			s -= silentAccommodationPenalty
		}
	}
	return s
}

// Rank orders candidates best-first. Ties keep their input order.
func Rank(me *domain.Profile, candidates []*domain.Profile) []*domain.Profile {
	mine := extract(me)

	type scored struct {
		profile *domain.Profile
		score   float64
	}
	list := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || strings.TrimSpace(c.UID) == "" {
			continue
		}
		list = append(list, scored{profile: c, score: score(mine, extract(c))})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	out := make([]*domain.Profile, len(list))
	for i, s := range list {
		out[i] = s.profile
	}
	return out
}
