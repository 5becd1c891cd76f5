package domain

const (
	DefaultLimitPeople     = 3
	DefaultLimitActivities = 6
	MaxLimitPeople         = 10
	MaxLimitActivities     = 12

	// MaxCandidatePool caps how many profiles are considered per discover call.
	MaxCandidatePool = 80
)

// MatchCard is a read-only projection of another user's profile.
type MatchCard struct {
	UID            string `json:"uid"`
	Name           string `json:"name"`
	Program        string `json:"program"`
	Clubs          string `json:"clubs"`
	Interests      string `json:"interests"`
	Accommodations string `json:"accommodations"`
	PhotoURL       string `json:"photoURL"`
}

type DiscoverLimits struct {
	People     int `json:"limit_people"`
	Activities int `json:"limit_activities"`
}

// Validate rejects limits outside the accepted ranges. Values are never clamped.
func (l DiscoverLimits) Validate() error {
	if l.People < 1 || l.People > MaxLimitPeople {
		return ErrInvalidLimits
	}
	if l.Activities < 1 || l.Activities > MaxLimitActivities {
		return ErrInvalidLimits
	}
	return nil
}

type DiscoverResponse struct {
	Activities []string    `json:"activities"`
	Matches    []MatchCard `json:"matches"`
}
