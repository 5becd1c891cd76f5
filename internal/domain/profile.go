package domain

import (
	"strings"
	"time"
)

type Profile struct {
	UID            string    `json:"uid" db:"uid" firestore:"uid"`
	Name           string    `json:"name" db:"name" firestore:"name"`
	Program        string    `json:"program" db:"program" firestore:"program"`
	Clubs          string    `json:"clubs" db:"clubs" firestore:"clubs"`
	Interests      string    `json:"interests" db:"interests" firestore:"interests"`
	Accommodations string    `json:"accommodations" db:"accommodations" firestore:"accommodations"`
	PhotoURL       string    `json:"photoURL" db:"photo_url" firestore:"photoURL"`
	Onboarded      bool      `json:"onboarded" db:"onboarded" firestore:"onboarded"`
	CreatedAt      time.Time `json:"created_at" db:"created_at" firestore:"createdAt"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at" firestore:"updatedAt"`
}

// Card returns the public projection shown to other users.
func (p *Profile) Card() MatchCard {
	return MatchCard{
		UID:            p.UID,
		Name:           p.Name,
		Program:        p.Program,
		Clubs:          p.Clubs,
		Interests:      p.Interests,
		Accommodations: p.Accommodations,
		PhotoURL:       p.PhotoURL,
	}
}

// ProfilePatch is a merge-write: nil fields are left untouched.
type ProfilePatch struct {
	Name           *string
	Program        *string
	Clubs          *string
	Interests      *string
	Accommodations *string
	PhotoURL       *string
	Onboarded      *bool
}

// Normalize trims every present text field in place.
func (p *ProfilePatch) Normalize() {
	for _, f := range []*string{p.Name, p.Program, p.Clubs, p.Interests, p.Accommodations, p.PhotoURL} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}

// IsEmpty reports whether the patch would change nothing.
func (p *ProfilePatch) IsEmpty() bool {
	return p.Name == nil && p.Program == nil && p.Clubs == nil && p.Interests == nil &&
		p.Accommodations == nil && p.PhotoURL == nil && p.Onboarded == nil
}

// Apply copies the present fields of the patch onto the profile.
func (p *ProfilePatch) Apply(profile *Profile) {
	if p.Name != nil {
		profile.Name = *p.Name
	}
	if p.Program != nil {
		profile.Program = *p.Program
	}
	if p.Clubs != nil {
		profile.Clubs = *p.Clubs
	}
	if p.Interests != nil {
		profile.Interests = *p.Interests
	}
	if p.Accommodations != nil {
		profile.Accommodations = *p.Accommodations
	}
	if p.PhotoURL != nil {
		profile.PhotoURL = *p.PhotoURL
	}
	if p.Onboarded != nil {
		profile.Onboarded = *p.Onboarded
	}
}
