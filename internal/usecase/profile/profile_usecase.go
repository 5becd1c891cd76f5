package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/befriend-app/befriend-backend/internal/repository"
)

const anonymousDisplayName = "there"

type ProfileUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewProfileUseCase(profileRepo repository.ProfileRepository) *ProfileUseCase {
	return &ProfileUseCase{profileRepo: profileRepo}
}

// RegisterRequest is the onboarding form.
type RegisterRequest struct {
	Name           string  `json:"name" binding:"required,notblank,max=100"`
	Program        string  `json:"program" binding:"required,notblank,max=200"`
	Clubs          string  `json:"clubs" binding:"max=1000"`
	Interests      string  `json:"interests" binding:"max=1000"`
	Accommodations string  `json:"accommodations" binding:"max=1000"`
	PhotoURL       *string `json:"photoURL" binding:"omitempty,max=2048"`
}

// UpdateProfileRequest carries only the fields the client sent.
type UpdateProfileRequest struct {
	Name           *string `json:"name" binding:"omitempty,notblank,max=100"`
	Program        *string `json:"program" binding:"omitempty,notblank,max=200"`
	Clubs          *string `json:"clubs" binding:"omitempty,max=1000"`
	Interests      *string `json:"interests" binding:"omitempty,max=1000"`
	Accommodations *string `json:"accommodations" binding:"omitempty,max=1000"`
	PhotoURL       *string `json:"photoURL" binding:"omitempty,max=2048"`
}

// SessionResponse is the signed-in header summary.
type SessionResponse struct {
	UID         string `json:"uid"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url"`
	Onboarded   bool   `json:"onboarded"`
}

// GetMyProfile returns the caller's own profile
func (uc *ProfileUseCase) GetMyProfile(ctx context.Context, uid string) (*domain.Profile, error) {
	return uc.profileRepo.GetByUID(ctx, uid)
}

// Register onboards the caller. Name and program must be non-blank after trimming;
// the photo falls back to the identity picture.
func (uc *ProfileUseCase) Register(ctx context.Context, id *domain.Identity, req *RegisterRequest) (*domain.Profile, error) {
	existing, err := uc.profileRepo.GetByUID(ctx, id.UID)
	switch {
	case err == nil && existing.Onboarded:
		return nil, domain.ErrProfileAlreadyExists
	case err != nil && !errors.Is(err, domain.ErrProfileNotFound):
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	photo := id.Picture
	if req.PhotoURL != nil && strings.TrimSpace(*req.PhotoURL) != "" {
		photo = *req.PhotoURL
	}
	onboarded := true
	patch := &domain.ProfilePatch{
		Name:           &req.Name,
		Program:        &req.Program,
		Clubs:          &req.Clubs,
		Interests:      &req.Interests,
		Accommodations: &req.Accommodations,
		PhotoURL:       &photo,
		Onboarded:      &onboarded,
	}
	patch.Normalize()
	if *patch.Name == "" || *patch.Program == "" {
		return nil, domain.ErrInvalidProfile
	}

	saved, err := uc.profileRepo.Merge(ctx, id.UID, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return saved, nil
}

// UpdateProfile merge-writes the present fields onto an existing profile.
func (uc *ProfileUseCase) UpdateProfile(ctx context.Context, uid string, req *UpdateProfileRequest) (*domain.Profile, error) {
	current, err := uc.profileRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}

	patch := &domain.ProfilePatch{
		Name:           req.Name,
		Program:        req.Program,
		Clubs:          req.Clubs,
		Interests:      req.Interests,
		Accommodations: req.Accommodations,
		PhotoURL:       req.PhotoURL,
	}
	patch.Normalize()
	if (patch.Name != nil && *patch.Name == "") || (patch.Program != nil && *patch.Program == "") {
		return nil, domain.ErrInvalidProfile
	}
	if patch.IsEmpty() {
		return current, nil
	}

	saved, err := uc.profileRepo.Merge(ctx, uid, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return saved, nil
}

// GetCard returns the public card of another onboarded user.
func (uc *ProfileUseCase) GetCard(ctx context.Context, uid string) (*domain.MatchCard, error) {
	p, err := uc.profileRepo.GetByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if !p.Onboarded {
		return nil, domain.ErrProfileNotFound
	}
	card := p.Card()
	return &card, nil
}

// Session summarizes the caller for the app header.
func (uc *ProfileUseCase) Session(ctx context.Context, id *domain.Identity) (*SessionResponse, error) {
	resp := &SessionResponse{UID: id.UID, PhotoURL: id.Picture}

	p, err := uc.profileRepo.GetByUID(ctx, id.UID)
	switch {
	case err == nil:
		resp.Onboarded = p.Onboarded
		if p.PhotoURL != "" {
			resp.PhotoURL = p.PhotoURL
		}
		resp.DisplayName = strings.TrimSpace(p.Name)
	case !errors.Is(err, domain.ErrProfileNotFound):
		return nil, err
	}

	if resp.DisplayName == "" {
		resp.DisplayName = strings.TrimSpace(id.Name)
	}
	if resp.DisplayName == "" {
		resp.DisplayName = anonymousDisplayName
	}
	return resp, nil
}
