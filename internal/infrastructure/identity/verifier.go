package identity

import (
	"context"
	"fmt"

	"github.com/befriend-app/befriend-backend/internal/config"
	"github.com/befriend-app/befriend-backend/internal/domain"
)

// Verifier turns a bearer identity token into the caller's identity.
// Any failure is reported as domain.ErrInvalidToken (possibly wrapped).
type Verifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// NewVerifier picks the verifier for the configured auth mode.
func NewVerifier(cfg *config.AuthConfig) (Verifier, error) {
	switch cfg.Mode {
	case config.AuthModeFirebase:
		return NewFirebaseVerifier(cfg.FirebaseProjectID, NewGoogleCertSource(nil)), nil
	case config.AuthModeHMAC:
		return NewHMACVerifier(cfg.HMACSecret), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", cfg.Mode)
	}
}
