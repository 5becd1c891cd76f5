package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

const firebaseIssuerPrefix = "https://securetoken.google.com/"

type firebaseClaims struct {
	jwt.RegisteredClaims
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Email   string `json:"email,omitempty"`
}

// FirebaseVerifier checks Firebase Authentication ID tokens.
type FirebaseVerifier struct {
	projectID string
	certs     CertSource
	now       func() time.Time
}

func NewFirebaseVerifier(projectID string, certs CertSource) *FirebaseVerifier {
	return &FirebaseVerifier{projectID: projectID, certs: certs, now: time.Now}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, tokenString string) (*domain.Identity, error) {
	keys, err := v.certs.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	claims := &firebaseClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		kid, _ := token.Header["kid"].(string)
		key, ok := keys[kid]
		if !ok {
			return nil, fmt.Errorf("unknown key id %q", kid)
		}
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuer(firebaseIssuerPrefix+v.projectID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	uid := strings.TrimSpace(claims.Subject)
	if uid == "" || len(uid) > 128 {
		return nil, fmt.Errorf("%w: bad subject", domain.ErrInvalidToken)
	}

	return &domain.Identity{
		UID:     uid,
		Name:    claims.Name,
		Picture: claims.Picture,
		Email:   claims.Email,
	}, nil
}
