package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/befriend-app/befriend-backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

type hmacClaims struct {
	jwt.RegisteredClaims
	UserID  string `json:"user_id,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	Email   string `json:"email,omitempty"`
}

// HMACVerifier accepts HS256 tokens signed with a shared secret. Used for local
// development where no Firebase project is available.
type HMACVerifier struct {
	secret []byte
	now    func() time.Time
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for the identity valid for ttl.
func (v *HMACVerifier) Issue(id domain.Identity, ttl time.Duration) (string, time.Time, error) {
	if strings.TrimSpace(id.UID) == "" {
		return "", time.Time{}, errors.New("uid is required")
	}

	now := v.now()
	expiresAt := now.Add(ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, hmacClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Name:    id.Name,
		Picture: id.Picture,
		Email:   id.Email,
	})

	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (v *HMACVerifier) Verify(_ context.Context, tokenString string) (*domain.Identity, error) {
	claims := &hmacClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	uid := strings.TrimSpace(claims.Subject)
	if uid == "" {
		uid = strings.TrimSpace(claims.UserID)
	}
	if uid == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}

	return &domain.Identity{
		UID:     uid,
		Name:    claims.Name,
		Picture: claims.Picture,
		Email:   claims.Email,
	}, nil
}
