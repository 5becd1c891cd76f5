package domain

import "errors"

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfileAlreadyExists = errors.New("profile already exists")
	ErrProfileNotOnboarded  = errors.New("profile not onboarded")
	ErrInvalidProfile       = errors.New("name and program are required")

	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")

	ErrInvalidLimits = errors.New("limit_people must be in [1,10] and limit_activities in [1,12]")

	ErrCacheMiss = errors.New("cache miss")
)
