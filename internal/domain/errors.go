package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrBackendUnreachable indicates the recommendation backend is offline
	ErrBackendUnreachable = errors.New("recommendation backend is unreachable")

	// ErrAuthRequired indicates an action was attempted without a session
	ErrAuthRequired = errors.New("sign in required")

	// ErrAuthFailed indicates the identity provider rejected the credentials
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound indicates the requested movie does not exist
	ErrNotFound = errors.New("movie not found")

	// ErrInvalidRating indicates a rating outside the 1..5 range
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrEmptyReview indicates a review submitted without text
	ErrEmptyReview = errors.New("review text must not be empty")
)
