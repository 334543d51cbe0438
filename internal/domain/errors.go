package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrUserNotFound is returned when no account matches an id or username.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists is returned when a username or email is already registered.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken is returned when a bearer token cannot be verified.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrDestinationNotFound indicates a submitted destination ID is unknown.
	ErrDestinationNotFound = errors.New("destination not found")
	// ErrDestinationExists is returned when a destination name is already in the catalog.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrCatalogEmpty is returned when a question is requested from an empty catalog.
	ErrCatalogEmpty = errors.New("no destinations found")
	// ErrCatalogSeeded is returned when seeding a catalog that already has entries.
	ErrCatalogSeeded = errors.New("database already seeded")
	// ErrGeneratorUnavailable is returned by expansion when no text-generation backend is configured.
	ErrGeneratorUnavailable = errors.New("destination generator not configured")
	// ErrGeneratedPayload is returned when a generation reply holds no parsable JSON array.
	ErrGeneratedPayload = errors.New("no valid JSON found in the response")

	// ErrChallengeNotFound is returned for unknown or expired challenge codes.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrChallengeCodeTaken is returned when a generated code collides with a live challenge.
	ErrChallengeCodeTaken = errors.New("challenge code already in use")
	// ErrAlreadyJoined is returned when a participant joins the same challenge twice.
	ErrAlreadyJoined = errors.New("you have already joined this challenge")
	// ErrNotParticipant is returned when a non-participant updates a challenge score.
	ErrNotParticipant = errors.New("you are not part of this challenge")
)

// ValidationError describes a rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var verr ValidationError
	return errors.As(err, &verr)
}
