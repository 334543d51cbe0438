package app

import (
	"context"

	"globetrotter-service/internal/domain"
)

// UserRepository abstracts how player accounts are stored (in-memory, Postgres).
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (domain.User, error)
	GetByID(ctx context.Context, id string) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// RecordAnswer applies one answered question to the stored counters atomically.
	RecordAnswer(ctx context.Context, id string, correct bool) (domain.User, error)
	// Top returns up to n users ordered by descending score.
	Top(ctx context.Context, n int) ([]domain.User, error)
}

// DestinationRepository is the system of record for the catalog.
type DestinationRepository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]domain.Destination, error)
	GetByID(ctx context.Context, id string) (domain.Destination, error)
	GetByName(ctx context.Context, name string) (domain.Destination, error)
	// Insert stores every destination or none of them.
	Insert(ctx context.Context, destinations ...domain.Destination) error
}

// CatalogRepository serves the catalog for question issuance (from cache/backing store).
type CatalogRepository interface {
	GetCatalog(ctx context.Context) ([]domain.Destination, error)
	Invalidate(ctx context.Context) error
}

// ChallengeRepository persists challenges keyed by code.
type ChallengeRepository interface {
	// Create fails with domain.ErrChallengeCodeTaken when the code is already live.
	Create(ctx context.Context, challenge domain.Challenge) error
	GetByCode(ctx context.Context, code string) (domain.Challenge, error)
	// Update runs fn against the stored challenge as one read-modify-write.
	// Nothing is written when fn returns an error.
	Update(ctx context.Context, code string, fn func(*domain.Challenge) error) (domain.Challenge, error)
}

// ChallengePurger deletes challenges past their expiry. Stores with native
// TTLs do not need it.
type ChallengePurger interface {
	PurgeExpired(ctx context.Context) (int, error)
}

// ChallengeFeed distributes challenge changes to live subscribers.
type ChallengeFeed interface {
	Publish(challenge domain.Challenge)
	Subscribe(code string, initial domain.Challenge) (<-chan domain.Challenge, func())
}

// DestinationGenerator asks an external text-generation service for new destinations.
type DestinationGenerator interface {
	Generate(ctx context.Context, count int, existing []string) ([]domain.Destination, error)
}
