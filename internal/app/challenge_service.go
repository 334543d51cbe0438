package app

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"globetrotter-service/internal/domain"
)

// DefaultChallengeTTL is how long a challenge stays reachable after creation.
const DefaultChallengeTTL = 7 * 24 * time.Hour

// ChallengeService implements the create/join/update lifecycle of challenges.
type ChallengeService struct {
	challenges ChallengeRepository
	users      UserRepository
	feed       ChallengeFeed
	ttl        time.Duration
	now        func() time.Time
	newCode    func() (string, error)
}

// NewChallengeService wires the lifecycle. A nil feed falls back to an in-process ChallengeHub.
func NewChallengeService(challenges ChallengeRepository, users UserRepository, feed ChallengeFeed, ttl time.Duration) *ChallengeService {
	return NewChallengeServiceWithClock(challenges, users, feed, ttl, time.Now)
}

// NewChallengeServiceWithClock is test-only for deterministic timestamps.
func NewChallengeServiceWithClock(challenges ChallengeRepository, users UserRepository, feed ChallengeFeed, ttl time.Duration, now func() time.Time) *ChallengeService {
	if ttl <= 0 {
		ttl = DefaultChallengeTTL
	}
	if feed == nil {
		feed = NewChallengeHub()
	}
	return &ChallengeService{
		challenges: challenges,
		users:      users,
		feed:       feed,
		ttl:        ttl,
		now:        now,
		newCode:    GenerateChallengeCode,
	}
}

// GenerateChallengeCode returns 8 lowercase hex characters from 4 random bytes.
func GenerateChallengeCode() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate challenge code: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Create opens a challenge with the inviter as the only participant. A code
// collision is returned to the caller as domain.ErrChallengeCodeTaken.
func (s *ChallengeService) Create(ctx context.Context, userID string) (domain.Challenge, error) {
	inviter, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Challenge{}, err
	}
	code, err := s.newCode()
	if err != nil {
		return domain.Challenge{}, err
	}

	now := s.now().UTC()
	challenge := domain.Challenge{
		ID:              uuid.NewString(),
		Code:            code,
		InviterID:       inviter.ID,
		InviterUsername: inviter.Username,
		InviterScore:    inviter.Score,
		Status:          domain.StatusPending,
		Participants:    []domain.Participant{domain.SnapshotParticipant(inviter, nil)},
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.ttl),
	}
	if err := s.challenges.Create(ctx, challenge); err != nil {
		return domain.Challenge{}, err
	}
	s.feed.Publish(challenge)
	return challenge, nil
}

// Get looks a live challenge up by code.
func (s *ChallengeService) Get(ctx context.Context, code string) (domain.Challenge, error) {
	return s.challenges.GetByCode(ctx, code)
}

// Join appends the user to the challenge. Joining counts as completing, so the
// new entry carries a completion time straight away.
func (s *ChallengeService) Join(ctx context.Context, code, userID string) (domain.Challenge, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Challenge{}, err
	}

	updated, err := s.challenges.Update(ctx, code, func(c *domain.Challenge) error {
		if c.ParticipantIndex(user.ID) >= 0 {
			return domain.ErrAlreadyJoined
		}
		completedAt := s.now().UTC()
		c.Participants = append(c.Participants, domain.SnapshotParticipant(user, &completedAt))
		c.Status = domain.NextStatus(c.Status, c.Participants)
		return nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	s.feed.Publish(updated)
	return updated, nil
}

// UpdateScore refreshes the caller's snapshot from their live counters and
// marks them completed.
func (s *ChallengeService) UpdateScore(ctx context.Context, code, userID string) (domain.Challenge, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.Challenge{}, err
	}

	updated, err := s.challenges.Update(ctx, code, func(c *domain.Challenge) error {
		idx := c.ParticipantIndex(user.ID)
		if idx < 0 {
			return domain.ErrNotParticipant
		}
		completedAt := s.now().UTC()
		c.Participants[idx] = domain.SnapshotParticipant(user, &completedAt)
		c.Status = domain.NextStatus(c.Status, c.Participants)
		return nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	s.feed.Publish(updated)
	return updated, nil
}

// Subscribe returns a channel that receives every change to the challenge.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *ChallengeService) Subscribe(ctx context.Context, code string) (<-chan domain.Challenge, func(), error) {
	current, err := s.challenges.GetByCode(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(code, current)
	return ch, cancel, nil
}
