package memory

import (
	"context"
	"sync"
	"time"

	"globetrotter-service/internal/domain"
)

// ChallengeStore is an in-memory implementation of app.ChallengeRepository.
// Expired challenges are invisible to reads and removed by PurgeExpired.
type ChallengeStore struct {
	mu         sync.Mutex
	now        func() time.Time
	challenges map[string]domain.Challenge
}

func NewChallengeStore() *ChallengeStore {
	return NewChallengeStoreWithClock(time.Now)
}

// NewChallengeStoreWithClock is test-only for deterministic expiry.
func NewChallengeStoreWithClock(now func() time.Time) *ChallengeStore {
	return &ChallengeStore{
		now:        now,
		challenges: make(map[string]domain.Challenge),
	}
}

func (s *ChallengeStore) Create(_ context.Context, challenge domain.Challenge) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.challenges[challenge.Code]; ok && !existing.Expired(s.now()) {
		return domain.ErrChallengeCodeTaken
	}
	s.challenges[challenge.Code] = cloneChallenge(challenge)
	return nil
}

func (s *ChallengeStore) GetByCode(_ context.Context, code string) (domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.liveLocked(code)
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	return cloneChallenge(c), nil
}

func (s *ChallengeStore) Update(_ context.Context, code string, fn func(*domain.Challenge) error) (domain.Challenge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.liveLocked(code)
	if !ok {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	working := cloneChallenge(c)
	if err := fn(&working); err != nil {
		return domain.Challenge{}, err
	}
	s.challenges[code] = cloneChallenge(working)
	return working, nil
}

// PurgeExpired deletes every challenge past its expiry and reports how many went.
func (s *ChallengeStore) PurgeExpired(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	purged := 0
	for code, c := range s.challenges {
		if c.Expired(now) {
			delete(s.challenges, code)
			purged++
		}
	}
	return purged, nil
}

func (s *ChallengeStore) liveLocked(code string) (domain.Challenge, bool) {
	c, ok := s.challenges[code]
	if !ok || c.Expired(s.now()) {
		return domain.Challenge{}, false
	}
	return c, true
}

func cloneChallenge(c domain.Challenge) domain.Challenge {
	participants := make([]domain.Participant, len(c.Participants))
	for i, p := range c.Participants {
		if p.CompletedAt != nil {
			at := *p.CompletedAt
			p.CompletedAt = &at
		}
		participants[i] = p
	}
	c.Participants = participants
	return c
}
