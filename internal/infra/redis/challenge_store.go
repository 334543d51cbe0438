package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"globetrotter-service/internal/domain"
)

const maxUpdateAttempts = 10

// ChallengeStore keeps each challenge as a JSON value under challenge:{code}.
// Keys carry a TTL matching the challenge expiry, so Redis does the purging.
type ChallengeStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewChallengeStore(client *redis.Client) *ChallengeStore {
	return &ChallengeStore{client: client, now: time.Now}
}

func (s *ChallengeStore) Create(ctx context.Context, challenge domain.Challenge) error {
	ttl := challenge.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("create challenge %s: already expired", challenge.Code)
	}
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	ok, err := s.client.SetNX(ctx, s.key(challenge.Code), payload, ttl).Result()
	if err != nil {
		return fmt.Errorf("create challenge %s: %w", challenge.Code, err)
	}
	if !ok {
		return domain.ErrChallengeCodeTaken
	}
	return nil
}

func (s *ChallengeStore) GetByCode(ctx context.Context, code string) (domain.Challenge, error) {
	raw, err := s.client.Get(ctx, s.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("get challenge %s: %w", code, err)
	}
	return decodeChallenge(raw)
}

// Update applies fn under WATCH so a concurrent writer forces a retry instead
// of a lost update. The key keeps its original TTL.
func (s *ChallengeStore) Update(ctx context.Context, code string, fn func(*domain.Challenge) error) (domain.Challenge, error) {
	key := s.key(code)
	var updated domain.Challenge

	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrChallengeNotFound
		}
		if err != nil {
			return err
		}
		challenge, err := decodeChallenge(raw)
		if err != nil {
			return err
		}
		if err := fn(&challenge); err != nil {
			return err
		}
		payload, err := json.Marshal(challenge)
		if err != nil {
			return fmt.Errorf("encode challenge: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, redis.KeepTTL)
			return nil
		})
		if err == nil {
			updated = challenge
		}
		return err
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.Challenge{}, err
		}
		return updated, nil
	}
	return domain.Challenge{}, fmt.Errorf("update challenge %s: gave up after %d conflicting writes", code, maxUpdateAttempts)
}

func (s *ChallengeStore) key(code string) string {
	return "challenge:" + code
}

func decodeChallenge(raw []byte) (domain.Challenge, error) {
	var challenge domain.Challenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return domain.Challenge{}, fmt.Errorf("decode challenge: %w", err)
	}
	return challenge, nil
}
