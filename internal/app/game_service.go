package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"globetrotter-service/internal/domain"
)

// LeaderboardSize is how many users the leaderboard shows.
const LeaderboardSize = 10

// GameService contains the question, answer and stats use cases.
type GameService struct {
	users        UserRepository
	destinations DestinationRepository
	catalog      CatalogRepository

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewGameService(users UserRepository, destinations DestinationRepository, catalog CatalogRepository) *GameService {
	return NewGameServiceWithRand(users, destinations, catalog, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewGameServiceWithRand is test-only for deterministic questions.
func NewGameServiceWithRand(users UserRepository, destinations DestinationRepository, catalog CatalogRepository, rnd *rand.Rand) *GameService {
	return &GameService{users: users, destinations: destinations, catalog: catalog, rnd: rnd}
}

// NextQuestion builds a fresh question from the cached catalog. Nothing about
// the question is remembered; the answer is re-resolved on submission.
func (s *GameService) NextQuestion(ctx context.Context) (domain.Question, error) {
	catalog, err := s.catalog.GetCatalog(ctx)
	if err != nil {
		return domain.Question{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return BuildQuestion(s.rnd, catalog)
}

// SubmitAnswer scores answer against the destination's stored name and records
// the outcome on the user. Resubmissions are counted again.
func (s *GameService) SubmitAnswer(ctx context.Context, userID, destinationID, answer string) (domain.AnswerResult, error) {
	if strings.TrimSpace(destinationID) == "" {
		return domain.AnswerResult{}, domain.ValidationError{Field: "destinationId", Message: "destinationId is required"}
	}

	destination, err := s.destinations.GetByID(ctx, destinationID)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	correct := destination.Name == answer
	user, err := s.users.RecordAnswer(ctx, userID, correct)
	if err != nil {
		return domain.AnswerResult{}, err
	}

	return domain.AnswerResult{
		IsCorrect:        correct,
		CorrectAnswer:    destination.Name,
		FunFact:          s.pick(destination.FunFacts),
		Score:            user.Score,
		CorrectAnswers:   user.CorrectAnswers,
		IncorrectAnswers: user.IncorrectAnswers,
		GamesPlayed:      user.GamesPlayed,
	}, nil
}

// Stats returns the caller's counters and accuracy.
func (s *GameService) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}
	return user.Stats(), nil
}

// Leaderboard returns the top users by score.
func (s *GameService) Leaderboard(ctx context.Context) ([]domain.LeaderboardEntry, error) {
	users, err := s.users.Top(ctx, LeaderboardSize)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.NewLeaderboardEntry(u))
	}
	return entries, nil
}

func (s *GameService) pick(values []string) string {
	if len(values) == 0 {
		return ""
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return values[s.rnd.Intn(len(values))]
}
