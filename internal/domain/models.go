package domain

import (
	"math"
	"time"
)

// PointsPerCorrectAnswer is the score awarded for each correct answer.
const PointsPerCorrectAnswer = 10

// User is a registered player and their cumulative statistics.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email,omitempty"`
	PasswordHash     string    `json:"-"`
	Score            int       `json:"score"`
	CorrectAnswers   int       `json:"correctAnswers"`
	IncorrectAnswers int       `json:"incorrectAnswers"`
	GamesPlayed      int       `json:"gamesPlayed"`
	CreatedAt        time.Time `json:"createdAt"`
}

// ApplyAnswer updates the counters for one answered question.
func (u *User) ApplyAnswer(correct bool) {
	u.GamesPlayed++
	if correct {
		u.Score += PointsPerCorrectAnswer
		u.CorrectAnswers++
		return
	}
	u.IncorrectAnswers++
}

// Stats returns the user's counters with derived accuracy.
func (u User) Stats() UserStats {
	return UserStats{
		Score:            u.Score,
		GamesPlayed:      u.GamesPlayed,
		CorrectAnswers:   u.CorrectAnswers,
		IncorrectAnswers: u.IncorrectAnswers,
		Accuracy:         accuracy(u.CorrectAnswers, u.IncorrectAnswers),
	}
}

// Public strips fields that only the account owner may see.
func (u User) Public() User {
	u.Email = ""
	u.PasswordHash = ""
	return u
}

func accuracy(correct, incorrect int) int {
	total := correct + incorrect
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// UserStats is the stats projection returned to the owning user.
type UserStats struct {
	Score            int `json:"score"`
	GamesPlayed      int `json:"gamesPlayed"`
	CorrectAnswers   int `json:"correctAnswers"`
	IncorrectAnswers int `json:"incorrectAnswers"`
	Accuracy         int `json:"accuracy"`
}

// LeaderboardEntry is a credential-free projection of a user.
type LeaderboardEntry struct {
	ID               string `json:"id"`
	Username         string `json:"username"`
	Score            int    `json:"score"`
	CorrectAnswers   int    `json:"correctAnswers"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
	GamesPlayed      int    `json:"gamesPlayed"`
}

// NewLeaderboardEntry projects a user onto the leaderboard.
func NewLeaderboardEntry(u User) LeaderboardEntry {
	return LeaderboardEntry{
		ID:               u.ID,
		Username:         u.Username,
		Score:            u.Score,
		CorrectAnswers:   u.CorrectAnswers,
		IncorrectAnswers: u.IncorrectAnswers,
		GamesPlayed:      u.GamesPlayed,
	}
}

// Question is a multiple-choice prompt built from one destination.
type Question struct {
	ID      string   `json:"id"`
	Clues   []string `json:"clues"`
	Options []string `json:"options"`
}

// AnswerResult summarizes the outcome of one submission.
type AnswerResult struct {
	IsCorrect        bool   `json:"isCorrect"`
	CorrectAnswer    string `json:"correctAnswer"`
	FunFact          string `json:"funFact"`
	Score            int    `json:"score"`
	CorrectAnswers   int    `json:"correctAnswers"`
	IncorrectAnswers int    `json:"incorrectAnswers"`
	GamesPlayed      int    `json:"gamesPlayed"`
}
