package postgres

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"

	"globetrotter-service/internal/domain"
)

type userModel struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID               string    `bun:"id,pk,type:uuid"`
	Username         string    `bun:"username,notnull"`
	Email            string    `bun:"email,notnull"`
	PasswordHash     string    `bun:"password_hash,notnull"`
	Score            int       `bun:"score,notnull"`
	CorrectAnswers   int       `bun:"correct_answers,notnull"`
	IncorrectAnswers int       `bun:"incorrect_answers,notnull"`
	GamesPlayed      int       `bun:"games_played,notnull"`
	CreatedAt        time.Time `bun:"created_at,notnull"`
}

func newUserModel(u domain.User) *userModel {
	return &userModel{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		Score:            u.Score,
		CorrectAnswers:   u.CorrectAnswers,
		IncorrectAnswers: u.IncorrectAnswers,
		GamesPlayed:      u.GamesPlayed,
		CreatedAt:        u.CreatedAt,
	}
}

func (m *userModel) toDomain() domain.User {
	return domain.User{
		ID:               m.ID,
		Username:         m.Username,
		Email:            m.Email,
		PasswordHash:     m.PasswordHash,
		Score:            m.Score,
		CorrectAnswers:   m.CorrectAnswers,
		IncorrectAnswers: m.IncorrectAnswers,
		GamesPlayed:      m.GamesPlayed,
		CreatedAt:        m.CreatedAt,
	}
}

type destinationModel struct {
	bun.BaseModel `bun:"table:destinations,alias:d"`

	ID         string    `bun:"id,pk,type:uuid"`
	Alias      string    `bun:"alias,notnull"`
	Name       string    `bun:"name,notnull"`
	Clues      []string  `bun:"clues,type:jsonb,notnull"`
	FunFacts   []string  `bun:"fun_facts,type:jsonb,notnull"`
	Difficulty string    `bun:"difficulty,notnull"`
	Continent  string    `bun:"continent,notnull"`
	Country    string    `bun:"country,notnull"`
	ImageURL   string    `bun:"image_url,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
}

func newDestinationModel(d domain.Destination) destinationModel {
	return destinationModel{
		ID:         d.ID,
		Alias:      d.Alias,
		Name:       d.Name,
		Clues:      d.Clues,
		FunFacts:   d.FunFacts,
		Difficulty: string(d.Difficulty),
		Continent:  string(d.Continent),
		Country:    d.Country,
		ImageURL:   d.ImageURL,
		CreatedAt:  d.CreatedAt,
	}
}

func (m *destinationModel) toDomain() domain.Destination {
	return domain.Destination{
		ID:         m.ID,
		Alias:      m.Alias,
		Name:       m.Name,
		Clues:      m.Clues,
		FunFacts:   m.FunFacts,
		Difficulty: domain.Difficulty(m.Difficulty),
		Continent:  domain.Continent(m.Continent),
		Country:    m.Country,
		ImageURL:   m.ImageURL,
		CreatedAt:  m.CreatedAt,
	}
}

type challengeModel struct {
	bun.BaseModel `bun:"table:challenges,alias:c"`

	ID              string               `bun:"id,pk,type:uuid"`
	Code            string               `bun:"code,notnull"`
	InviterID       string               `bun:"inviter_id,type:uuid,notnull"`
	InviterUsername string               `bun:"inviter_username,notnull"`
	InviterScore    int                  `bun:"inviter_score,notnull"`
	Status          string               `bun:"status,notnull"`
	Participants    []domain.Participant `bun:"participants,type:jsonb,notnull"`
	CreatedAt       time.Time            `bun:"created_at,notnull"`
	ExpiresAt       time.Time            `bun:"expires_at,notnull"`
}

func newChallengeModel(c domain.Challenge) *challengeModel {
	return &challengeModel{
		ID:              c.ID,
		Code:            c.Code,
		InviterID:       c.InviterID,
		InviterUsername: c.InviterUsername,
		InviterScore:    c.InviterScore,
		Status:          string(c.Status),
		Participants:    c.Participants,
		CreatedAt:       c.CreatedAt,
		ExpiresAt:       c.ExpiresAt,
	}
}

func (m *challengeModel) toDomain() domain.Challenge {
	return domain.Challenge{
		ID:              m.ID,
		Code:            m.Code,
		InviterID:       m.InviterID,
		InviterUsername: m.InviterUsername,
		InviterScore:    m.InviterScore,
		Status:          domain.ChallengeStatus(m.Status),
		Participants:    m.Participants,
		CreatedAt:       m.CreatedAt,
		ExpiresAt:       m.ExpiresAt,
	}
}

// isUniqueViolation reports whether err is a Postgres unique_violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.Field('C') == "23505"
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// validID guards uuid columns from text that Postgres would reject outright.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
