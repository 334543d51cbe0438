package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"globetrotter-service/internal/domain"
)

// UserRepository stores accounts in the users table.
type UserRepository struct {
	db *bun.DB
}

func NewUserRepository(db *bun.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m := newUserModel(user)
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.User{}, domain.ErrUserExists
		}
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return m.toDomain(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (domain.User, error) {
	if !validID(id) {
		return domain.User{}, domain.ErrUserNotFound
	}
	return r.getBy(ctx, "id", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return r.getBy(ctx, "username", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return r.getBy(ctx, "email", email)
}

// RecordAnswer increments the counters in a single UPDATE so concurrent
// submissions for one user never lose each other's writes.
func (r *UserRepository) RecordAnswer(ctx context.Context, id string, correct bool) (domain.User, error) {
	if !validID(id) {
		return domain.User{}, domain.ErrUserNotFound
	}
	m := new(userModel)
	q := r.db.NewUpdate().
		Model(m).
		Set("games_played = games_played + 1").
		Where("id = ?", id).
		Returning("*")
	if correct {
		q = q.Set("score = score + ?", domain.PointsPerCorrectAnswer).
			Set("correct_answers = correct_answers + 1")
	} else {
		q = q.Set("incorrect_answers = incorrect_answers + 1")
	}

	res, err := q.Exec(ctx, m)
	if err != nil {
		if isNoRows(err) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("record answer: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.User{}, domain.ErrUserNotFound
	}
	return m.toDomain(), nil
}

func (r *UserRepository) Top(ctx context.Context, n int) ([]domain.User, error) {
	var models []userModel
	err := r.db.NewSelect().
		Model(&models).
		OrderExpr("score DESC, created_at ASC").
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, models[i].toDomain())
	}
	return users, nil
}

func (r *UserRepository) getBy(ctx context.Context, column, value string) (domain.User, error) {
	m := new(userModel)
	err := r.db.NewSelect().Model(m).Where("? = ?", bun.Ident(column), value).Limit(1).Scan(ctx)
	if isNoRows(err) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user by %s: %w", column, err)
	}
	return m.toDomain(), nil
}
