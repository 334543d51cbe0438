package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"globetrotter-service/internal/domain"
)

// ChallengeRepository stores challenges in Postgres. Expired rows are hidden
// from reads and removed by PurgeExpired.
type ChallengeRepository struct {
	db  *bun.DB
	now func() time.Time
}

func NewChallengeRepository(db *bun.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db, now: time.Now}
}

func (r *ChallengeRepository) Create(ctx context.Context, challenge domain.Challenge) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// an expired row still holds the unique code until the purge job runs
		_, err := tx.NewDelete().
			Model((*challengeModel)(nil)).
			Where("code = ?", challenge.Code).
			Where("expires_at <= ?", r.now()).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("clear expired challenge: %w", err)
		}
		if _, err := tx.NewInsert().Model(newChallengeModel(challenge)).Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrChallengeCodeTaken
			}
			return fmt.Errorf("insert challenge: %w", err)
		}
		return nil
	})
}

func (r *ChallengeRepository) GetByCode(ctx context.Context, code string) (domain.Challenge, error) {
	m := new(challengeModel)
	err := r.db.NewSelect().
		Model(m).
		Where("code = ?", code).
		Where("expires_at > ?", r.now()).
		Scan(ctx)
	if isNoRows(err) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("get challenge %s: %w", code, err)
	}
	return m.toDomain(), nil
}

// Update locks the row with SELECT ... FOR UPDATE for the duration of fn.
func (r *ChallengeRepository) Update(ctx context.Context, code string, fn func(*domain.Challenge) error) (domain.Challenge, error) {
	var updated domain.Challenge
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		m := new(challengeModel)
		err := tx.NewSelect().
			Model(m).
			Where("code = ?", code).
			Where("expires_at > ?", r.now()).
			For("UPDATE").
			Scan(ctx)
		if isNoRows(err) {
			return domain.ErrChallengeNotFound
		}
		if err != nil {
			return fmt.Errorf("lock challenge %s: %w", code, err)
		}

		challenge := m.toDomain()
		if err := fn(&challenge); err != nil {
			return err
		}

		next := newChallengeModel(challenge)
		_, err = tx.NewUpdate().
			Model(next).
			Column("status", "participants").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update challenge %s: %w", code, err)
		}
		updated = challenge
		return nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	return updated, nil
}

// PurgeExpired deletes every challenge past its expiry and reports how many went.
func (r *ChallengeRepository) PurgeExpired(ctx context.Context) (int, error) {
	res, err := r.db.NewDelete().
		Model((*challengeModel)(nil)).
		Where("expires_at <= ?", r.now()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge challenges: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
