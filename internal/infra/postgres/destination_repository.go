package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"globetrotter-service/internal/domain"
)

// DestinationRepository is the Postgres system of record for the catalog.
type DestinationRepository struct {
	db *bun.DB
}

func NewDestinationRepository(db *bun.DB) *DestinationRepository {
	return &DestinationRepository{db: db}
}

func (r *DestinationRepository) Count(ctx context.Context) (int, error) {
	n, err := r.db.NewSelect().Model((*destinationModel)(nil)).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count destinations: %w", err)
	}
	return n, nil
}

func (r *DestinationRepository) List(ctx context.Context) ([]domain.Destination, error) {
	var models []destinationModel
	err := r.db.NewSelect().
		Model(&models).
		OrderExpr("created_at ASC, length(alias) ASC, alias ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list destinations: %w", err)
	}
	out := make([]domain.Destination, 0, len(models))
	for i := range models {
		out = append(out, models[i].toDomain())
	}
	return out, nil
}

func (r *DestinationRepository) GetByID(ctx context.Context, id string) (domain.Destination, error) {
	if !validID(id) {
		return domain.Destination{}, domain.ErrDestinationNotFound
	}
	return r.getBy(ctx, "id", id)
}

// GetByName matches names case-insensitively, like the unique index.
func (r *DestinationRepository) GetByName(ctx context.Context, name string) (domain.Destination, error) {
	m := new(destinationModel)
	err := r.db.NewSelect().Model(m).Where("lower(name) = lower(?)", name).Limit(1).Scan(ctx)
	if isNoRows(err) {
		return domain.Destination{}, domain.ErrDestinationNotFound
	}
	if err != nil {
		return domain.Destination{}, fmt.Errorf("get destination by name: %w", err)
	}
	return m.toDomain(), nil
}

// Insert writes the batch in one statement; a duplicate name or alias rejects all of it.
func (r *DestinationRepository) Insert(ctx context.Context, destinations ...domain.Destination) error {
	if len(destinations) == 0 {
		return nil
	}
	models := make([]destinationModel, 0, len(destinations))
	for _, d := range destinations {
		models = append(models, newDestinationModel(d))
	}
	if _, err := r.db.NewInsert().Model(&models).Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDestinationExists
		}
		return fmt.Errorf("insert destinations: %w", err)
	}
	return nil
}

func (r *DestinationRepository) getBy(ctx context.Context, column, value string) (domain.Destination, error) {
	m := new(destinationModel)
	err := r.db.NewSelect().Model(m).Where("? = ?", bun.Ident(column), value).Limit(1).Scan(ctx)
	if isNoRows(err) {
		return domain.Destination{}, domain.ErrDestinationNotFound
	}
	if err != nil {
		return domain.Destination{}, fmt.Errorf("get destination by %s: %w", column, err)
	}
	return m.toDomain(), nil
}
