package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"globetrotter-service/internal/domain"
)

// CatalogLoader reads the whole catalog over a pgx pool for the cache layer.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

const loadCatalogSQL = `
SELECT id::text, alias, name, clues, fun_facts, difficulty, continent, country, image_url, created_at
FROM destinations
ORDER BY created_at, length(alias), alias`

func (l *CatalogLoader) LoadCatalog(ctx context.Context) ([]domain.Destination, error) {
	rows, err := l.pool.Query(ctx, loadCatalogSQL)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var catalog []domain.Destination
	for rows.Next() {
		var (
			d                     domain.Destination
			rawClues, rawFunFacts []byte
			difficulty, continent string
			createdAt             time.Time
		)
		if err := rows.Scan(&d.ID, &d.Alias, &d.Name, &rawClues, &rawFunFacts, &difficulty, &continent, &d.Country, &d.ImageURL, &createdAt); err != nil {
			return nil, fmt.Errorf("scan destination: %w", err)
		}
		if err := json.Unmarshal(rawClues, &d.Clues); err != nil {
			return nil, fmt.Errorf("unmarshal clues for %s: %w", d.Name, err)
		}
		if err := json.Unmarshal(rawFunFacts, &d.FunFacts); err != nil {
			return nil, fmt.Errorf("unmarshal fun facts for %s: %w", d.Name, err)
		}
		d.Difficulty = domain.Difficulty(difficulty)
		d.Continent = domain.Continent(continent)
		d.CreatedAt = createdAt
		catalog = append(catalog, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return catalog, nil
}
