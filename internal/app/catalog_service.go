package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"globetrotter-service/internal/domain"
)

const (
	// DefaultExpandCount is used when an expansion request names no count.
	DefaultExpandCount = 10
	// MaxExpandCount caps a single expansion request.
	MaxExpandCount = 20
)

// CatalogService manages the destination catalog: seeding, manual additions
// and generated expansions.
type CatalogService struct {
	destinations DestinationRepository
	catalog      CatalogRepository
	generator    DestinationGenerator
	now          func() time.Time
}

// NewCatalogService wires the catalog use cases. generator may be nil, in
// which case Expand fails with domain.ErrGeneratorUnavailable.
func NewCatalogService(destinations DestinationRepository, catalog CatalogRepository, generator DestinationGenerator) *CatalogService {
	return &CatalogService{destinations: destinations, catalog: catalog, generator: generator, now: time.Now}
}

// ExpandResult reports what an expansion inserted and how many generated entries were dropped.
type ExpandResult struct {
	Requested int
	Inserted  []domain.Destination
	Discarded int
}

// Seed inserts the starter destinations into an empty catalog. On a non-empty
// catalog it returns the current count with domain.ErrCatalogSeeded.
func (s *CatalogService) Seed(ctx context.Context) (int, error) {
	count, err := s.destinations.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return count, domain.ErrCatalogSeeded
	}

	starters := StarterDestinations()
	now := s.now().UTC()
	for i := range starters {
		starters[i].ID = uuid.NewString()
		starters[i].CreatedAt = now
	}
	if err := s.destinations.Insert(ctx, starters...); err != nil {
		return 0, err
	}
	s.invalidate(ctx)
	log.Printf("seeded %d starter destinations", len(starters))
	return len(starters), nil
}

// Expand asks the generator for count new destinations (default 10, at most
// 20). Generated entries that fail validation or repeat an existing name are
// dropped and logged; the rest are inserted together.
func (s *CatalogService) Expand(ctx context.Context, count int) (ExpandResult, error) {
	if s.generator == nil {
		return ExpandResult{}, domain.ErrGeneratorUnavailable
	}
	if count <= 0 {
		count = DefaultExpandCount
	}
	if count > MaxExpandCount {
		count = MaxExpandCount
	}

	existing, err := s.destinations.List(ctx)
	if err != nil {
		return ExpandResult{}, err
	}
	taken := make(map[string]struct{}, len(existing))
	names := make([]string, 0, len(existing))
	for _, d := range existing {
		lower := strings.ToLower(d.Name)
		taken[lower] = struct{}{}
		names = append(names, lower)
	}

	log.Printf("expanding catalog with %d generated destinations", count)
	generated, err := s.generator.Generate(ctx, count, names)
	if err != nil {
		return ExpandResult{}, err
	}

	result := ExpandResult{Requested: count}
	now := s.now().UTC()
	accepted := make([]domain.Destination, 0, len(generated))
	for _, d := range generated {
		d.Normalize()
		if err := d.Validate(); err != nil {
			log.Printf("discarding generated destination %q: %v", d.Name, err)
			result.Discarded++
			continue
		}
		lower := strings.ToLower(d.Name)
		if _, dup := taken[lower]; dup {
			log.Printf("discarding generated destination %q: already in catalog", d.Name)
			result.Discarded++
			continue
		}
		taken[lower] = struct{}{}
		d.ID = uuid.NewString()
		d.Alias = domain.Alias(len(existing) + len(accepted) + 1)
		d.CreatedAt = now
		accepted = append(accepted, d)
	}

	if len(accepted) > 0 {
		if err := s.destinations.Insert(ctx, accepted...); err != nil {
			return ExpandResult{}, err
		}
		s.invalidate(ctx)
	}
	result.Inserted = accepted
	log.Printf("expanded catalog with %d destinations (%d discarded)", len(accepted), result.Discarded)
	return result, nil
}

// List returns the whole catalog from the system of record.
func (s *CatalogService) List(ctx context.Context) ([]domain.Destination, error) {
	return s.destinations.List(ctx)
}

// Add inserts one hand-written destination with the next sequential alias.
func (s *CatalogService) Add(ctx context.Context, d domain.Destination) (domain.Destination, error) {
	d.Normalize()
	if err := d.Validate(); err != nil {
		return domain.Destination{}, err
	}

	_, err := s.destinations.GetByName(ctx, d.Name)
	if err == nil {
		return domain.Destination{}, domain.ErrDestinationExists
	}
	if !errors.Is(err, domain.ErrDestinationNotFound) {
		return domain.Destination{}, err
	}

	count, err := s.destinations.Count(ctx)
	if err != nil {
		return domain.Destination{}, err
	}
	d.ID = uuid.NewString()
	d.Alias = domain.Alias(count + 1)
	d.CreatedAt = s.now().UTC()
	if err := s.destinations.Insert(ctx, d); err != nil {
		return domain.Destination{}, err
	}
	s.invalidate(ctx)
	return d, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Invalidate(ctx); err != nil {
		log.Printf("catalog cache invalidation failed: %v", err)
	}
}

// CatalogSnapshot is the exported form of the catalog.
type CatalogSnapshot struct {
	ExportedAt   time.Time            `json:"exportedAt"`
	Count        int                  `json:"count"`
	Destinations []domain.Destination `json:"destinations"`
}

// Snapshot captures the full catalog for export.
func (s *CatalogService) Snapshot(ctx context.Context) (CatalogSnapshot, error) {
	destinations, err := s.destinations.List(ctx)
	if err != nil {
		return CatalogSnapshot{}, err
	}
	return CatalogSnapshot{
		ExportedAt:   s.now().UTC(),
		Count:        len(destinations),
		Destinations: destinations,
	}, nil
}

// ExportKey names the object a snapshot taken at t is uploaded under.
func ExportKey(t time.Time) string {
	return "catalog/destinations-" + t.UTC().Format("20060102T150405Z") + ".json"
}
