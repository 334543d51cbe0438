package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/domain"
)

func TestSeedOnlyOnce(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	n, err := env.catalogSvc.Seed(ctx)
	if err != nil || n != 3 {
		t.Fatalf("expected 3 seeded, got %d (%v)", n, err)
	}
	n, err = env.catalogSvc.Seed(ctx)
	if !errors.Is(err, domain.ErrCatalogSeeded) || n != 3 {
		t.Fatalf("expected already seeded with count 3, got %d (%v)", n, err)
	}

	paris, err := env.destinations.GetByName(ctx, "Paris")
	if err != nil {
		t.Fatalf("get paris: %v", err)
	}
	if paris.Alias != "dst1" || paris.Difficulty != domain.DifficultyEasy {
		t.Fatalf("unexpected seeded paris: %+v", paris)
	}
}

func TestAddDestination(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	if _, err := env.catalogSvc.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	added, err := env.catalogSvc.Add(ctx, destination("Cairo", domain.Africa, "Egypt", "Pyramids nearby"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.Alias != "dst4" || added.Difficulty != domain.DifficultyMedium {
		t.Fatalf("unexpected destination: %+v", added)
	}

	if _, err := env.catalogSvc.Add(ctx, destination("Cairo", domain.Africa, "Egypt", "again")); !errors.Is(err, domain.ErrDestinationExists) {
		t.Fatalf("expected ErrDestinationExists, got %v", err)
	}
	if _, err := env.catalogSvc.Add(ctx, destination("paris", domain.Europe, "France", "lower-cased")); !errors.Is(err, domain.ErrDestinationExists) {
		t.Fatalf("expected names to clash regardless of case, got %v", err)
	}
	bad := destination("Atlantis", "Underwater", "None", "clue")
	if _, err := env.catalogSvc.Add(ctx, bad); !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAddInvalidatesCatalogCache(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	if _, err := env.catalogSvc.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before, err := env.catalog.GetCatalog(ctx)
	if err != nil || len(before) != 3 {
		t.Fatalf("expected 3 cached destinations, got %d (%v)", len(before), err)
	}
	if _, err := env.catalogSvc.Add(ctx, destination("Lima", domain.SouthAmerica, "Peru", "clue")); err != nil {
		t.Fatalf("add: %v", err)
	}
	after, err := env.catalog.GetCatalog(ctx)
	if err != nil || len(after) != 4 {
		t.Fatalf("expected cache to reload 4 destinations, got %d (%v)", len(after), err)
	}
}

func TestExpandFiltersGeneratedEntries(t *testing.T) {
	gen := &fakeGenerator{result: []domain.Destination{
		destination("Machu Picchu", domain.SouthAmerica, "Peru", "Lost city of the Incas"),
		destination("PARIS", domain.Europe, "France", "duplicate"),
		destination("Atlantis", "Under the sea", "None", "myth"),
		{Name: "Kyoto", Clues: []string{"Old capital"}, Continent: domain.Asia, Country: "Japan"},
	}}
	env := newTestEnv(t, gen)
	ctx := context.Background()
	if _, err := env.catalogSvc.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}

	res, err := env.catalogSvc.Expand(ctx, 0)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if gen.lastCount != app.DefaultExpandCount {
		t.Fatalf("expected default count, got %d", gen.lastCount)
	}
	if len(gen.lastNames) != 3 || gen.lastNames[0] != "paris" {
		t.Fatalf("expected lower-cased existing names, got %v", gen.lastNames)
	}
	if len(res.Inserted) != 1 || res.Discarded != 3 {
		t.Fatalf("expected 1 inserted and 3 discarded, got %d/%d", len(res.Inserted), res.Discarded)
	}
	if res.Inserted[0].Alias != "dst4" || res.Inserted[0].Difficulty != domain.DifficultyMedium {
		t.Fatalf("unexpected inserted entry: %+v", res.Inserted[0])
	}
	count, _ := env.destinations.Count(ctx)
	if count != 4 {
		t.Fatalf("expected 4 destinations, got %d", count)
	}
}

func TestExpandCapsCount(t *testing.T) {
	gen := &fakeGenerator{}
	env := newTestEnv(t, gen)
	if _, err := env.catalogSvc.Expand(context.Background(), 50); err != nil {
		t.Fatalf("expand: %v", err)
	}
	if gen.lastCount != app.MaxExpandCount {
		t.Fatalf("expected count capped at %d, got %d", app.MaxExpandCount, gen.lastCount)
	}
}

func TestExpandErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	if _, err := env.catalogSvc.Expand(context.Background(), 5); !errors.Is(err, domain.ErrGeneratorUnavailable) {
		t.Fatalf("expected ErrGeneratorUnavailable, got %v", err)
	}

	gen := &fakeGenerator{err: domain.ErrGeneratedPayload}
	env = newTestEnv(t, gen)
	if _, err := env.catalogSvc.Expand(context.Background(), 5); !errors.Is(err, domain.ErrGeneratedPayload) {
		t.Fatalf("expected parse error to surface, got %v", err)
	}
}

func TestSnapshot(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()
	if _, err := env.catalogSvc.Seed(ctx); err != nil {
		t.Fatalf("seed: %v", err)
	}
	snap, err := env.catalogSvc.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snap.Count != 3 || len(snap.Destinations) != 3 || snap.Destinations[0].Name != "Paris" {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	key := app.ExportKey(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC))
	if key != "catalog/destinations-20250301T093000Z.json" {
		t.Fatalf("unexpected export key %q", key)
	}
}
