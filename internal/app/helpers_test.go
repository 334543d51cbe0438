package app_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/auth"
	"globetrotter-service/internal/domain"
	"globetrotter-service/internal/infra/memory"
)

type testEnv struct {
	users        *memory.UserStore
	destinations *memory.DestinationStore
	catalog      *memory.CatalogRepository
	challenges   *memory.ChallengeStore
	auth         *app.AuthService
	game         *app.GameService
	catalogSvc   *app.CatalogService
	challengeSvc *app.ChallengeService
	clock        *fakeClock
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestEnv(t *testing.T, generator app.DestinationGenerator) *testEnv {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	users := memory.NewUserStore()
	destinations := memory.NewDestinationStore()
	catalog := memory.NewCatalogRepository(destinations, time.Hour)
	challenges := memory.NewChallengeStoreWithClock(clock.Now)

	return &testEnv{
		users:        users,
		destinations: destinations,
		catalog:      catalog,
		challenges:   challenges,
		auth:         app.NewAuthService(users, auth.NewIssuer("test-secret", time.Hour)),
		game:         app.NewGameServiceWithRand(users, destinations, catalog, rand.New(rand.NewSource(42))),
		catalogSvc:   app.NewCatalogService(destinations, catalog, generator),
		challengeSvc: app.NewChallengeServiceWithClock(challenges, users, app.NewChallengeHub(), 0, clock.Now),
		clock:        clock,
	}
}

func (e *testEnv) register(t *testing.T, username string) domain.User {
	t.Helper()
	_, user, err := e.auth.Register(context.Background(), username, username+"@example.com", "password1")
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func destination(name string, continent domain.Continent, country string, clues ...string) domain.Destination {
	return domain.Destination{
		Name:      name,
		Clues:     clues,
		FunFacts:  []string{name + " fact one", name + " fact two"},
		Continent: continent,
		Country:   country,
	}
}

type fakeGenerator struct {
	calls     int
	lastCount int
	lastNames []string
	result    []domain.Destination
	err       error
}

func (g *fakeGenerator) Generate(_ context.Context, count int, existing []string) ([]domain.Destination, error) {
	g.calls++
	g.lastCount = count
	g.lastNames = existing
	return g.result, g.err
}
