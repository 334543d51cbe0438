package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"globetrotter-service/internal/app"
	"globetrotter-service/internal/domain"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type countingLoader struct {
	mu      sync.Mutex
	calls   int
	catalog []domain.Destination
}

func (l *countingLoader) LoadCatalog(context.Context) ([]domain.Destination, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls++
	return l.catalog, nil
}

func TestCatalogRepositoryCachesInRedis(t *testing.T) {
	mr, client := newClient(t)
	loader := &countingLoader{catalog: []domain.Destination{{ID: "1", Name: "Paris", Clues: []string{"tower"}}}}
	repo := NewCatalogRepository(client, loader, time.Minute)
	ctx := context.Background()

	if _, err := repo.GetCatalog(ctx); err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if !mr.Exists(CatalogKey) {
		t.Fatalf("expected catalog key to be set")
	}
	if ttl := mr.TTL(CatalogKey); ttl < time.Minute || ttl > time.Minute+6*time.Second {
		t.Fatalf("expected ttl with jitter, got %s", ttl)
	}

	// Second call should hit cache, loader not incremented.
	catalog, _ := repo.GetCatalog(ctx)
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(catalog) != 1 || catalog[0].Name != "Paris" {
		t.Fatalf("unexpected cached catalog: %+v", catalog)
	}

	if err := repo.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists(CatalogKey) {
		t.Fatalf("expected catalog key removed")
	}
	_, _ = repo.GetCatalog(ctx)
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}

// gatedLoader returns a snapshot taken before the first load is released.
type gatedLoader struct {
	mu      sync.Mutex
	catalog []domain.Destination
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (l *gatedLoader) set(catalog []domain.Destination) {
	l.mu.Lock()
	l.catalog = catalog
	l.mu.Unlock()
}

func (l *gatedLoader) LoadCatalog(context.Context) ([]domain.Destination, error) {
	l.mu.Lock()
	snapshot := l.catalog
	l.mu.Unlock()
	first := false
	l.once.Do(func() { first = true })
	if first {
		close(l.started)
		<-l.release
	}
	return snapshot, nil
}

func TestCatalogRepositorySkipsWriteAfterInvalidate(t *testing.T) {
	mr, client := newClient(t)
	paris := domain.Destination{ID: "1", Name: "Paris", Clues: []string{"tower"}}
	rome := domain.Destination{ID: "2", Name: "Rome", Clues: []string{"colosseum"}}
	loader := &gatedLoader{
		catalog: []domain.Destination{paris},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	repo := NewCatalogRepository(client, loader, time.Minute)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = repo.GetCatalog(ctx)
	}()
	<-loader.started

	loader.set([]domain.Destination{paris, rome})
	if err := repo.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)
	<-done

	if mr.Exists(CatalogKey) {
		t.Fatalf("load overlapping an invalidate must not be cached")
	}
	catalog, err := repo.GetCatalog(ctx)
	if err != nil {
		t.Fatalf("get catalog: %v", err)
	}
	if len(catalog) != 2 {
		t.Fatalf("stale catalog after invalidate: %d entries, want 2", len(catalog))
	}
	if !mr.Exists(CatalogKey) {
		t.Fatalf("expected fresh catalog to be cached")
	}
}

func newChallenge(code string, expiresIn time.Duration) domain.Challenge {
	now := time.Now().UTC()
	return domain.Challenge{
		ID:           "c-" + code,
		Code:         code,
		InviterID:    "u1",
		Status:       domain.StatusPending,
		Participants: []domain.Participant{{UserID: "u1", Username: "alice"}},
		CreatedAt:    now,
		ExpiresAt:    now.Add(expiresIn),
	}
}

func TestChallengeStoreCreateSetsTTL(t *testing.T) {
	mr, client := newClient(t)
	store := NewChallengeStore(client)
	ctx := context.Background()

	if err := store.Create(ctx, newChallenge("abcd1234", 7*24*time.Hour)); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ttl := mr.TTL("challenge:abcd1234"); ttl <= 6*24*time.Hour {
		t.Fatalf("expected ~7 day ttl, got %s", ttl)
	}
	if err := store.Create(ctx, newChallenge("abcd1234", time.Hour)); !errors.Is(err, domain.ErrChallengeCodeTaken) {
		t.Fatalf("expected ErrChallengeCodeTaken, got %v", err)
	}

	got, err := store.GetByCode(ctx, "abcd1234")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Participants[0].Username != "alice" {
		t.Fatalf("unexpected challenge: %+v", got)
	}

	mr.FastForward(8 * 24 * time.Hour)
	if _, err := store.GetByCode(ctx, "abcd1234"); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected expired challenge to be gone, got %v", err)
	}
}

func TestChallengeStoreUpdateKeepsTTL(t *testing.T) {
	mr, client := newClient(t)
	store := NewChallengeStore(client)
	ctx := context.Background()
	_ = store.Create(ctx, newChallenge("feedbeef", time.Hour))

	updated, err := store.Update(ctx, "feedbeef", func(c *domain.Challenge) error {
		c.Participants = append(c.Participants, domain.Participant{UserID: "u2"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(updated.Participants))
	}
	if ttl := mr.TTL("challenge:feedbeef"); ttl <= 0 {
		t.Fatalf("expected ttl to survive update, got %s", ttl)
	}

	_, err = store.Update(ctx, "feedbeef", func(c *domain.Challenge) error {
		c.Participants = nil
		return domain.ErrNotParticipant
	})
	if !errors.Is(err, domain.ErrNotParticipant) {
		t.Fatalf("expected ErrNotParticipant, got %v", err)
	}
	got, _ := store.GetByCode(ctx, "feedbeef")
	if len(got.Participants) != 2 {
		t.Fatalf("failed update must not be written, got %d participants", len(got.Participants))
	}

	if _, err := store.Update(ctx, "missing0", func(*domain.Challenge) error { return nil }); !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Fatalf("expected ErrChallengeNotFound, got %v", err)
	}
}

func TestChallengeStoreConcurrentUpdates(t *testing.T) {
	_, client := newClient(t)
	store := NewChallengeStore(client)
	ctx := context.Background()
	_ = store.Create(ctx, newChallenge("0badf00d", time.Hour))

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, "0badf00d", func(c *domain.Challenge) error {
				c.Participants = append(c.Participants, domain.Participant{UserID: fmt.Sprintf("joiner-%d", i)})
				return nil
			})
			if err != nil {
				t.Errorf("update %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, err := store.GetByCode(ctx, "0badf00d")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Participants) != 6 {
		t.Fatalf("expected 6 participants, got %d", len(got.Participants))
	}
}

func TestChallengeRelayDeliversToLocalHub(t *testing.T) {
	_, client := newClient(t)
	hub := app.NewChallengeHub()
	relay := NewChallengeRelay(client, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := relay.Start(ctx); err != nil {
		t.Fatalf("start relay: %v", err)
	}

	initial := newChallenge("cafe0001", time.Hour)
	updates, unsubscribe := relay.Subscribe(initial.Code, initial)
	defer unsubscribe()
	<-updates // initial snapshot

	accepted := initial
	accepted.Status = domain.StatusAccepted
	relay.Publish(accepted)

	select {
	case got := <-updates:
		if got.Status != domain.StatusAccepted {
			t.Fatalf("expected accepted, got %s", got.Status)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for relayed update")
	}
}
