package memory

import (
	"context"
	"strings"
	"sync"

	"globetrotter-service/internal/domain"
)

// DestinationStore is an in-memory catalog. It also serves as the CatalogLoader
// when no database is configured.
type DestinationStore struct {
	mu      sync.RWMutex
	ordered []domain.Destination
	byID    map[string]int
	byName  map[string]int
	aliases map[string]struct{}
}

func NewDestinationStore(seed ...domain.Destination) *DestinationStore {
	s := &DestinationStore{
		byID:    make(map[string]int),
		byName:  make(map[string]int),
		aliases: make(map[string]struct{}),
	}
	_ = s.Insert(context.Background(), seed...)
	return s
}

func (s *DestinationStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ordered), nil
}

func (s *DestinationStore) List(_ context.Context) ([]domain.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Destination, len(s.ordered))
	copy(out, s.ordered)
	return out, nil
}

// LoadCatalog satisfies CatalogLoader.
func (s *DestinationStore) LoadCatalog(ctx context.Context) ([]domain.Destination, error) {
	return s.List(ctx)
}

func (s *DestinationStore) GetByID(_ context.Context, id string) (domain.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return domain.Destination{}, domain.ErrDestinationNotFound
	}
	return s.ordered[idx], nil
}

func (s *DestinationStore) GetByName(_ context.Context, name string) (domain.Destination, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byName[strings.ToLower(name)]
	if !ok {
		return domain.Destination{}, domain.ErrDestinationNotFound
	}
	return s.ordered[idx], nil
}

// Insert adds all destinations or, on any id/name/alias clash, none.
func (s *DestinationStore) Insert(_ context.Context, destinations ...domain.Destination) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make(map[string]struct{}, len(destinations))
	aliases := make(map[string]struct{}, len(destinations))
	for _, d := range destinations {
		if _, ok := s.byName[strings.ToLower(d.Name)]; ok {
			return domain.ErrDestinationExists
		}
		if _, ok := s.byID[d.ID]; ok {
			return domain.ErrDestinationExists
		}
		if _, ok := s.aliases[d.Alias]; ok {
			return domain.ErrDestinationExists
		}
		if _, ok := names[strings.ToLower(d.Name)]; ok {
			return domain.ErrDestinationExists
		}
		if _, ok := aliases[d.Alias]; ok {
			return domain.ErrDestinationExists
		}
		names[strings.ToLower(d.Name)] = struct{}{}
		aliases[d.Alias] = struct{}{}
	}

	for _, d := range destinations {
		s.byID[d.ID] = len(s.ordered)
		s.byName[strings.ToLower(d.Name)] = len(s.ordered)
		s.aliases[d.Alias] = struct{}{}
		s.ordered = append(s.ordered, d)
	}
	return nil
}
