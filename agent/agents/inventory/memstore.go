package inventory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/kridsada/agentdesk/agent/contract"
)

// MemoryStore is a process-local Store used when no database is
// configured and by tests. A single mutex serializes mutations, so at
// most one mutation per id is ever in flight.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Item
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*Item),
		now:   time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, name string, quantity int, category string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	item := &Item{
		ID:        uuid.NewString(),
		Name:      name,
		Quantity:  quantity,
		Category:  category,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.items[item.ID] = item
	return cloneItem(item), nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", contractx.ErrNotFound, id)
	}
	return cloneItem(item), nil
}

func (s *MemoryStore) List(_ context.Context, f Filter) ([]*Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Item
	for _, item := range s.items {
		if matchesFilter(item, f) {
			out = append(out, cloneItem(item))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, id string, p Patch) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", contractx.ErrNotFound, id)
	}

	applyPatch(item, p, s.now().UTC())
	return cloneItem(item), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", contractx.ErrNotFound, id)
	}
	delete(s.items, id)
	return cloneItem(item), nil
}

func matchesFilter(item *Item, f Filter) bool {
	if f.NameContains != "" &&
		!strings.Contains(strings.ToLower(item.Name), strings.ToLower(f.NameContains)) {
		return false
	}
	if f.Category != "" && !strings.EqualFold(item.Category, f.Category) {
		return false
	}
	if f.MinQuantity != nil && item.Quantity < *f.MinQuantity {
		return false
	}
	if f.MaxQuantity != nil && item.Quantity > *f.MaxQuantity {
		return false
	}
	return true
}

func cloneItem(in *Item) *Item {
	out := *in
	return &out
}
