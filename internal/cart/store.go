package cart

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

// Store holds the active session's cart. Every mutation is applied
// immediately and returns a copy of the resulting cart.
type Store struct {
	mu    sync.RWMutex
	items []LineItem
	newID func() string
}

func NewStore() *Store {
	return &Store{newID: uuid.NewString}
}

// Add validates item, assigns it a fresh id and appends it.
func (s *Store) Add(item LineItem) ([]LineItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if item.Color == "" {
		item.Color = DefaultColor
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item.ID = s.newID()
	for s.indexOf(item.ID) >= 0 {
		item.ID = s.newID()
	}
	s.items = append(s.items, item)
	return slices.Clone(s.items), nil
}

// Remove deletes the item with id. Removing an absent id is a no-op.
func (s *Store) Remove(id string) []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
	}
	return slices.Clone(s.items)
}

// Replace swaps the whole cart, e.g. with the server's copy after login.
// Ids are kept; items without one get a fresh id. On error the cart is untouched.
func (s *Store) Replace(items []LineItem) ([]LineItem, error) {
	next := make([]LineItem, 0, len(items))
	seen := make(map[string]struct{}, len(items))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return nil, err
		}
		if item.ID == "" {
			item.ID = s.newID()
		}
		if _, dup := seen[item.ID]; dup {
			return nil, ErrDuplicateItemID
		}
		if item.Color == "" {
			item.Color = DefaultColor
		}
		seen[item.ID] = struct{}{}
		next = append(next, item)
	}

	s.items = next
	return slices.Clone(s.items), nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *Store) Items() []LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.items, func(l LineItem) bool { return l.ID == id })
}
