package storage

import (
	"sync"

	"github.com/lehigh-university-libraries/scanview/internal/view"
)

// DefaultCapacity bounds how many viewer pages keep their transform state.
const DefaultCapacity = 32

// ViewStore keeps the composers of recently rendered viewer pages. The
// oldest entry is evicted once capacity is reached.
type ViewStore struct {
	views    map[string]*view.Composer
	order    []string
	capacity int
	mu       sync.RWMutex
}

func New(capacity int) *ViewStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &ViewStore{
		views:    make(map[string]*view.Composer),
		capacity: capacity,
	}
}

func (s *ViewStore) Get(viewID string) (*view.Composer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, exists := s.views[viewID]
	return c, exists
}

func (s *ViewStore) Set(viewID string, c *view.Composer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.views[viewID]; !exists {
		s.order = append(s.order, viewID)
	}
	s.views[viewID] = c
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.views, oldest)
	}
}

func (s *ViewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.views)
}

func (s *ViewStore) Delete(viewID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.views[viewID]; !exists {
		return
	}
	delete(s.views, viewID)
	for i, id := range s.order {
		if id == viewID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
