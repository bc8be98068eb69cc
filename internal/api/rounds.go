package api

import (
	"strings"
	"sync"
)

// roundStore keeps the most recent quiz rounds in memory, evicting the
// oldest once max is reached.
type roundStore struct {
	mu    sync.Mutex
	max   int
	order []string
	byID  map[string]Round
}

func newRoundStore(max int) *roundStore {
	if max <= 0 {
		max = 1
	}
	return &roundStore{
		max:  max,
		byID: make(map[string]Round),
	}
}

func (s *roundStore) add(r Round) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.order) >= s.max {
		delete(s.byID, s.order[0])
		s.order = s.order[1:]
	}
	s.order = append(s.order, r.ID)
	s.byID[r.ID] = r
}

// get finds a round by full id or unique prefix
func (s *roundStore) get(id string) (Round, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, ok := s.byID[id]; ok {
		return r, true
	}
	if id == "" {
		return Round{}, false
	}

	var found *Round
	for _, rid := range s.order {
		if strings.HasPrefix(rid, id) {
			if found != nil {
				return Round{}, false
			}
			r := s.byID[rid]
			found = &r
		}
	}
	if found == nil {
		return Round{}, false
	}
	return *found, true
}

func (s *roundStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}
