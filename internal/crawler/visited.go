package crawler

import "sync"

// VisitedSet is the set of urls that have been claimed by a worker. It only grows during a crawl.
type VisitedSet struct {
	mu   sync.Mutex
	urls map[string]struct{}
}

// TryClaim records the url and returns true if it was not visited yet. It returns false otherwise.
func (s *VisitedSet) TryClaim(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.urls[url]; ok {
		return false
	}

	s.urls[url] = struct{}{}

	return true
}

// Has returns true if the url has been claimed.
func (s *VisitedSet) Has(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.urls[url]

	return ok
}

// Len returns the number of visited urls.
func (s *VisitedSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.urls)
}

// NewVisitedSet creates an empty VisitedSet.
func NewVisitedSet() *VisitedSet {
	return &VisitedSet{urls: make(map[string]struct{})}
}
