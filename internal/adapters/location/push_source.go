package location

import (
	"sync"

	"arrival-route-service/internal/domain"
	"arrival-route-service/internal/ports"
)

type watcher struct {
	onPosition func(domain.Position)
	onError    func(domain.LocationError)
}

// PushSource is an in-process LocationSource fed by callers, typically the
// POST /positions handler relaying fixes from a browser.
//
// Delivery is synchronous on the pushing goroutine.
type PushSource struct {
	mu       sync.RWMutex
	nextID   int
	watchers map[int]watcher
}

func NewPushSource() *PushSource {
	return &PushSource{watchers: map[int]watcher{}}
}

type pushHandle struct {
	once sync.Once
	src  *PushSource
	id   int
}

func (h *pushHandle) Cancel() {
	h.once.Do(func() {
		h.src.mu.Lock()
		delete(h.src.watchers, h.id)
		h.src.mu.Unlock()
	})
}

func (s *PushSource) Watch(
	onPosition func(domain.Position),
	onError func(domain.LocationError),
	_ ports.WatchOptions,
) (ports.WatchHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.watchers[id] = watcher{onPosition: onPosition, onError: onError}

	return &pushHandle{src: s, id: id}, nil
}

// Push delivers a fix to every active watcher.
func (s *PushSource) Push(p domain.Position) {
	for _, w := range s.snapshot() {
		if w.onPosition != nil {
			w.onPosition(p)
		}
	}
}

// Fail delivers a location error to every active watcher.
func (s *PushSource) Fail(e domain.LocationError) {
	for _, w := range s.snapshot() {
		if w.onError != nil {
			w.onError(e)
		}
	}
}

// Watchers reports how many watches are active.
func (s *PushSource) Watchers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.watchers)
}

func (s *PushSource) snapshot() []watcher {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]watcher, 0, len(s.watchers))
	for _, w := range s.watchers {
		out = append(out, w)
	}
	return out
}
