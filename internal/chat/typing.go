package chat

import (
	"sync"

	"github.com/avolkov/parley/internal/domain"
)

// TypingSet is the process-wide "currently typing" set.
type TypingSet struct {
	mu  sync.Mutex
	set map[domain.ConnID]struct{}
}

func NewTypingSet() *TypingSet {
	return &TypingSet{set: make(map[domain.ConnID]struct{})}
}

func (t *TypingSet) Add(sid domain.ConnID) {
	t.mu.Lock()
	t.set[sid] = struct{}{}
	t.mu.Unlock()
}

func (t *TypingSet) Remove(sid domain.ConnID) {
	t.mu.Lock()
	delete(t.set, sid)
	t.mu.Unlock()
}

func (t *TypingSet) Has(sid domain.ConnID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.set[sid]
	return ok
}
