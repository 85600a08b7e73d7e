package draft

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps session tokens to private drafts. Drafts are never shared
// between sessions; the mutex only protects the map itself across HTTP
// goroutines.
type Registry struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

func NewRegistry() *Registry {
	return &Registry{drafts: make(map[string]*Draft)}
}

// Put registers a started draft and returns its session token.
func (r *Registry) Put(d *Draft) string {
	token := uuid.NewString()
	r.mu.Lock()
	r.drafts[token] = d
	r.mu.Unlock()
	return token
}

func (r *Registry) Get(token string) (*Draft, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drafts[token]
	return d, ok
}

func (r *Registry) Delete(token string) {
	r.mu.Lock()
	delete(r.drafts, token)
	r.mu.Unlock()
}
