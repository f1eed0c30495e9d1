package scoring

import (
	"sort"
	"sync"
)

// Registry maps policy names to instances. An unknown name resolves to the
// fallback policy rather than erroring; the second return value tells callers
// whether the lookup hit, so they can surface the fallback for observability.
// Registration is expected at startup; the lock only matters if a deployment
// registers policies at runtime.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]Policy
	fallback Policy
}

func NewRegistry(fallback Policy) *Registry {
	r := &Registry{
		policies: make(map[string]Policy),
		fallback: fallback,
	}
	r.Register(fallback)
	return r
}

// NewDefaultRegistry wires every built-in policy with its production defaults.
// The composite entry layers the confidence and time bonuses.
func NewDefaultRegistry() *Registry {
	r := NewRegistry(Standard{})
	r.Register(NewNegativePenalty())
	r.Register(PartialCredit{})
	r.Register(NewConfidenceBased())
	r.Register(NewThreshold())
	r.Register(NewTimeBased())
	r.Register(AdaptiveDifficulty{})
	r.Register(NewComboStreak())
	r.Register(NewComposite(NewConfidenceBased(), NewTimeBased()))
	return r
}

func (r *Registry) Register(p Policy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[p.Name()] = p
}

// Resolve returns the named policy, or the fallback with ok=false when the
// name is unknown.
func (r *Registry) Resolve(name string) (Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if p, ok := r.policies[name]; ok {
		return p, true
	}
	return r.fallback, false
}

// Names lists the registered policy names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
