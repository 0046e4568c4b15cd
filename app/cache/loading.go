package cache

import "sync"

// LoadingRegistry tracks outstanding asynchronous operations with explicit
// acquire/release tickets. Overlay visibility ("is anything loading") always
// matches the true count of outstanding operations; a single shared boolean
// cannot do that once operations overlap.
type LoadingRegistry struct {
	mu      sync.Mutex
	count   int
	pending map[string]int
}

func NewLoadingRegistry() *LoadingRegistry {
	return &LoadingRegistry{pending: make(map[string]int)}
}

// Ticket is one outstanding operation. Release is idempotent.
type Ticket struct {
	registry *LoadingRegistry
	label    string
	once     sync.Once
}

// Acquire registers an outstanding operation under a label (usually the
// region key being refetched).
func (r *LoadingRegistry) Acquire(label string) *Ticket {
	r.mu.Lock()
	r.count++
	r.pending[label]++
	r.mu.Unlock()
	return &Ticket{registry: r, label: label}
}

func (t *Ticket) Release() {
	t.once.Do(func() {
		r := t.registry
		r.mu.Lock()
		r.count--
		r.pending[t.label]--
		if r.pending[t.label] <= 0 {
			delete(r.pending, t.label)
		}
		r.mu.Unlock()
	})
}

// Loading reports whether any operation is outstanding.
func (r *LoadingRegistry) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count > 0
}

// Count returns the number of outstanding operations.
func (r *LoadingRegistry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Pending returns the labels of outstanding operations.
func (r *LoadingRegistry) Pending() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	labels := make([]string, 0, len(r.pending))
	for label := range r.pending {
		labels = append(labels, label)
	}
	return labels
}
