package events

import (
	"slices"
	"sync"
)

// registry tracks change callbacks per list id.
type registry struct {
	mu   sync.Mutex
	next uint64
	subs map[string]map[uint64]func()
}

func newRegistry() *registry {
	return &registry{subs: make(map[string]map[uint64]func())}
}

func (r *registry) add(listID string, fn func()) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	if r.subs[listID] == nil {
		r.subs[listID] = make(map[uint64]func())
	}
	r.subs[listID][r.next] = fn
	return r.next
}

func (r *registry) remove(listID string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.subs[listID], id)
	if len(r.subs[listID]) == 0 {
		delete(r.subs, listID)
	}
}

// matching returns the callbacks an event for listID should reach.
func (r *registry) matching(listID string) []func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []func()
	for sub, fns := range r.subs {
		if !Matches(sub, listID) {
			continue
		}
		for _, fn := range fns {
			out = append(out, fn)
		}
	}
	return out
}

// lists returns the subscribed list ids in sorted order.
func (r *registry) lists() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.subs))
	for id := range r.subs {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

func (r *registry) dispatch(listID string) {
	for _, fn := range r.matching(listID) {
		fn()
	}
}
