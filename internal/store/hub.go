package store

import "sync"

// subscriber is one registered Watch callback pair.
type subscriber struct {
	onSnapshot func([]Document)
	onError    func(error)
}

// hub is a typed subscriber registry keyed by collection name. It replaces
// ambient change events with an explicit fan-out: drivers call broadcast
// after every committed write and on resync ticks.
type hub struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]*subscriber
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[int]*subscriber)}
}

// add registers a subscriber and returns its removal function.
func (h *hub) add(collection string, sub *subscriber) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	id := h.next
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[int]*subscriber)
	}
	h.subs[collection][id] = sub
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[collection], id)
	}
}

// hasSubscribers reports whether any watcher is registered on collection.
func (h *hub) hasSubscribers(collection string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection]) > 0
}

// broadcast delivers a snapshot to every subscriber of collection. The
// subscriber set is copied first so callbacks run without the hub lock held.
func (h *hub) broadcast(collection string, docs []Document) {
	for _, sub := range h.snapshotSubs(collection) {
		sub.onSnapshot(docs)
	}
}

// broadcastError delivers a snapshot failure to every subscriber.
func (h *hub) broadcastError(collection string, err error) {
	for _, sub := range h.snapshotSubs(collection) {
		sub.onError(err)
	}
}

func (h *hub) snapshotSubs(collection string) []*subscriber {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*subscriber, 0, len(h.subs[collection]))
	for _, sub := range h.subs[collection] {
		out = append(out, sub)
	}
	return out
}
