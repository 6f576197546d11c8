package livemap

import (
	"encoding/json"
	"sync"
)

// MarkerBroker fans out projected marker sets to connected stream clients.
// Slow clients are skipped, never blocked on.
type MarkerBroker struct {
	mu      sync.Mutex
	latest  []byte
	clients map[chan []byte]struct{}
}

// NewMarkerBroker constructs a broker.
func NewMarkerBroker() *MarkerBroker {
	return &MarkerBroker{clients: make(map[chan []byte]struct{})}
}

// Publish implements Broadcaster.
func (b *MarkerBroker) Publish(markers []Marker) {
	if b == nil {
		return
	}
	payload, err := json.Marshal(markers)
	if err != nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest = payload
	// Sends stay under the lock: Unsubscribe closes channels under the same
	// lock, so a publish can never hit a closed channel. The sends are
	// non-blocking, so the hold time stays bounded.
	for ch := range b.clients {
		select {
		case ch <- payload:
		default:
		}
	}
}

// Subscribe registers a new client channel. The latest marker set, when one
// exists, is delivered first so a fresh client renders without waiting for
// the next refresh.
func (b *MarkerBroker) Subscribe() chan []byte {
	if b == nil {
		return nil
	}
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.latest != nil {
		ch <- b.latest
	}
	b.clients[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a client channel.
func (b *MarkerBroker) Unsubscribe(ch chan []byte) {
	if b == nil || ch == nil {
		return
	}
	b.mu.Lock()
	delete(b.clients, ch)
	b.mu.Unlock()
	close(ch)
}
