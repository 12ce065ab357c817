package notify

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
)

const (
	maxClients    = 100
	channelBuffer = 100
)

// Broadcaster fans display commands out to SSE subscribers. Display front
// ends (a tray applet, an overlay renderer) subscribe over HTTP and render
// whatever arrives; the engine never waits on them.
type Broadcaster struct {
	clients   map[string]chan Command
	mu        sync.RWMutex
	clientSeq atomic.Uint64
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[string]chan Command),
	}
}

// Subscribe adds a client and returns its command channel.
// Returns ("", nil) if at capacity.
func (b *Broadcaster) Subscribe() (string, <-chan Command) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.clients) >= maxClients {
		log.Printf("⚠️ Display broadcaster at capacity (%d clients)", maxClients)
		return "", nil
	}

	clientID := fmt.Sprintf("display-%d", b.clientSeq.Add(1))
	ch := make(chan Command, channelBuffer)
	b.clients[clientID] = ch

	log.Printf("📡 Display client connected: %s (total: %d)", clientID, len(b.clients))
	return clientID, ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broadcaster) Unsubscribe(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[clientID]; ok {
		close(ch)
		delete(b.clients, clientID)
		log.Printf("📡 Display client disconnected: %s (total: %d)", clientID, len(b.clients))
	}
}

// Notify implements Notifier: non-blocking send to every subscriber. A slow
// client drops commands rather than stalling the dispatcher.
func (b *Broadcaster) Notify(cmd Command) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for clientID, ch := range b.clients {
		select {
		case ch <- cmd:
		default:
			if cmd.Kind != KindRefresh {
				log.Printf("⚠️ Display channel full for client %s, dropping %s", clientID, cmd.Kind)
			}
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}
