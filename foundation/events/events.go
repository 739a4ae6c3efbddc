// Package events allows goroutines, such as the websocket handler, to
// subscribe to the node's event stream.
package events

import (
	"fmt"
	"sync"
)

// Events maintains a mapping of unique id and channels so goroutines can
// subscribe and receive the node's event messages.
type Events struct {
	mu          sync.RWMutex
	subscribers map[string]chan string
}

// New constructs an Events for subscribing and receiving events.
func New() *Events {
	return &Events{
		subscribers: make(map[string]chan string),
	}
}

// Shutdown closes and removes every channel handed out by Acquire.
func (evts *Events) Shutdown() {
	evts.mu.Lock()
	defer evts.mu.Unlock()

	for id, ch := range evts.subscribers {
		delete(evts.subscribers, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to
// receive events. Calling Acquire twice with the same id returns the same
// channel.
func (evts *Events) Acquire(id string) chan string {
	evts.mu.Lock()
	defer evts.mu.Unlock()

	if ch, exists := evts.subscribers[id]; exists {
		return ch
	}

	// A message is dropped when the receiver's buffer is full, so the
	// buffer needs enough room to ride out a slow websocket write.
	const messageBuffer = 100

	ch := make(chan string, messageBuffer)
	evts.subscribers[id] = ch
	return ch
}

// Release closes and removes the channel that was provided by the call to
// Acquire.
func (evts *Events) Release(id string) error {
	evts.mu.Lock()
	defer evts.mu.Unlock()

	ch, exists := evts.subscribers[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evts.subscribers, id)
	close(ch)
	return nil
}

// Send delivers a message to every subscriber without blocking on any of
// them.
func (evts *Events) Send(s string) {
	evts.mu.RLock()
	defer evts.mu.RUnlock()

	for _, ch := range evts.subscribers {
		select {
		case ch <- s:
		default:
		}
	}
}
