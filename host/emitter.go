package host

import (
	"sync"
)

// Listener receives the payload of an emitted event.
type Listener func(payload any)

// Emitter is an event emitter. The zero value is ready to use.
type Emitter struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[string][]subscription
}

type subscription struct {
	id uint64
	fn Listener
}

// On subscribes fn to event and returns a function that removes the subscription.
func (e *Emitter) On(event string, fn Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[string][]subscription)
	}
	e.nextID++
	id := e.nextID
	e.listeners[event] = append(e.listeners[event], subscription{id: id, fn: fn})

	return func() { e.off(event, id) }
}

func (e *Emitter) off(event string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	subs := e.listeners[event]
	for i, s := range subs {
		if s.id == id {
			e.listeners[event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.listeners[event]) == 0 {
		delete(e.listeners, event)
	}
}

// Emit calls every listener of event in subscription order and returns how many were called.
// Listeners run outside the emitter lock and may subscribe or unsubscribe.
func (e *Emitter) Emit(event string, payload any) int {
	e.mu.Lock()
	subs := make([]subscription, len(e.listeners[event]))
	copy(subs, e.listeners[event])
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(payload)
	}

	return len(subs)
}

// ListenerCount returns the number of listeners subscribed to event.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.listeners[event])
}

// RemoveAllListeners drops every subscription.
func (e *Emitter) RemoveAllListeners() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.listeners = nil
}

// Flags holds the boolean properties a wallet sets on a provider, such as isMetaMask.
type Flags struct {
	mu    sync.RWMutex
	flags map[string]bool
}

// SetFlag sets the named flag.
func (f *Flags) SetFlag(name string, value bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.flags == nil {
		f.flags = make(map[string]bool)
	}
	f.flags[name] = value
}

// Flag returns the named flag, false when unset.
func (f *Flags) Flag(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return f.flags[name]
}

// ClearFlags unsets every flag.
func (f *Flags) ClearFlags() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.flags = nil
}
