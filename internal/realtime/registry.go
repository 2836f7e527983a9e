package realtime

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// Handler consumes one event arriving from the server.
type Handler func(env Envelope)

// Registry maps event names to subscriber callbacks so UI-facing code can
// react to events without touching the connection lifecycle.
type Registry struct {
	log zerolog.Logger

	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{
		log:      log,
		handlers: make(map[string][]Handler),
	}
}

// On registers a callback for an event name. Callbacks run in registration
// order. The caller keeps the handler reference to unregister it later.
func (r *Registry) On(event string, h Handler) {
	if h == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[event] = append(r.handlers[event], h)
}

// Off removes a previously registered handler, matched by function
// identity. Unknown handlers are a silent no-op.
func (r *Registry) Off(event string, h Handler) {
	if h == nil {
		return
	}
	target := reflect.ValueOf(h).Pointer()

	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.handlers[event]
	for i, existing := range list {
		if reflect.ValueOf(existing).Pointer() == target {
			r.handlers[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Dispatch invokes every handler registered for the event. The handler
// list is copied first so On/Off during dispatch cannot corrupt iteration,
// and a panicking handler never stops the remaining ones.
func (r *Registry) Dispatch(env Envelope) {
	r.mu.RLock()
	list := make([]Handler, len(r.handlers[env.Event]))
	copy(list, r.handlers[env.Event])
	r.mu.RUnlock()

	for _, h := range list {
		r.invoke(env, h)
	}
}

func (r *Registry) invoke(env Envelope, h Handler) {
	defer func() {
		if recovered := recover(); recovered != nil {
			r.log.Error().
				Str("event", env.Event).
				Interface("panic", recovered).
				Msg("event handler panicked")
		}
	}()
	h(env)
}
