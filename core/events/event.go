package events

import (
	"sync"

	"basepulse/core/types"
)

// Event represents a structured state change emitted by the ledger.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. RPC, indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while
// discarding all events. It is useful when a component wants to optionally
// expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

type envelope struct {
	evt *types.Event
}

func (e envelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e envelope) Event() *types.Event { return e.evt }

// Wrap converts a raw event payload into the emitter-friendly envelope.
func Wrap(evt *types.Event) Event { return envelope{evt: evt} }

// Payload extracts the raw payload from an emitted event when available.
func Payload(evt Event) *types.Event {
	carrier, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return nil
	}
	return carrier.Event()
}

// Buffer stages events during a transaction so they only become visible when
// the surrounding state change commits.
type Buffer struct {
	pending []Event
}

// Emit implements the Emitter interface.
func (b *Buffer) Emit(evt Event) {
	if b == nil || evt == nil {
		return
	}
	b.pending = append(b.pending, evt)
}

// Flush forwards all buffered events to sink and resets the buffer.
func (b *Buffer) Flush(sink Emitter) {
	if b == nil {
		return
	}
	if sink != nil {
		for _, evt := range b.pending {
			sink.Emit(evt)
		}
	}
	b.pending = nil
}

// Discard drops all buffered events without forwarding them.
func (b *Buffer) Discard() {
	if b == nil {
		return
	}
	b.pending = nil
}

// Recorder keeps an append-only log of committed events. Indexers drain it
// through Tail; the ledger never pushes.
type Recorder struct {
	mu  sync.RWMutex
	log []*types.Event
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Emit implements the Emitter interface.
func (r *Recorder) Emit(evt Event) {
	if r == nil || evt == nil {
		return
	}
	payload := Payload(evt)
	if payload == nil {
		payload = &types.Event{Type: evt.EventType()}
	}
	r.mu.Lock()
	r.log = append(r.log, payload)
	r.mu.Unlock()
}

// Len reports the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.log)
}

// Tail returns up to count most recent events, oldest first.
func (r *Recorder) Tail(count int) []*types.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if count <= 0 || len(r.log) == 0 {
		return nil
	}
	if count > len(r.log) {
		count = len(r.log)
	}
	out := make([]*types.Event, count)
	copy(out, r.log[len(r.log)-count:])
	return out
}
