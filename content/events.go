// Package content defines the lifecycle events of content items and a
// dispatcher that delivers them to listeners.
package content

import (
	"context"
	"fmt"
	"sync"
)

// Event names a point in the lifecycle of a content item.
type Event string

const (
	OnCreate Event = "onCreate"
	OnSave   Event = "onSave"
	OnLoad   Event = "onLoad"
	OnRender Event = "onRender"
	OnRemove Event = "onRemove"
)

// Events lists every lifecycle event in the order an item meets them.
var Events = []Event{OnCreate, OnSave, OnLoad, OnRender, OnRemove}

func (e Event) String() string {
	return string(e)
}

// Listener handles an event. subject is the content item concerned.
type Listener func(ctx context.Context, event Event, subject any) error

// Dispatcher delivers events to the listeners registered for them.
// The zero value is ready to use.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[Event][]Listener
}

// NewDispatcher returns a dispatcher with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// On registers l for every event in events.
func (d *Dispatcher) On(l Listener, events ...Event) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.listeners == nil {
		d.listeners = make(map[Event][]Listener)
	}
	for _, e := range events {
		d.listeners[e] = append(d.listeners[e], l)
	}
}

// Fire calls the listeners of event in registration order and stops at the
// first error.
func (d *Dispatcher) Fire(ctx context.Context, event Event, subject any) error {
	if d == nil {
		return nil
	}
	d.mu.RLock()
	listeners := append([]Listener(nil), d.listeners[event]...)
	d.mu.RUnlock()

	for _, l := range listeners {
		if err := l(ctx, event, subject); err != nil {
			return fmt.Errorf("%s listener: %w", event, err)
		}
	}
	return nil
}
