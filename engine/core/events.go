package core

import (
	"sync"
)

type EventCode uint16

const (
	EVENT_CODE_APPLICATION_QUIT EventCode = 0x01
	EVENT_CODE_RESIZED          EventCode = 0x02
	// Fired once per frame by the engine after the frame has been drawn.
	EVENT_CODE_FRAME_ENDED EventCode = 0x03
	// Fired by the asset manager when a watched asset has been reloaded.
	EVENT_CODE_ASSET_RELOADED EventCode = 0x04

	// Codes below this value are reserved for the engine. Application
	// and component codes start here.
	EVENT_CODE_USER EventCode = 0x100
)

type EventContext struct {
	Type EventCode
	Data interface{}
}

type EventCallback func(context EventContext)

// EventSubscription is the handle returned by Register and RegisterOnce.
// It is the only way to unregister a callback.
type EventSubscription struct {
	ID   uint32
	Code EventCode

	callback  EventCallback
	once      bool
	cancelled bool
}

// EventSystem is an instance-owned event bus. Every engine carries its
// own; there is no process-global subscription table. Delivery is
// synchronous and in registration order.
type EventSystem struct {
	mu     sync.Mutex
	nextID uint32
	subs   map[EventCode][]*EventSubscription
}

func NewEventSystem() *EventSystem {
	return &EventSystem{
		subs: make(map[EventCode][]*EventSubscription),
	}
}

func (es *EventSystem) Register(code EventCode, callback EventCallback) *EventSubscription {
	return es.register(code, callback, false)
}

// RegisterOnce registers a callback that is delivered exactly one event
// and then deregistered, even if the callback fires the same code again
// while it runs.
func (es *EventSystem) RegisterOnce(code EventCode, callback EventCallback) *EventSubscription {
	return es.register(code, callback, true)
}

func (es *EventSystem) register(code EventCode, callback EventCallback, once bool) *EventSubscription {
	if callback == nil {
		return nil
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	es.nextID++
	sub := &EventSubscription{
		ID:       es.nextID,
		Code:     code,
		callback: callback,
		once:     once,
	}
	es.subs[code] = append(es.subs[code], sub)
	return sub
}

// Unregister removes a subscription. Safe to call more than once and
// safe to call from inside a callback.
func (es *EventSystem) Unregister(sub *EventSubscription) {
	if sub == nil {
		return
	}

	es.mu.Lock()
	defer es.mu.Unlock()

	if sub.cancelled {
		return
	}
	sub.cancelled = true
	es.remove(sub)
}

// remove must be called with es.mu held.
func (es *EventSystem) remove(sub *EventSubscription) {
	list := es.subs[sub.Code]
	for i, s := range list {
		if s.ID == sub.ID {
			es.subs[sub.Code] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Fire delivers the context to every live subscription for its code.
// One-shot subscriptions are claimed before their callback runs, so a
// recursive Fire from inside the callback cannot reach them twice.
// Returns true if at least one callback was invoked.
func (es *EventSystem) Fire(context EventContext) bool {
	es.mu.Lock()
	list := es.subs[context.Type]
	if len(list) == 0 {
		es.mu.Unlock()
		return false
	}
	pending := make([]*EventSubscription, len(list))
	copy(pending, list)
	for _, s := range pending {
		if s.once && !s.cancelled {
			s.cancelled = true
			es.remove(s)
		}
	}
	es.mu.Unlock()

	handled := false
	for _, s := range pending {
		es.mu.Lock()
		skip := !s.once && s.cancelled
		es.mu.Unlock()
		if skip {
			continue
		}
		s.callback(context)
		handled = true
	}
	return handled
}

// Shutdown drops every subscription.
func (es *EventSystem) Shutdown() {
	es.mu.Lock()
	defer es.mu.Unlock()

	for code, list := range es.subs {
		for _, s := range list {
			s.cancelled = true
		}
		delete(es.subs, code)
	}
}
