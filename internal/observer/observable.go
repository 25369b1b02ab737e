// Package observer is a keyed publish/subscribe primitive. Observers of a
// key are notified synchronously, most recently added first.
package observer

import "sync"

// Observer receives payloads published on the keys it is registered for.
type Observer[V any] interface {
	Update(source any, payload V)
}

// Func adapts a plain function to Observer.
type Func[V any] func(source any, payload V)

func (f Func[V]) Update(source any, payload V) { f(source, payload) }

// Handle identifies one registration. Adding the same observer twice
// yields two handles and two notifications.
type Handle uint64

type entry[V any] struct {
	handle   Handle
	observer Observer[V]
}

type Observable[K comparable, V any] struct {
	mu        sync.RWMutex
	next      Handle
	observers map[K][]entry[V]
	source    any
}

// New returns an empty observable. source is passed to every Update call;
// nil means the observable itself.
func New[K comparable, V any](source any) *Observable[K, V] {
	o := &Observable[K, V]{observers: make(map[K][]entry[V])}
	o.source = source
	if source == nil {
		o.source = o
	}
	return o
}

func (o *Observable[K, V]) AddObserver(key K, obs Observer[V]) Handle {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.next++
	o.observers[key] = append(o.observers[key], entry[V]{handle: o.next, observer: obs})
	return o.next
}

// DeleteObserver removes one registration. Unknown handles are ignored.
func (o *Observable[K, V]) DeleteObserver(key K, h Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	list := o.observers[key]
	for i, e := range list {
		if e.handle == h {
			o.observers[key] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// Unsubscribe removes h under whichever key it was registered.
func (o *Observable[K, V]) Unsubscribe(h Handle) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for key, list := range o.observers {
		for i, e := range list {
			if e.handle == h {
				o.observers[key] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// ClearObservers drops the observers of the given keys, or of every key
// when called without arguments.
func (o *Observable[K, V]) ClearObservers(keys ...K) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(keys) == 0 {
		o.observers = make(map[K][]entry[V])
		return
	}
	for _, k := range keys {
		delete(o.observers, k)
	}
}

// NotifyObservers calls Update on every observer of key, last added
// first. A key nobody observes is a no-op. Observers may add or delete
// registrations while being notified; the change applies to the next
// notification.
func (o *Observable[K, V]) NotifyObservers(key K, payload V) {
	o.mu.RLock()
	snapshot := make([]entry[V], len(o.observers[key]))
	copy(snapshot, o.observers[key])
	o.mu.RUnlock()

	for i := len(snapshot) - 1; i >= 0; i-- {
		snapshot[i].observer.Update(o.source, payload)
	}
}

func (o *Observable[K, V]) Count(key K) int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.observers[key])
}
