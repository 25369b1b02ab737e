package client

import (
	"tavern/internal/models"
	"tavern/internal/observer"
)

// Bus carries the five event channels from the event layer to the view.
type Bus = observer.Observable[models.Key, models.Event]

func NewBus() *Bus {
	return observer.New[models.Key, models.Event](nil)
}

// Subscribe registers fn for the channel that carries E. E must be one of
// the concrete event types.
func Subscribe[E models.Event](bus *Bus, fn func(E)) observer.Handle {
	var zero E
	return bus.AddObserver(zero.Key(), observer.Func[models.Event](func(_ any, ev models.Event) {
		if e, ok := ev.(E); ok {
			fn(e)
		}
	}))
}

// SubscribeAll registers fn on every channel and returns one handle per
// key, in models.AllKeys order.
func SubscribeAll(bus *Bus, fn func(models.Event)) []observer.Handle {
	handles := make([]observer.Handle, 0, len(models.AllKeys))
	for _, k := range models.AllKeys {
		handles = append(handles, bus.AddObserver(k, observer.Func[models.Event](func(_ any, ev models.Event) {
			fn(ev)
		})))
	}
	return handles
}

func Unsubscribe(bus *Bus, handles ...observer.Handle) {
	for _, h := range handles {
		bus.Unsubscribe(h)
	}
}

func publish(bus *Bus, ev models.Event) {
	bus.NotifyObservers(ev.Key(), ev)
}
