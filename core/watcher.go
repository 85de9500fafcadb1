// Package core implements commonly used tools.
package core

import "sync"

// Observer is the interface to implement to watch events of type T.
type Observer[T any] interface {
	NotifyCallback(event T)
}

// Watcher dispatches events to a list of observers, in the order they were
// added. An observer is registered at most once.
type Watcher[T any] struct {
	sync.RWMutex

	observers []Observer[T]
}

// NewWatcher creates a new empty watcher.
func NewWatcher[T any]() *Watcher[T] {
	return &Watcher[T]{}
}

// Add registers the observer unless it is already.
func (w *Watcher[T]) Add(observer Observer[T]) {
	w.Lock()
	defer w.Unlock()

	for _, obs := range w.observers {
		if obs == observer {
			return
		}
	}

	w.observers = append(w.observers, observer)
}

// Remove stops the observer from receiving new events.
func (w *Watcher[T]) Remove(observer Observer[T]) {
	w.Lock()
	defer w.Unlock()

	for i, obs := range w.observers {
		if obs == observer {
			w.observers = append(w.observers[:i], w.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of observers.
func (w *Watcher[T]) Len() int {
	w.RLock()
	defer w.RUnlock()

	return len(w.observers)
}

// Notify forwards the event to every observer. An observer must not block as
// the lock is held during the notification.
func (w *Watcher[T]) Notify(event T) {
	w.RLock()
	defer w.RUnlock()

	for _, obs := range w.observers {
		obs.NotifyCallback(event)
	}
}
