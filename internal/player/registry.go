package player

import (
	"github.com/sirupsen/logrus"
	"runtime/debug"
	"sync"
)

// Disposer removes the registration it was returned for. Calling it twice is harmless.
type Disposer func()

type registryEntry[T any] struct {
	id       int64
	callback T
}

// registry keeps callbacks in registration order. The same callback registered twice
// is notified twice.
type registry[T any] struct {
	lock    sync.RWMutex
	name    string
	nextId  int64
	entries []registryEntry[T]
}

func (r *registry[T]) register(callback T) Disposer {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.nextId++
	id := r.nextId
	r.entries = append(r.entries, registryEntry[T]{id: id, callback: callback})

	var once sync.Once
	return func() {
		once.Do(func() { r.unregister(id) })
	}
}

func (r *registry[T]) unregister(id int64) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for i, entry := range r.entries {
		if entry.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

func (r *registry[T]) Len() int {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return len(r.entries)
}

// each calls invoke for every registered callback on a snapshot, so callbacks may
// register or unregister while being notified. A panicking callback is logged and
// skipped.
func (r *registry[T]) each(invoke func(T)) {
	r.lock.RLock()
	entries := make([]registryEntry[T], len(r.entries))
	copy(entries, r.entries)
	r.lock.RUnlock()

	for _, entry := range entries {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					logrus.Warningf("%s subscriber %d failed: %v\n%s", r.name, entry.id, rec, debug.Stack())
				}
			}()
			invoke(entry.callback)
		}()
	}
}

// VisualRegistration is notified every time a new source starts playing.
type VisualRegistration interface {
	SetAudioSource(url string, info PlayerInfo)
}

type VisualRegistrationFunc func(url string, info PlayerInfo)

func (f VisualRegistrationFunc) SetAudioSource(url string, info PlayerInfo) {
	f(url, info)
}

type VisualRegistry struct {
	registry[VisualRegistration]
}

func NewVisualRegistry() *VisualRegistry {
	r := &VisualRegistry{}
	r.name = "Visual"
	return r
}

func (r *VisualRegistry) Register(registration VisualRegistration) Disposer {
	return r.register(registration)
}

func (r *VisualRegistry) NotifyAll(url string, info PlayerInfo) {
	r.each(func(registration VisualRegistration) {
		registration.SetAudioSource(url, info)
	})
}

type PrimeCallback func(prime int64)

type PrimeRegistry struct {
	registry[PrimeCallback]
}

func NewPrimeRegistry() *PrimeRegistry {
	r := &PrimeRegistry{}
	r.name = "Prime"
	return r
}

func (r *PrimeRegistry) Register(callback PrimeCallback) Disposer {
	return r.register(callback)
}

func (r *PrimeRegistry) NotifyAll(prime int64) {
	r.each(func(callback PrimeCallback) {
		callback(prime)
	})
}
