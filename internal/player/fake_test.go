package player

import (
	"context"
	"errors"
	"sync"
)

var errAutoplayBlocked = errors.New("autoplay blocked")

// fakeElement is an in-memory Element. Play fails when playErr is set and blocks on
// gate when one is installed.
type fakeElement struct {
	lock sync.Mutex

	src         string
	paused      bool
	currentTime float64
	duration    float64
	volume      float64
	loads       int
	closed      bool

	playErr error
	gate    chan error

	events chan ElementEvent
}

func newFakeElement() *fakeElement {
	return &fakeElement{paused: true, volume: 1, duration: 300, events: make(chan ElementEvent, 16)}
}

func (e *fakeElement) SetSource(url string) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.src = url
}

func (e *fakeElement) Source() string {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.src
}

func (e *fakeElement) Load() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.loads++
	e.paused = true
	e.currentTime = 0
}

func (e *fakeElement) Play(ctx context.Context) error {
	e.lock.Lock()
	gate := e.gate
	e.gate = nil
	playErr := e.playErr
	e.lock.Unlock()

	if gate != nil {
		select {
		case err := <-gate:
			playErr = err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if playErr != nil {
		return playErr
	}

	e.lock.Lock()
	defer e.lock.Unlock()
	e.paused = false
	return nil
}

func (e *fakeElement) Pause() {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.paused = true
}

func (e *fakeElement) Paused() bool {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.paused
}

func (e *fakeElement) CurrentTime() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.currentTime
}

// SetCurrentTime clamps like a media element does.
func (e *fakeElement) SetCurrentTime(seconds float64) {
	e.lock.Lock()
	defer e.lock.Unlock()
	switch {
	case seconds < 0:
		e.currentTime = 0
	case seconds > e.duration:
		e.currentTime = e.duration
	default:
		e.currentTime = seconds
	}
}

func (e *fakeElement) Duration() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.duration
}

func (e *fakeElement) Volume() float64 {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.volume
}

func (e *fakeElement) SetVolume(volume float64) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.volume = volume
}

func (e *fakeElement) EventChannel() chan ElementEvent {
	return e.events
}

func (e *fakeElement) Close() error {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.closed = true
	return nil
}

// end simulates the natural end of the current source.
func (e *fakeElement) end() {
	e.lock.Lock()
	e.paused = true
	e.currentTime = e.duration
	src := e.src
	e.lock.Unlock()
	e.events <- ElementEvent{Type: ENDED_EVENT, Source: src}
}
