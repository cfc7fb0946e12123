package player

import (
	"context"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/sirupsen/logrus"
	"math"
	"sync"
)

// Player is the only path changing playback: every command goes through it so the
// Store stays in line with the element.
//
// Each command bumps a generation counter. A play request resolving after a newer
// command was issued is discarded, the last issued command wins.
type Player struct {
	lock       sync.Mutex
	generation uint64
	// generation of the play request waiting on the element, 0 when none
	pending uint64

	owner   *ElementOwner
	store   *Store
	visuals *VisualRegistry
	primes  *PrimeRegistry

	running bool
	askDone chan bool
	done    chan bool
}

func NewPlayer(owner *ElementOwner, volume float64) *Player {
	return &Player{
		owner:   owner,
		store:   NewStore(volume),
		visuals: NewVisualRegistry(),
		primes:  NewPrimeRegistry(),
		askDone: make(chan bool),
		done:    make(chan bool),
	}
}

// Start initializes the playback element and begins mirroring its events.
func (p *Player) Start() {
	logrus.Infof("Start player")

	element := p.owner.Initialize()
	if element == nil {
		logrus.Warnf("Player started without playback element")
	} else {
		p.store.setVolume(element.Volume())
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	if p.running {
		return
	}
	p.running = true
	go p.eventLoop(element)
}

// Stop ends event mirroring, pauses and releases the playback element.
func (p *Player) Stop() {
	logrus.Infof("Stop player")

	p.lock.Lock()
	running := p.running
	p.running = false
	p.generation++
	p.lock.Unlock()

	if running {
		p.askDone <- true
		<-p.done
	}

	if element := p.owner.Element(); element != nil {
		element.Pause()
	}
	p.store.setPlaying(false)
	if err := p.owner.Release(); err != nil {
		logrus.Warnf("Unable to release playback element: %v", err)
	}
}

func (p *Player) eventLoop(element Element) {
	var events chan ElementEvent
	if element != nil {
		events = element.EventChannel()
	}

	for loop := true; loop; {
		select {
		case ev := <-events:
			p.handleElementEvent(element, ev)
		case <-p.askDone:
			loop = false
		}
	}
	p.done <- true
}

func (p *Player) handleElementEvent(element Element, ev ElementEvent) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if ev.Source != element.Source() {
		logrus.Debugf("Ignore %s event of replaced source %s", ev.Type, ev.Source)
		return
	}

	switch ev.Type {
	case CAN_PLAY_THROUGH_EVENT, TIME_UPDATE_EVENT:
		p.store.setTime(element.CurrentTime(), element.Duration())
	case PAUSE_EVENT, ENDED_EVENT:
		logrus.Debugf("Receive %s event for %s", ev.Type, ev.Source)
		p.store.setPlaying(!element.Paused())
		p.store.setTime(element.CurrentTime(), element.Duration())
	case ERROR_EVENT:
		logrus.Warnf("Playback error on %s: %v", ev.Source, ev.Err)
		p.store.setPlaying(!element.Paused())
	}
}

// PlayAudio loads info.Source and starts it. Failures are logged and leave the
// player not playing, with the previous CurrentAudio.
func (p *Player) PlayAudio(ctx context.Context, info PlayerInfo) {
	element := p.owner.Element()
	if element == nil {
		logrus.Warnf("Unable to play %s: no playback element", info.Source)
		return
	}

	p.lock.Lock()
	p.generation++
	generation := p.generation
	p.pending = generation
	element.SetSource(info.Source)
	element.Load()
	p.lock.Unlock()

	logrus.Infof("Play %s", describe(info))
	err := element.Play(ctx)

	p.lock.Lock()
	if p.pending == generation {
		p.pending = 0
	}
	if generation != p.generation {
		p.lock.Unlock()
		logrus.Debugf("Discard stale play resolution of %s", info.Source)
		return
	}
	if err != nil {
		p.store.setPlaying(false)
		p.lock.Unlock()
		logrus.Warnf("Unable to play %s: %v", info.Source, err)
		return
	}
	p.store.setPlaying(true)
	p.store.setCurrentAudio(info)
	p.store.setTime(element.CurrentTime(), element.Duration())
	p.lock.Unlock()

	p.visuals.NotifyAll(info.Source, info)

	if info.Frequency > 0 {
		if rounded := int64(math.Round(info.Frequency)); frequency.IsPrime(rounded) {
			p.primes.NotifyAll(rounded)
		}
	}
}

// TogglePlayPause pauses or resumes the current audio. It does nothing while idle,
// while a play request is loading, or when the element holds a source that never
// became the current audio (failed play).
func (p *Player) TogglePlayPause(ctx context.Context) {
	element := p.owner.Element()
	if element == nil {
		logrus.Debugf("Toggle ignored: no playback element")
		return
	}

	p.lock.Lock()
	if p.pending != 0 && p.pending == p.generation {
		p.lock.Unlock()
		logrus.Infof("Toggle ignored: play request still loading")
		return
	}
	currentAudio := p.store.State().CurrentAudio
	if currentAudio == nil {
		p.lock.Unlock()
		logrus.Infof("Toggle ignored: nothing loaded")
		return
	}
	if currentAudio.Source != element.Source() {
		p.lock.Unlock()
		logrus.Infof("Toggle ignored: %s failed to load", element.Source())
		return
	}
	p.generation++
	generation := p.generation
	if !element.Paused() {
		element.Pause()
		p.store.setPlaying(false)
		p.lock.Unlock()
		logrus.Infof("Pause")
		return
	}
	p.lock.Unlock()

	logrus.Infof("Resume")
	err := element.Play(ctx)

	p.lock.Lock()
	defer p.lock.Unlock()
	if generation != p.generation {
		logrus.Debugf("Discard stale resume resolution")
		return
	}
	if err != nil {
		p.store.setPlaying(false)
		logrus.Warnf("Unable to resume playback: %v", err)
		return
	}
	p.store.setPlaying(true)
}

// SeekTo moves the playback position. Out of range values are left to the element.
func (p *Player) SeekTo(seconds float64) {
	element := p.owner.Element()
	if element == nil {
		return
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	element.SetCurrentTime(seconds)
	p.store.setTime(element.CurrentTime(), element.Duration())
}

func (p *Player) SetVolume(volume float64) {
	element := p.owner.Element()
	if element == nil {
		return
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	element.SetVolume(volume)
	p.store.setVolume(element.Volume())
}

func (p *Player) GetVolume() float64 {
	if element := p.owner.Element(); element != nil {
		return element.Volume()
	}
	return p.store.State().Volume
}

// ResetPlayer stops playback and goes back to the idle state.
func (p *Player) ResetPlayer() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.generation++
	if element := p.owner.Element(); element != nil {
		element.Pause()
		element.SetSource("")
		element.Load()
	}
	p.store.reset()
	logrus.Infof("Player reset")
}

func (p *Player) NotifyPrime(prime int64) {
	logrus.Debugf("Prime %d detected", prime)
	p.primes.NotifyAll(prime)
}

func (p *Player) State() State {
	return p.store.State()
}

func (p *Player) RegisterVisual(registration VisualRegistration) Disposer {
	return p.visuals.Register(registration)
}

func (p *Player) RegisterPrime(callback PrimeCallback) Disposer {
	return p.primes.Register(callback)
}

func describe(info PlayerInfo) string {
	if info.Title != "" {
		return "\"" + info.Title + "\""
	}
	return info.Source
}
