package player

import "context"

type ElementEventType int

const (
	CAN_PLAY_THROUGH_EVENT ElementEventType = iota
	TIME_UPDATE_EVENT
	PAUSE_EVENT
	ENDED_EVENT
	ERROR_EVENT
)

func (t ElementEventType) String() string {
	switch t {
	case CAN_PLAY_THROUGH_EVENT:
		return "canplaythrough"
	case TIME_UPDATE_EVENT:
		return "timeupdate"
	case PAUSE_EVENT:
		return "pause"
	case ENDED_EVENT:
		return "ended"
	case ERROR_EVENT:
		return "error"
	default:
		return "unknown"
	}
}

type ElementEvent struct {
	Type ElementEventType
	// Source the event belongs to, events of a replaced source are ignored
	Source string
	Err    error
}

// Element is the media element capability the player drives. Times are in seconds,
// volume in [0, 1].
//
// Play blocks until playback actually started or was rejected. Implementations emit
// their events on EventChannel without blocking.
type Element interface {
	SetSource(url string)
	Source() string
	Load()
	Play(ctx context.Context) error
	Pause()
	Paused() bool
	CurrentTime() float64
	SetCurrentTime(seconds float64)
	Duration() float64
	Volume() float64
	SetVolume(volume float64)
	EventChannel() chan ElementEvent
	Close() error
}

type ElementFactory func(volume float64) (Element, error)
