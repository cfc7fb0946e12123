package event

import (
	"github.com/jypelle/solfeggio/internal/player"
)

// Internal
type InternalEvent struct {
	Data interface{}
}

type InternalEventPopupHideData struct{}
type InternalEventAnimationTickData struct{}

// Audio source changed, sent by the visual registration of the display
type InternalEventAudioSourceData struct {
	Info player.PlayerInfo
}

// Prime frequency detected, sent by the prime registration of the display
type InternalEventPrimeData struct {
	Prime int64
}

// Ticker
type TickerEvent struct {
	Data interface{}
}

type TickerEventTickData struct{}
type TickerEventSleepData struct{}

// Buttons
type ButtonId int

const (
	PLAY_PAUSE_BUTTON ButtonId = iota
	NEXT_BUTTON
	PREVIOUS_BUTTON
	MORE_BUTTON
	LESS_BUTTON
	RESET_BUTTON
)

type ButtonEventType int

const (
	PRESS_EVENT_TYPE ButtonEventType = iota
	RELEASE_EVENT_TYPE
)

type ButtonEvent struct {
	ButtonId        ButtonId
	ButtonEventType ButtonEventType
	PressStepCount  int64
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventJourneyPlayData struct {
	JourneyId string
}

type ApiEventTonePlayData struct {
	Frequency float64
	Duration  float64
}

type ApiEventTogglePlayPauseData struct{}

type ApiEventSeekData struct {
	Seconds float64
}

type ApiEventVolumeData struct {
	Volume float64
}

type ApiEventResetData struct{}

type ApiEventSleepData struct {
	Minutes int64
}
