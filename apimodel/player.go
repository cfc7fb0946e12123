package apimodel

import (
	"github.com/jypelle/solfeggio/internal/player"
)

type PlayerState struct {
	Status       string             `json:"status"`
	CurrentAudio *player.PlayerInfo `json:"current_audio"`
	IsPlaying    bool               `json:"is_playing"`
	CurrentTime  float64            `json:"current_time"`
	Duration     float64            `json:"duration"`
	Volume       float64            `json:"volume"`
	SleepIn      float64            `json:"sleep_in,omitempty"`
}

func NewPlayerState(state player.State) PlayerState {
	return PlayerState{
		Status:       state.Status().String(),
		CurrentAudio: state.CurrentAudio,
		IsPlaying:    state.IsPlaying,
		CurrentTime:  state.CurrentTime,
		Duration:     state.Duration,
		Volume:       state.Volume,
	}
}

// Server-sent event payloads
type SourceEvent struct {
	Url  string            `json:"url"`
	Info player.PlayerInfo `json:"info"`
}

type PrimeEvent struct {
	Prime int64  `json:"prime"`
	Color string `json:"color"`
}
