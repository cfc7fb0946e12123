package player

import (
	"sync"
)

// PlayerInfo describes one playable item. It is never modified once handed to the
// player.
type PlayerInfo struct {
	Id        string  `json:"id,omitempty" yaml:"id"`
	Title     string  `json:"title,omitempty" yaml:"title"`
	Artist    string  `json:"artist,omitempty" yaml:"artist"`
	Source    string  `json:"source,omitempty" yaml:"source"`
	Chakra    string  `json:"chakra,omitempty" yaml:"chakra"`
	Frequency float64 `json:"frequency,omitempty" yaml:"frequency"`
}

type Status int

const (
	IDLE_STATUS Status = iota
	LOADED_PAUSED_STATUS
	LOADED_PLAYING_STATUS
)

func (s Status) String() string {
	switch s {
	case IDLE_STATUS:
		return "idle"
	case LOADED_PAUSED_STATUS:
		return "paused"
	case LOADED_PLAYING_STATUS:
		return "playing"
	default:
		return "unknown"
	}
}

type State struct {
	CurrentAudio *PlayerInfo `json:"current_audio"`
	IsPlaying    bool        `json:"is_playing"`
	CurrentTime  float64     `json:"current_time"`
	Duration     float64     `json:"duration"`
	Volume       float64     `json:"volume"`
}

func (s State) Status() Status {
	if s.CurrentAudio == nil {
		return IDLE_STATUS
	}
	if s.IsPlaying {
		return LOADED_PLAYING_STATUS
	}
	return LOADED_PAUSED_STATUS
}

// Store is the playback state read by everyone and written by the Player only.
type Store struct {
	lock  sync.RWMutex
	state State
}

func NewStore(volume float64) *Store {
	return &Store{state: State{Volume: volume}}
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()

	state := s.state
	if state.CurrentAudio != nil {
		info := *state.CurrentAudio
		state.CurrentAudio = &info
	}
	return state
}

func (s *Store) setPlaying(playing bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state.IsPlaying = playing
}

func (s *Store) setCurrentAudio(info PlayerInfo) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state.CurrentAudio = &info
}

func (s *Store) setTime(currentTime, duration float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state.CurrentTime = currentTime
	s.state.Duration = duration
}

func (s *Store) setVolume(volume float64) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state.Volume = volume
}

func (s *Store) reset() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.state.CurrentAudio = nil
	s.state.IsPlaying = false
	s.state.CurrentTime = 0
	s.state.Duration = 0
}
