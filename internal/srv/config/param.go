package config

import (
	_ "embed"
	"github.com/jypelle/solfeggio/internal/player"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

const (
	SPEAKER_BACKEND = "speaker"
	VLC_BACKEND     = "vlc"
)

type ServerParam struct {
	ApiParam    ApiParam            `yaml:"api"`
	PlayerParam PlayerParam         `yaml:"player"`
	Journeys    []player.PlayerInfo `yaml:"journeys"`
	// Folder of audio files, relative to the config folder unless absolute
	LibraryFolder string        `yaml:"library_folder"`
	MifasolParam  *MifasolParam `yaml:"mifasol,omitempty"`
	HardwareParam HardwareParam `yaml:"hardware"`
	HistoryParam  HistoryParam  `yaml:"history"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	SslPort int64  `yaml:"ssl_port"`
	ApiKey  string `yaml:"api_key"`
}

type PlayerParam struct {
	Backend    string `yaml:"backend"`
	SampleRate int    `yaml:"sample_rate"`
	// Length of tone:// sources in seconds
	ToneDuration    int64 `yaml:"tone_duration"`
	AnalyzerEnabled bool  `yaml:"analyzer"`
	// Seconds allowed for a source to start playing
	PlayTimeout int64 `yaml:"play_timeout"`
	// ALSA mixer control of the vlc backend
	Mixer string `yaml:"mixer"`
}

type HardwareParam struct {
	Buttons bool       `yaml:"buttons"`
	Display bool       `yaml:"display"`
	Pins    ButtonPins `yaml:"pins"`
}

type ButtonPins struct {
	PlayPause string `yaml:"play_pause"`
	Next      string `yaml:"next"`
	Previous  string `yaml:"previous"`
	More      string `yaml:"more"`
	Less      string `yaml:"less"`
	Reset     string `yaml:"reset"`
}

type HistoryParam struct {
	Enabled bool  `yaml:"enabled"`
	Limit   int64 `yaml:"limit"`
}
