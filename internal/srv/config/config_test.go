package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewServerConfigCreatesDefaults(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "solfeggio")

	sc, err := NewServerConfig(configDir, false, true)
	if err != nil {
		t.Fatalf("NewServerConfig: %v", err)
	}

	if _, err := os.Stat(sc.GetCompleteParamFilename()); err != nil {
		t.Errorf("default param file not written: %v", err)
	}
	if sc.PlayerParam.Backend != SPEAKER_BACKEND {
		t.Errorf("Backend = %q, want %q", sc.PlayerParam.Backend, SPEAKER_BACKEND)
	}
	if sc.PlayerParam.SampleRate != 44100 {
		t.Errorf("SampleRate = %d, want 44100", sc.PlayerParam.SampleRate)
	}
	if sc.ApiParam.SslPort != 8443 {
		t.Errorf("SslPort = %d, want 8443", sc.ApiParam.SslPort)
	}
	if len(sc.Journeys) != 3 {
		t.Fatalf("Journeys = %d, want 3", len(sc.Journeys))
	}
	if sc.Journeys[1].Source != "tone://528" || sc.Journeys[1].Frequency != 528 {
		t.Errorf("Journeys[1] = %+v, want the 528 Hz tone", sc.Journeys[1])
	}
	if sc.MifasolParam != nil {
		t.Errorf("MifasolParam = %+v, want nil by default", sc.MifasolParam)
	}
	if sc.Volume() != 0.6 {
		t.Errorf("Volume = %v, want 0.6", sc.Volume())
	}
}

func TestNewServerConfigReadsParamFile(t *testing.T) {
	configDir := t.TempDir()
	param := `
api:
  enabled: false
player:
  backend: vlc
journeys:
  - id: crown
    source: https://example.org/963.mp3
    frequency: 963
mifasol:
  hostname: mifasol.local
  port: 6620
`
	if err := os.WriteFile(filepath.Join(configDir, paramFilename), []byte(param), 0660); err != nil {
		t.Fatal(err)
	}

	sc, err := NewServerConfig(configDir, true, false)
	if err != nil {
		t.Fatalf("NewServerConfig: %v", err)
	}

	if sc.ApiParam.Enabled {
		t.Error("ApiParam.Enabled = true, want false")
	}
	if sc.PlayerParam.Backend != VLC_BACKEND {
		t.Errorf("Backend = %q, want vlc", sc.PlayerParam.Backend)
	}
	// unset values get defaults
	if sc.PlayerParam.SampleRate != 44100 || sc.PlayerParam.PlayTimeout != 30 || sc.HistoryParam.Limit != 50 {
		t.Errorf("defaults not applied: %+v %+v", sc.PlayerParam, sc.HistoryParam)
	}
	if sc.MifasolParam == nil || sc.MifasolParam.ConfigDir != configDir {
		t.Errorf("MifasolParam = %+v, want config dir %s", sc.MifasolParam, configDir)
	}
	if len(sc.Journeys) != 1 || sc.Journeys[0].Id != "crown" {
		t.Errorf("Journeys = %+v", sc.Journeys)
	}
}

func TestNewServerConfigInvalidParam(t *testing.T) {
	configDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(configDir, paramFilename), []byte("api: [unclosed"), 0660); err != nil {
		t.Fatal(err)
	}
	if _, err := NewServerConfig(configDir, false, false); err == nil {
		t.Error("NewServerConfig accepted an invalid param file")
	}
}

func TestServerStateFlushSave(t *testing.T) {
	filename := filepath.Join(t.TempDir(), stateFilename)

	ss, err := NewServerState(filename)
	if err != nil {
		t.Fatal(err)
	}
	ss.SetVolume(0.3)
	ss.SetLastJourneyId("oneness")
	ss.FlushSave()

	reloaded, err := NewServerState(filename)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Volume() != 0.3 {
		t.Errorf("Volume = %v, want 0.3", reloaded.Volume())
	}
	if reloaded.LastJourneyId() != "oneness" {
		t.Errorf("LastJourneyId = %q, want oneness", reloaded.LastJourneyId())
	}
}
