package srv

import (
	"image/png"
	"os"
	"testing"

	"github.com/jypelle/solfeggio/internal/player"
)

func TestToneJourney(t *testing.T) {
	tests := []struct {
		freq     float64
		duration float64
		want     player.PlayerInfo
	}{
		{528, 0, player.PlayerInfo{Id: "tone-528", Title: "528 Hz Transformation", Artist: "Solfeggio", Source: "tone://528", Chakra: "Solar Plexus", Frequency: 528}},
		{432.5, 60, player.PlayerInfo{Id: "tone-432.5", Title: "432.5 Hz", Artist: "Solfeggio", Source: "tone://432.5?duration=60", Chakra: "Solar Plexus", Frequency: 432.5}},
	}
	for _, tt := range tests {
		if got := toneJourney(tt.freq, tt.duration); got != tt.want {
			t.Errorf("toneJourney(%v, %v) = %+v, want %+v", tt.freq, tt.duration, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0:00"},
		{-3, "0:00"},
		{61.7, "1:01"},
		{3725, "1:02:05"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.seconds); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestRefreshDisplayWritesSnapshot(t *testing.T) {
	app, err := NewServerApp(t.TempDir(), false, true)
	if err != nil {
		t.Fatalf("NewServerApp: %v", err)
	}
	t.Cleanup(func() {
		if app.history != nil {
			app.history.Close()
		}
	})

	app.displayDevice.Start()
	app.currentMode = PLAYER_MODE
	app.refreshDisplay(true)

	f, err := os.Open(app.GetCompleteSnapshotFilename())
	if err != nil {
		t.Fatalf("Open snapshot: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("Decode snapshot: %v", err)
	}
	if bounds := img.Bounds(); bounds.Dx() != SCREEN_WIDTH || bounds.Dy() != SCREEN_HEIGHT {
		t.Errorf("snapshot size = %v, want %dx%d", bounds.Size(), SCREEN_WIDTH, SCREEN_HEIGHT)
	}
}

func TestCatalogFromDefaultParam(t *testing.T) {
	app, err := NewServerApp(t.TempDir(), false, true)
	if err != nil {
		t.Fatalf("NewServerApp: %v", err)
	}
	t.Cleanup(func() {
		if app.history != nil {
			app.history.Close()
		}
	})

	journey, err := app.catalog.Journey("transformation")
	if err != nil {
		t.Fatalf("Journey(transformation): %v", err)
	}
	if journey.Source != "tone://528" || journey.Chakra != "Solar Plexus" {
		t.Errorf("transformation = %+v", journey)
	}

	resumed, ok := app.resumeJourney()
	if !ok || resumed.Id != "liberation" {
		t.Errorf("resumeJourney = %+v, %v, want liberation", resumed, ok)
	}
}
