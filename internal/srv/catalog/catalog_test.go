package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jypelle/solfeggio/internal/player"
)

type failingLibrary struct{}

func (failingLibrary) Name() string { return "broken" }

func (failingLibrary) Journeys() ([]player.PlayerInfo, error) {
	return nil, errors.New("server unreachable")
}

func TestCatalogMergesLibraries(t *testing.T) {
	local := NewStaticLibrary("local", []player.PlayerInfo{
		{Id: "heart", Source: "file:///music/639.mp3", Frequency: 639},
		{Source: "file:///music/untitled.mp3"},
		{Id: "nosource"},
		{Id: "heart", Source: "file:///music/duplicate.mp3"},
	})
	c := NewCatalog(local, failingLibrary{}, ToneLibrary{})

	journeys := c.Journeys()
	if len(journeys) != 2+9 {
		t.Fatalf("len(Journeys) = %d, want 11", len(journeys))
	}
	if journeys[0].Id != "heart" || journeys[0].Chakra != "Heart" {
		t.Errorf("journeys[0] = %+v, want heart with Heart chakra", journeys[0])
	}
	if journeys[1].Id != "local-2" {
		t.Errorf("journeys[1].Id = %q, want local-2", journeys[1].Id)
	}

	tone, err := c.Journey("tone-528")
	if err != nil {
		t.Fatalf("Journey(tone-528): %v", err)
	}
	if tone.Source != "tone://528" || tone.Chakra != "Solar Plexus" {
		t.Errorf("tone-528 = %+v", tone)
	}

	if _, err := c.Journey("missing"); err == nil {
		t.Error("Journey(missing) returned no error")
	}
}

func TestCatalogNextPrevious(t *testing.T) {
	c := NewCatalog(NewStaticLibrary("local", []player.PlayerInfo{
		{Id: "a", Source: "tone://174"},
		{Id: "b", Source: "tone://285"},
		{Id: "c", Source: "tone://396"},
	}))

	tests := []struct {
		from     string
		next     string
		previous string
	}{
		{"a", "b", "c"},
		{"c", "a", "b"},
		{"", "a", "a"},
		{"unknown", "a", "a"},
	}
	for _, tt := range tests {
		if got, _ := c.Next(tt.from); got.Id != tt.next {
			t.Errorf("Next(%q) = %q, want %q", tt.from, got.Id, tt.next)
		}
		if got, _ := c.Previous(tt.from); got.Id != tt.previous {
			t.Errorf("Previous(%q) = %q, want %q", tt.from, got.Id, tt.previous)
		}
	}

	empty := NewCatalog()
	if _, ok := empty.Next(""); ok {
		t.Error("Next on an empty catalog returned a journey")
	}
}

func TestFrequencyFromName(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{"Deep Healing 528 Hz", 528},
		{"432hz tuning", 432},
		{"7.83 Hz Schumann", 7.83},
		{"Ocean waves", 0},
	}
	for _, tt := range tests {
		if got := FrequencyFromName(tt.name); got != tt.want {
			t.Errorf("FrequencyFromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFolderLibrary(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"root 639 Hz.mp3", "notes.txt", "Healing/528hz miracle.flac", "Healing/cover.jpg"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	journeys, err := NewFolderLibrary(dir).Journeys()
	if err != nil {
		t.Fatalf("Journeys: %v", err)
	}
	if len(journeys) != 2 {
		t.Fatalf("len(Journeys) = %d, want 2: %+v", len(journeys), journeys)
	}

	healing := journeys[0]
	if healing.Id != "folder-Healing-528hz miracle" || healing.Artist != "Healing" || healing.Chakra != "Solar Plexus" {
		t.Errorf("journeys[0] = %+v", healing)
	}
	if want := "file://" + filepath.ToSlash(filepath.Join(dir, "Healing", "528hz miracle.flac")); healing.Source != want {
		t.Errorf("journeys[0].Source = %q, want %q", healing.Source, want)
	}
	if journeys[1].Title != "root 639 Hz" || journeys[1].Frequency != 639 {
		t.Errorf("journeys[1] = %+v", journeys[1])
	}

	missing, err := NewFolderLibrary(filepath.Join(dir, "missing")).Journeys()
	if err != nil || len(missing) != 0 {
		t.Errorf("Journeys of missing folder = %v, %v, want empty", missing, err)
	}
}
