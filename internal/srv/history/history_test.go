package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jypelle/solfeggio/internal/player"
)

func newTestHistory(t *testing.T, keep int64) *History {
	t.Helper()
	h, err := NewHistory(filepath.Join(t.TempDir(), "history.db"), keep)
	if err != nil {
		t.Fatalf("NewHistory: %v", err)
	}
	t.Cleanup(func() { h.Close() })

	now := time.Date(2024, 3, 9, 7, 0, 0, 0, time.UTC)
	h.clock = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	return h
}

func TestRecentMostRecentFirst(t *testing.T) {
	h := newTestHistory(t, 0)

	for _, f := range []float64{396, 528, 963} {
		info := player.PlayerInfo{Id: "tone", Source: "tone://x", Frequency: f, Chakra: "Root"}
		h.SetAudioSource(info.Source, info)
	}

	plays, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(plays) != 3 {
		t.Fatalf("len(Recent) = %d, want 3", len(plays))
	}
	for i, want := range []float64{963, 528, 396} {
		if plays[i].Journey.Frequency != want {
			t.Errorf("plays[%d].Frequency = %v, want %v", i, plays[i].Journey.Frequency, want)
		}
	}
	if plays[0].Id == "" || plays[0].Id == plays[1].Id {
		t.Errorf("play ids = %q, %q, want distinct ids", plays[0].Id, plays[1].Id)
	}
	if !plays[0].PlayedAt.After(plays[1].PlayedAt) {
		t.Errorf("plays[0].PlayedAt = %v, want after %v", plays[0].PlayedAt, plays[1].PlayedAt)
	}

	limited, err := h.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("len(Recent(2)) = %d, want 2", len(limited))
	}
}

func TestRecordKeepsNewest(t *testing.T) {
	h := newTestHistory(t, 2)

	for _, title := range []string{"first", "second", "third"} {
		if _, err := h.Record("tone://528", player.PlayerInfo{Title: title}); err != nil {
			t.Fatalf("Record(%s): %v", title, err)
		}
	}

	plays, err := h.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(plays) != 2 || plays[0].Journey.Title != "third" || plays[1].Journey.Title != "second" {
		t.Errorf("Recent = %+v, want third then second", plays)
	}
}

func TestRecentEmpty(t *testing.T) {
	h := newTestHistory(t, 0)

	plays, err := h.Recent(5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if plays == nil || len(plays) != 0 {
		t.Errorf("Recent = %#v, want empty slice", plays)
	}
}
