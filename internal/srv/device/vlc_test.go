package device

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/jypelle/solfeggio/internal/player"
)

func newTestVlcElement(opener *SourceOpener) *VlcElement {
	return &VlcElement{
		eventChannel: make(chan player.ElementEvent, 16),
		opener:       opener,
		mixer:        "PCM",
		paused:       true,
		level:        1,
	}
}

func TestVlcElementRejectsUnreachableSources(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	d := newTestVlcElement(NewSourceOpener(server.Client()))
	sources := []string{
		server.URL + "/missing.mp3",
		"file://" + filepath.ToSlash(filepath.Join(t.TempDir(), "absent.mp3")),
		"tone://528",
	}
	for _, source := range sources {
		d.SetSource(source)
		d.Load()
		if err := d.Play(context.Background()); err == nil {
			t.Errorf("Play(%q) returned no error", source)
		}
		if !d.Paused() || d.cmd != nil {
			t.Errorf("Play(%q) left a cvlc process running", source)
		}
	}
}

func TestVlcElementRewindsOnEnd(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true command not available")
	}
	d := newTestVlcElement(NewSourceOpener(nil))
	d.SetSource("file:///journeys/528.mp3")

	cmd := exec.Command("true")
	if err := cmd.Start(); err != nil {
		t.Fatal(err)
	}
	d.lock.Lock()
	d.cmd = cmd
	d.paused = false
	d.offset = 42
	d.playingSince = time.Now()
	d.watch(cmd, d.source)
	d.lock.Unlock()

	select {
	case ev := <-d.eventChannel:
		if ev.Type != player.ENDED_EVENT {
			t.Fatalf("event = %s, want ended", ev.Type)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for ended event")
	}
	if got := d.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime after end = %v, want 0", got)
	}
	if !d.Paused() {
		t.Error("Paused = false after end")
	}
}
