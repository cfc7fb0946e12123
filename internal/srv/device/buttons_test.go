package device

import (
	"testing"
	"time"

	"github.com/jypelle/solfeggio/internal/srv/event"
)

func TestButtonRepeatAndRelease(t *testing.T) {
	events := make(chan event.ButtonEvent, 16)
	b := &Button{buttonId: event.NEXT_BUTTON}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	steps := []struct {
		pressed bool
		at      time.Duration
	}{
		{true, 0},
		{true, 100 * time.Millisecond},
		{true, 200 * time.Millisecond},
		{true, 400 * time.Millisecond},
		{false, 450 * time.Millisecond},
		{false, 500 * time.Millisecond},
	}
	for _, step := range steps {
		b.update(step.pressed, start.Add(step.at), events)
	}
	close(events)

	var got []event.ButtonEvent
	for ev := range events {
		got = append(got, ev)
	}
	want := []event.ButtonEvent{
		{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: 1},
		{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: 2},
		{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: 3},
		{ButtonId: event.NEXT_BUTTON, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: 3},
	}
	if len(got) != len(want) {
		t.Fatalf("events = %+v, want %+v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestClockSleep(t *testing.T) {
	clock := NewClock()
	clock.Start()
	defer clock.StopSendingEvent()

	if got := clock.SleepRemaining(); got != 0 {
		t.Errorf("SleepRemaining without timer = %v, want 0", got)
	}

	clock.Sleep(time.Hour)
	if got := clock.SleepRemaining(); got <= 59*time.Minute || got > time.Hour {
		t.Errorf("SleepRemaining = %v, want about 1h", got)
	}
	clock.Sleep(0)
	if got := clock.SleepRemaining(); got != 0 {
		t.Errorf("SleepRemaining after cancel = %v, want 0", got)
	}

	clock.Sleep(20 * time.Millisecond)
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev := <-clock.EventChannel():
			if _, ok := ev.Data.(event.TickerEventSleepData); ok {
				return
			}
		case <-timeout:
			t.Fatal("no sleep event")
		}
	}
}
