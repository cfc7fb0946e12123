package device

import (
	"github.com/jypelle/solfeggio/internal/srv/event"
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

// Clock ticks every second (display progress) and owns the sleep timer.
type Clock struct {
	lock         sync.RWMutex
	eventChannel chan event.TickerEvent

	refreshClockTicker *time.Ticker

	sleepTimer *time.Timer
	sleepAt    time.Time

	askDone chan bool
	done    chan bool
}

func NewClock() *Clock {
	ticker := Clock{
		eventChannel: make(chan event.TickerEvent),
		askDone:      make(chan bool),
		done:         make(chan bool),
	}
	return &ticker
}

func (d *Clock) Start() {
	logrus.Infof("Start ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.refreshClockTicker = time.NewTicker(time.Second)

	go func() {
		for loop := true; loop; {
			select {
			case <-d.refreshClockTicker.C:
				select {
				case d.eventChannel <- event.TickerEvent{Data: event.TickerEventTickData{}}:
				case <-d.askDone:
					loop = false
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Clock) StopSendingEvent() {
	logrus.Infof("Stop ticker device")
	d.lock.Lock()
	defer d.lock.Unlock()

	d.refreshClockTicker.Stop()
	d.clearSleep()
	d.askDone <- true
	<-d.done
}

func (d *Clock) EventChannel() chan event.TickerEvent {
	return d.eventChannel
}

// Sleep pauses playback after delay, a zero delay cancels the sleep timer.
func (d *Clock) Sleep(delay time.Duration) {
	d.lock.Lock()
	defer d.lock.Unlock()
	d.clearSleep()
	if delay <= 0 {
		logrus.Infof("Sleep timer cancelled")
		return
	}

	logrus.Infof("Sleep in %v", delay)
	d.sleepAt = time.Now().Add(delay)
	d.sleepTimer = time.AfterFunc(delay, func() {
		d.lock.Lock()
		d.sleepTimer = nil
		d.sleepAt = time.Time{}
		d.lock.Unlock()
		d.eventChannel <- event.TickerEvent{Data: event.TickerEventSleepData{}}
	})
}

// SleepRemaining returns the time left before sleep, 0 when no sleep timer runs.
func (d *Clock) SleepRemaining() time.Duration {
	d.lock.RLock()
	defer d.lock.RUnlock()
	if d.sleepTimer == nil {
		return 0
	}
	return time.Until(d.sleepAt)
}

func (d *Clock) clearSleep() {
	if d.sleepTimer != nil {
		d.sleepTimer.Stop()
		d.sleepTimer = nil
		d.sleepAt = time.Time{}
	}
}
