package device

import (
	"fmt"
	"github.com/jypelle/solfeggio/internal/srv/config"
	"github.com/jypelle/solfeggio/internal/srv/event"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"sync"
	"time"
)

const BUTTON_REPEAT_DELAY = 160 * time.Millisecond

type Button struct {
	buttonId       event.ButtonId
	pin            gpio.PinIO
	isPressed      bool
	pressStepCount int64
	lastChange     time.Time
}

func NewButton(buttonId event.ButtonId, name string) (*Button, error) {
	button := Button{buttonId: buttonId, pin: gpioreg.ByName(name)}

	if button.pin == nil {
		return nil, fmt.Errorf("Failed to find %s button", name)
	}

	// Set it as input, with an internal pull up resistor:
	if err := button.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("Failed to setup %s button: %v", name, err)
	}
	return &button, nil
}

func (b *Button) Refresh(buttonEventChannel chan event.ButtonEvent) {
	b.update(!bool(b.pin.Read()), time.Now(), buttonEventChannel)
}

// update applies a new pin reading: a held button repeats its press event every
// BUTTON_REPEAT_DELAY, release reports the number of press steps.
func (b *Button) update(isPressed bool, now time.Time, buttonEventChannel chan event.ButtonEvent) {
	wasPressed := b.isPressed
	b.isPressed = isPressed

	if !b.isPressed && wasPressed {
		b.lastChange = now
		buttonEventChannel <- event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.RELEASE_EVENT_TYPE, PressStepCount: b.pressStepCount}
		b.pressStepCount = 0
	} else if b.isPressed && b.lastChange.Add(BUTTON_REPEAT_DELAY).Before(now) {
		b.lastChange = now
		b.pressStepCount++
		buttonEventChannel <- event.ButtonEvent{ButtonId: b.buttonId, ButtonEventType: event.PRESS_EVENT_TYPE, PressStepCount: b.pressStepCount}
	}
}

type Buttons struct {
	lock         sync.RWMutex
	eventChannel chan event.ButtonEvent
	simulation   bool
	pins         config.ButtonPins

	buttons []*Button

	checkTicker *time.Ticker

	askDone chan bool
	done    chan bool
}

func NewButtons(simulation bool, pins config.ButtonPins) *Buttons {
	if !simulation {
		if _, err := host.Init(); err != nil {
			logrus.Fatalf("Unable to init host: %v", err)
		}
	}

	device := Buttons{
		eventChannel: make(chan event.ButtonEvent),
		simulation:   simulation,
		pins:         pins,
		askDone:      make(chan bool),
		done:         make(chan bool),
	}

	return &device
}

func (d *Buttons) Start() {
	logrus.Infof("Start buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	if !d.simulation {
		for buttonId, name := range map[event.ButtonId]string{
			event.PLAY_PAUSE_BUTTON: d.pins.PlayPause,
			event.NEXT_BUTTON:       d.pins.Next,
			event.PREVIOUS_BUTTON:   d.pins.Previous,
			event.MORE_BUTTON:       d.pins.More,
			event.LESS_BUTTON:       d.pins.Less,
			event.RESET_BUTTON:      d.pins.Reset,
		} {
			if name == "" {
				continue
			}
			button, err := NewButton(buttonId, name)
			if err != nil {
				logrus.Fatalf("%v", err)
			}
			d.buttons = append(d.buttons, button)
		}
	}

	// Start periodic check
	d.checkTicker = time.NewTicker(5 * time.Millisecond)
	go func() {
		for loop := true; loop; {
			select {
			case <-d.checkTicker.C:
				for _, button := range d.buttons {
					button.Refresh(d.eventChannel)
				}
			case <-d.askDone:
				loop = false
			}
		}
		d.done <- true
	}()
}

func (d *Buttons) StopSendingEvent() {
	logrus.Infof("Stop buttons device")

	d.lock.Lock()
	defer d.lock.Unlock()

	d.checkTicker.Stop()
	d.askDone <- true
	<-d.done
}

func (d *Buttons) EventChannel() chan event.ButtonEvent {
	return d.eventChannel
}
