package srv

import (
	"context"
	"fmt"
	"github.com/jypelle/solfeggio/apimodel"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/jypelle/solfeggio/internal/srv/catalog"
	"github.com/jypelle/solfeggio/internal/srv/event"
	"github.com/sirupsen/logrus"
	"net/http"
	"strconv"
	"syscall"
	"time"
)

const VOLUME_STEP = 0.04

func (s *ServerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.internalEventChannel:
			switch data := ev.Data.(type) {
			case event.InternalEventPopupHideData:
				if s.popUpHideTimer != nil {
					s.refreshDisplay(true)
				}
			case event.InternalEventAnimationTickData:
				if s.animationTickTimer != nil {
					s.animationTickCount++
					s.refreshDisplay(false)
				}
			case event.InternalEventAudioSourceData:
				logrus.Debugf("Receive audio source event")
				if data.Info.Id != "" {
					s.SetLastJourneyId(data.Info.Id)
				}
				s.refreshDisplay(true)
			case event.InternalEventPrimeData:
				logrus.Debugf("Receive prime %d event", data.Prime)
				s.lastPrime = data.Prime
				s.showPopUp(PRIME_POPUP, 3*time.Second)
			}
		case ev := <-s.clockDevice.EventChannel():
			switch ev.Data.(type) {
			case event.TickerEventTickData:
				if s.currentPopUp == NO_POPUP && s.player.State().IsPlaying {
					s.refreshDisplay(false)
				}
			case event.TickerEventSleepData:
				logrus.Infof("Receive sleep event")
				if s.player.State().IsPlaying {
					s.player.TogglePlayPause(context.Background())
				}
				s.refreshDisplay(true)
				if s.displayDevice != nil {
					s.displayDevice.SetOff()
				}
			}
		case ev := <-s.apiEventChannel():
			switch data := ev.Data.(type) {
			case event.ApiEventJourneyPlayData:
				journey, err := s.catalog.Journey(data.JourneyId)
				if err != nil {
					ev.Result <- &apimodel.ErrorMessage{ErrStatusCode: http.StatusNotFound, ErrMessage: err.Error()}
					continue
				}
				s.playJourney(journey, ev.Result)
			case event.ApiEventTonePlayData:
				s.playJourney(toneJourney(data.Frequency, data.Duration), ev.Result)
			case event.ApiEventTogglePlayPauseData:
				s.togglePlayPause(ev.Result)
			case event.ApiEventSeekData:
				s.player.SeekTo(data.Seconds)
				ev.Result <- nil
			case event.ApiEventVolumeData:
				s.setVolume(data.Volume)
				ev.Result <- nil
			case event.ApiEventResetData:
				s.player.ResetPlayer()
				s.refreshDisplay(true)
				ev.Result <- nil
			case event.ApiEventSleepData:
				s.clockDevice.Sleep(time.Duration(data.Minutes) * time.Minute)
				if data.Minutes > 0 {
					s.showPopUp(SLEEP_POPUP, 1200*time.Millisecond)
				}
				ev.Result <- nil
			default:
				ev.Result <- fmt.Errorf("Unsupported api event %T", data)
			}
		case ev := <-s.buttonsEventChannel():
			logrus.Debugf("Receive button event: %d, %d, %d", ev.ButtonId, ev.ButtonEventType, ev.PressStepCount)
			s.handleButtonEvent(ev)
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}

func (s *ServerApp) handleButtonEvent(ev event.ButtonEvent) {
	// First press only wakes up a sleeping display
	if s.displayDevice != nil && ev.ButtonId != event.RESET_BUTTON && !s.displayDevice.IsOn() {
		if ev.ButtonEventType == event.PRESS_EVENT_TYPE && ev.PressStepCount == 1 {
			s.displayDevice.SetOn()
		}
		return
	}

	switch ev.ButtonId {
	case event.PLAY_PAUSE_BUTTON:
		if ev.ButtonEventType == event.PRESS_EVENT_TYPE && ev.PressStepCount == 1 {
			if s.player.State().CurrentAudio == nil {
				if journey, ok := s.resumeJourney(); ok {
					s.playJourney(journey, nil)
				}
			} else {
				s.togglePlayPause(nil)
			}
		}
	case event.NEXT_BUTTON, event.PREVIOUS_BUTTON:
		if ev.ButtonEventType == event.PRESS_EVENT_TYPE && (ev.PressStepCount-1)%3 == 0 {
			currentId := ""
			if currentAudio := s.player.State().CurrentAudio; currentAudio != nil {
				currentId = currentAudio.Id
			}
			var journey player.PlayerInfo
			var ok bool
			if ev.ButtonId == event.NEXT_BUTTON {
				journey, ok = s.catalog.Next(currentId)
			} else {
				journey, ok = s.catalog.Previous(currentId)
			}
			if ok {
				s.playJourney(journey, nil)
			}
		}
	case event.MORE_BUTTON:
		if ev.ButtonEventType == event.PRESS_EVENT_TYPE {
			s.setVolume(s.player.GetVolume() + VOLUME_STEP)
		}
	case event.LESS_BUTTON:
		if ev.ButtonEventType == event.PRESS_EVENT_TYPE {
			s.setVolume(s.player.GetVolume() - VOLUME_STEP)
		}
	case event.RESET_BUTTON:
		if ev.ButtonEventType == event.RELEASE_EVENT_TYPE && ev.PressStepCount < 5 {
			logrus.Debugf("Switch display on/off")
			if s.displayDevice != nil {
				s.displayDevice.Switch()
			}
		} else if ev.ButtonEventType == event.PRESS_EVENT_TYPE {
			if ev.PressStepCount == 5 {
				logrus.Debugf("Reset player")
				s.clockDevice.Sleep(0)
				s.player.ResetPlayer()
				s.refreshDisplay(true)
			} else if ev.PressStepCount == 20 {
				logrus.Debugf("See you!")
				syscall.Kill(syscall.Getpid(), syscall.SIGUSR1)
			}
		}
	}
}

// playJourney starts journey without blocking the event loop. result, when given,
// receives nil once the journey plays, an error otherwise.
func (s *ServerApp) playJourney(journey player.PlayerInfo, result chan error) {
	logrus.Infof("Play journey %s: \"%s\"", journey.Id, journey.Title)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.PlayTimeout())
		defer cancel()

		s.player.PlayAudio(ctx, journey)

		var err error
		state := s.player.State()
		if !state.IsPlaying || state.CurrentAudio == nil || state.CurrentAudio.Source != journey.Source {
			err = fmt.Errorf("Unable to play %s", journey.Source)
		}
		if result != nil {
			result <- err
		}
	}()
}

func (s *ServerApp) togglePlayPause(result chan error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.PlayTimeout())
		defer cancel()

		s.player.TogglePlayPause(ctx)
		go func() { s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventPopupHideData{}} }()
		if result != nil {
			result <- nil
		}
	}()
}

func (s *ServerApp) setVolume(volume float64) {
	if volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	s.player.SetVolume(volume)
	s.SetVolume(volume)
	s.showPopUp(VOLUME_POPUP, 1200*time.Millisecond)
}

// resumeJourney gives the last played journey, or the first one of the catalog.
func (s *ServerApp) resumeJourney() (player.PlayerInfo, bool) {
	if lastJourneyId := s.LastJourneyId(); lastJourneyId != "" {
		if journey, err := s.catalog.Journey(lastJourneyId); err == nil {
			return journey, true
		}
	}
	return s.catalog.Next("")
}

func (s *ServerApp) showPopUp(popUp PopUp, duration time.Duration) {
	if s.popUpHideTimer != nil {
		s.popUpHideTimer.Stop()
	}
	s.currentPopUp = popUp
	s.popUpHideTimer = time.AfterFunc(duration, func() {
		s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventPopupHideData{}}
	})
	s.refreshDisplay(false)
}

func (s *ServerApp) apiEventChannel() chan event.ApiEvent {
	if s.apiDevice == nil {
		return nil
	}
	return s.apiDevice.EventChannel()
}

func (s *ServerApp) buttonsEventChannel() chan event.ButtonEvent {
	if s.buttonsDevice == nil {
		return nil
	}
	return s.buttonsDevice.EventChannel()
}

func toneJourney(freq float64, duration float64) player.PlayerInfo {
	source := catalog.ToneSource(freq)
	if duration > 0 {
		source += "?duration=" + strconv.FormatFloat(duration, 'f', -1, 64)
	}
	freqStr := strconv.FormatFloat(freq, 'f', -1, 64)
	title := freqStr + " Hz"
	if name := frequency.SolfeggioName(freq); name != "" {
		title += " " + name
	}
	return player.PlayerInfo{
		Id:        "tone-" + freqStr,
		Title:     title,
		Artist:    "Solfeggio",
		Source:    source,
		Chakra:    frequency.FrequencyToChakra(freq),
		Frequency: freq,
	}
}
