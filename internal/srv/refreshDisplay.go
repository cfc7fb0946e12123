package srv

import (
	"fmt"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/srv/event"
	"github.com/jypelle/solfeggio/internal/version"
	"github.com/sirupsen/logrus"
	"image"
	"math"
	"strconv"
	"time"
)

func (s *ServerApp) refreshDisplay(resetMode bool) {
	if s.displayDevice == nil {
		return
	}

	// Clear animation tick timer
	if s.animationTickTimer != nil {
		s.animationTickTimer.Stop()
		s.animationTickTimer = nil
	}

	if resetMode {
		s.animationTickCount = 0

		s.currentPopUp = NO_POPUP
		if s.popUpHideTimer != nil {
			s.popUpHideTimer.Stop()
			s.popUpHideTimer = nil
		}
	}

	var imgToDisplay image.Image

	if s.currentPopUp != NO_POPUP {
		img := newScreen()
		switch s.currentPopUp {
		case VOLUME_POPUP:
			AddCenteredLabel(img, 20, "Volume")
			AddProgressBar(img, image.Rect(12, 38, 116, 50), s.player.GetVolume())
		case PRIME_POPUP:
			AddCenteredLabel(img, 14, "Prime frequency")
			AddBigLabel(img, image.Rect(0, 20, SCREEN_WIDTH, 52), strconv.FormatInt(s.lastPrime, 10), 2)
			AddCenteredLabel(img, 62, frequency.FrequencyToChakra(float64(s.lastPrime)))
		case SLEEP_POPUP:
			AddCenteredLabel(img, 28, "Sleep in")
			AddCenteredLabel(img, 44, formatDuration(s.clockDevice.SleepRemaining().Seconds()))
		}
		imgToDisplay = img
	} else {
		switch s.currentMode {
		case UNDEFINED_MODE:
			img := newScreen()
			AddBigLabel(img, image.Rect(0, 8, SCREEN_WIDTH, 44), "Solfeggio", 1)
			AddCenteredLabel(img, 58, "v"+version.AppVersion.String())
			imgToDisplay = img
		case PLAYER_MODE:
			imgToDisplay = s.refreshPlayerDisplay()
		case END_MODE:
			img := newScreen()
			AddCenteredLabel(img, 40, "See you!")
			imgToDisplay = img
		}
	}
	s.displayDevice.ShowImage(imgToDisplay)
}

func (s *ServerApp) refreshPlayerDisplay() image.Image {
	logrus.Debugf("Display player")
	state := s.player.State()

	img := newScreen()

	if state.CurrentAudio == nil {
		AddCenteredLabel(img, 28, "Solfeggio")
		AddCenteredLabel(img, 44, "Press play")
		return img
	}
	info := state.CurrentAudio

	// Header: chakra and playing status
	status := "||"
	if state.IsPlaying {
		status = ">"
	}
	AddLabel(img, 0, 10, status)
	if info.Chakra != "" {
		AddLabel(img, SCREEN_WIDTH-len(info.Chakra)*CHAR_WIDTH-8, 10, info.Chakra)
	}

	// Frequency or title in large
	if info.Frequency > 0 {
		AddBigLabel(img, image.Rect(0, 12, SCREEN_WIDTH, 40), strconv.FormatFloat(info.Frequency, 'f', -1, 64)+"Hz", 2)
	}

	// Progress
	if state.Duration > 0 {
		AddProgressBar(img, image.Rect(0, 41, SCREEN_WIDTH, 47), state.CurrentTime/state.Duration)
	} else {
		AddCenteredLabel(img, 48, formatDuration(state.CurrentTime))
	}

	// Scrolling title
	name := info.Title
	if info.Artist != "" {
		name = info.Artist + ": " + name
	}
	if AddScrollingLabel(img, 62, name, s.animationTickCount) {
		s.animationTickTimer = time.AfterFunc(100*time.Millisecond, func() {
			s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventAnimationTickData{}}
		})
	}

	return img
}

func formatDuration(seconds float64) string {
	total := int64(math.Max(0, seconds))
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
	}
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
