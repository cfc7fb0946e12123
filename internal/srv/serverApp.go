package srv

import (
	"fmt"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/jypelle/solfeggio/internal/srv/catalog"
	"github.com/jypelle/solfeggio/internal/srv/config"
	"github.com/jypelle/solfeggio/internal/srv/device"
	"github.com/jypelle/solfeggio/internal/srv/event"
	"github.com/jypelle/solfeggio/internal/srv/history"
	"github.com/jypelle/solfeggio/internal/version"
	"github.com/sirupsen/logrus"
	"net/http"
	"os"
	"os/exec"
	"time"
)

type ServerApp struct {
	*config.ServerConfig

	player  *player.Player
	catalog *catalog.Catalog
	history *history.History
	opener  *device.SourceOpener

	displayDevice  *device.Display
	clockDevice    *device.Clock
	buttonsDevice  *device.Buttons
	apiDevice      *device.Api
	analyzerDevice *device.SpectrumAnalyzer

	disposers []player.Disposer

	currentMode Mode

	currentPopUp   PopUp
	popUpHideTimer *time.Timer
	lastPrime      int64

	animationTickCount int
	animationTickTimer *time.Timer

	internalEventChannel chan event.InternalEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

type Mode int64

const (
	UNDEFINED_MODE Mode = iota
	PLAYER_MODE
	END_MODE
)

type PopUp int64

const (
	NO_POPUP PopUp = iota
	VOLUME_POPUP
	PRIME_POPUP
	SLEEP_POPUP
)

func NewServerApp(configDir string, debugMode bool, simulationMode bool) (*ServerApp, error) {

	logrus.Debugf("Creation of solfeggio server %s ...", version.AppVersion.String())

	serverConfig, err := config.NewServerConfig(configDir, debugMode, simulationMode)
	if err != nil {
		return nil, err
	}

	app := &ServerApp{
		currentMode:          UNDEFINED_MODE,
		internalEventChannel: make(chan event.InternalEvent),
		eventLoopAskDone:     make(chan bool),
		eventLoopDone:        make(chan bool),
		ServerConfig:         serverConfig,
	}

	// Catalog
	app.opener = device.NewSourceOpener(&http.Client{})
	libraries := []catalog.Library{catalog.NewStaticLibrary("journey", app.Journeys)}
	if folder := app.GetCompleteLibraryFolder(); folder != "" {
		libraries = append(libraries, catalog.NewFolderLibrary(folder))
	}
	libraries = append(libraries, catalog.ToneLibrary{})
	if app.MifasolParam != nil {
		mifasolLibrary, err := catalog.NewMifasolLibrary(app.MifasolParam)
		if err != nil {
			logrus.Warnf("Mifasol library disabled: %v", err)
		} else {
			libraries = append(libraries, mifasolLibrary)
			app.opener.RegisterScheme(catalog.MIFASOL_SCHEME, mifasolLibrary.OpenContent)
		}
	}
	app.catalog = catalog.NewCatalog(libraries...)

	// Player
	if app.PlayerParam.AnalyzerEnabled && app.PlayerParam.Backend == config.SPEAKER_BACKEND {
		app.analyzerDevice = device.NewSpectrumAnalyzer(app.PlayerParam.SampleRate, 2*time.Second, func(prime int64) {
			app.player.NotifyPrime(prime)
		})
	}
	owner := player.NewElementOwner(nil, app.newElement, app.Volume())
	app.player = player.NewPlayer(owner, app.Volume())

	if app.HistoryParam.Enabled {
		app.history, err = history.NewHistory(app.GetCompleteHistoryFilename(), app.HistoryParam.Limit)
		if err != nil {
			logrus.Warnf("History disabled: %v", err)
			app.history = nil
		}
	}

	// Devices
	app.clockDevice = device.NewClock()
	if app.HardwareParam.Display || app.SimulationMode {
		app.displayDevice = device.NewDisplay(app.SimulationMode, app.GetCompleteSnapshotFilename())
	}
	if app.HardwareParam.Buttons && !app.SimulationMode {
		app.buttonsDevice = device.NewButtons(app.SimulationMode, app.HardwareParam.Pins)
	}
	if app.ApiParam.Enabled {
		app.apiDevice = device.NewApi(app.ServerConfig, app.player, app.catalog, app.history, app.clockDevice)
	}

	logrus.Debugln("Server created")

	return app, nil
}

// newElement builds the playback element of the configured backend, the owner applies
// the volume
func (s *ServerApp) newElement(_ float64) (player.Element, error) {
	switch s.PlayerParam.Backend {
	case config.SPEAKER_BACKEND:
		speakerElement, err := device.NewSpeakerElement(s.PlayerParam.SampleRate, s.opener, s.ToneDuration())
		if err != nil {
			return nil, err
		}
		if s.analyzerDevice != nil {
			speakerElement.SetTap(s.analyzerDevice.Tap)
		}
		return speakerElement, nil
	case config.VLC_BACKEND:
		vlcElement, err := device.NewVlcElement(s.opener, s.PlayerParam.Mixer)
		if err != nil {
			return nil, err
		}
		return vlcElement, nil
	default:
		return nil, fmt.Errorf("Unknown player backend %s", s.PlayerParam.Backend)
	}
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting solfeggio server ...")

	logrus.Printf("Starting devices ...")

	// Start display device
	if s.displayDevice != nil {
		s.displayDevice.Start()

		// Display startup screen
		s.refreshDisplay(true)
	}

	// Start player
	s.player.Start()
	if s.history != nil {
		s.disposers = append(s.disposers, s.player.RegisterVisual(s.history))
	}
	s.disposers = append(s.disposers,
		s.player.RegisterVisual(player.VisualRegistrationFunc(func(url string, info player.PlayerInfo) {
			go func() {
				s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventAudioSourceData{Info: info}}
			}()
		})),
		s.player.RegisterPrime(func(prime int64) {
			go func() { s.internalEventChannel <- event.InternalEvent{Data: event.InternalEventPrimeData{Prime: prime}} }()
		}),
	)

	// Start spectrum analyzer
	if s.analyzerDevice != nil {
		s.analyzerDevice.Start()
	}

	// Start event loop
	go s.eventLoop()

	// Start clock device
	s.clockDevice.Start()

	// Start buttons device
	if s.buttonsDevice != nil {
		s.buttonsDevice.Start()
	}

	// Start api device
	if s.apiDevice != nil {
		s.apiDevice.Start()
	}

	s.currentMode = PLAYER_MODE
	s.refreshDisplay(true)
}

func (s *ServerApp) Stop(halt bool) {
	logrus.Printf("Stopping solfeggio server ...")

	// Stop api
	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}

	// Stop buttons device
	if s.buttonsDevice != nil {
		s.buttonsDevice.StopSendingEvent()
	}

	// Stop clock device
	s.clockDevice.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Display end mode image
	s.currentMode = END_MODE
	s.refreshDisplay(true)

	for _, dispose := range s.disposers {
		dispose()
	}

	// Stop player
	s.player.Stop()

	// Stop spectrum analyzer
	if s.analyzerDevice != nil {
		s.analyzerDevice.Stop()
	}

	if s.history != nil {
		if err := s.history.Close(); err != nil {
			logrus.Warnf("Unable to close history: %v", err)
		}
	}

	// Stop display device
	if s.displayDevice != nil {
		s.displayDevice.Stop()
	}

	// Flush config backup
	s.ServerConfig.ServerState.FlushSave()

	logrus.Printf("Server stopped")

	if halt {
		logrus.Printf("System halt")
		haltCmd := exec.Command("sudo", "halt")
		err := haltCmd.Run()
		if err != nil {
			logrus.Panicf("Unable to halt the system: %v", err)
		}
	}
	os.Exit(0)
}
