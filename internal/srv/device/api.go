package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/solfeggio/apimodel"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/jypelle/solfeggio/internal/srv/catalog"
	"github.com/jypelle/solfeggio/internal/srv/config"
	"github.com/jypelle/solfeggio/internal/srv/event"
	"github.com/jypelle/solfeggio/internal/srv/history"
	"github.com/jypelle/solfeggio/internal/tool"
	"github.com/sirupsen/logrus"
	"net/http"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"sync"
	"time"
)

type Api struct {
	lock         sync.RWMutex
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config  *config.ServerConfig
	player  *player.Player
	catalog *catalog.Catalog
	history *history.History
	clock   *Clock

	streamsDone chan bool
}

// NewApi builds the https api. history and clock may be nil.
func NewApi(config *config.ServerConfig, player *player.Player, catalog *catalog.Catalog, history *history.History, clock *Clock) *Api {
	api := Api{
		config:       config,
		player:       player,
		catalog:      catalog,
		history:      history,
		clock:        clock,
		eventChannel: make(chan event.ApiEvent),
		streamsDone:  make(chan bool),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						strMessage := fmt.Sprintf("%v", rec)
						GlobalErrorAction(w, strMessage, http.StatusInternalServerError)
					}
				}()

				// Check API Key
				apiKey := r.Header.Get("x-api-key")
				if apiKey != config.ServerParam.ApiParam.ApiKey {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// Create server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")

	api.apiRouter.HandleFunc("/catalog",
		func(w http.ResponseWriter, r *http.Request) {
			JsonAction(w, api.catalog.Journeys())
		}).Methods("GET")

	api.apiRouter.HandleFunc("/frequency/{frequency}",
		func(w http.ResponseWriter, r *http.Request) {
			freq, ok := floatVar(r, "frequency")
			if !ok {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			if !frequency.InRange(freq) {
				apimodel.FrequencyOutOfRangeErrorMessage.SendError(w)
				return
			}
			tolerance := 0.0
			if toleranceStr := r.URL.Query().Get("tolerance"); toleranceStr != "" {
				var err error
				tolerance, err = strconv.ParseFloat(toleranceStr, 64)
				if err != nil || tolerance < 0 {
					apimodel.WrongParametersErrorMessage.SendError(w)
					return
				}
			}
			JsonAction(w, frequency.AnalyzeFrequency(freq, tolerance))
		}).Methods("GET")

	api.apiRouter.HandleFunc("/history",
		func(w http.ResponseWriter, r *http.Request) {
			if api.history == nil {
				ErrorStatusAction(w, r, http.StatusServiceUnavailable)
				return
			}
			limit := config.HistoryParam.Limit
			if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
				var err error
				limit, err = strconv.ParseInt(limitStr, 10, 64)
				if err != nil || limit <= 0 {
					apimodel.WrongParametersErrorMessage.SendError(w)
					return
				}
			}
			plays, err := api.history.Recent(limit)
			if err != nil {
				GlobalErrorAction(w, err.Error(), http.StatusInternalServerError)
				return
			}
			JsonAction(w, plays)
		}).Methods("GET")

	api.apiRouter.HandleFunc("/player/state",
		func(w http.ResponseWriter, r *http.Request) {
			state := apimodel.NewPlayerState(api.player.State())
			if api.clock != nil {
				state.SleepIn = api.clock.SleepRemaining().Seconds()
			}
			JsonAction(w, state)
		}).Methods("GET")

	api.apiRouter.HandleFunc("/player/events", api.eventsAction).Methods("GET")

	api.apiRouter.HandleFunc("/player/play/{journey_id}",
		func(w http.ResponseWriter, r *http.Request) {
			journeyId := mux.Vars(r)["journey_id"]
			api.sendEvent(w, r, event.ApiEventJourneyPlayData{JourneyId: journeyId})
		}).Methods("POST")

	api.apiRouter.HandleFunc("/player/tone/{frequency}",
		func(w http.ResponseWriter, r *http.Request) {
			freq, ok := floatVar(r, "frequency")
			if !ok || freq <= 0 {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			if !frequency.InRange(freq) {
				apimodel.FrequencyOutOfRangeErrorMessage.SendError(w)
				return
			}
			duration := 0.0
			if durationStr := r.URL.Query().Get("duration"); durationStr != "" {
				var err error
				duration, err = strconv.ParseFloat(durationStr, 64)
				if err != nil || duration <= 0 {
					apimodel.WrongParametersErrorMessage.SendError(w)
					return
				}
			}
			api.sendEvent(w, r, event.ApiEventTonePlayData{Frequency: freq, Duration: duration})
		}).Methods("POST")

	api.apiRouter.HandleFunc("/player/toggle",
		func(w http.ResponseWriter, r *http.Request) {
			api.sendEvent(w, r, event.ApiEventTogglePlayPauseData{})
		}).Methods("POST")

	api.apiRouter.HandleFunc("/player/seek/{seconds}",
		func(w http.ResponseWriter, r *http.Request) {
			seconds, ok := floatVar(r, "seconds")
			if !ok {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			api.sendEvent(w, r, event.ApiEventSeekData{Seconds: seconds})
		}).Methods("POST")

	api.apiRouter.HandleFunc("/player/volume/{volume}",
		func(w http.ResponseWriter, r *http.Request) {
			volume, ok := floatVar(r, "volume")
			if !ok || volume < 0 || volume > 1 {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			api.sendEvent(w, r, event.ApiEventVolumeData{Volume: volume})
		}).Methods("POST")

	api.apiRouter.HandleFunc("/player/reset",
		func(w http.ResponseWriter, r *http.Request) {
			api.sendEvent(w, r, event.ApiEventResetData{})
		}).Methods("POST")

	api.apiRouter.HandleFunc("/player/sleep/{minutes}",
		func(w http.ResponseWriter, r *http.Request) {
			minutes, err := strconv.ParseInt(mux.Vars(r)["minutes"], 10, 64)
			if err != nil || minutes < 0 {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			api.sendEvent(w, r, event.ApiEventSleepData{Minutes: minutes})
		}).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization", "x-api-key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})

	api.server = &http.Server{
		Addr:        ":" + strconv.FormatInt(config.ServerParam.ApiParam.SslPort, 10),
		Handler:     handlers.CORS(originsOk, headersOk, methodsOk)(api.router),
		ReadTimeout: time.Second * 240,
		IdleTimeout: time.Second * 240,
	}

	return &api
}

func (d *Api) Start() {
	logrus.Infof("Start api device")

	existServerCert, err := tool.IsFileExists(d.selfSignedCertFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedCertFilename(), err)
	}

	existServerKey, err := tool.IsFileExists(d.selfSignedKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.selfSignedKeyFilename(), err)
	}

	if !existServerCert || !existServerKey {
		logrus.Info("Missing cert and key files, trying to generate them...")
		err = tool.GenerateTlsCertificate(
			"jypelle",
			"Solfeggio Server",
			d.selfSignedKeyFilename(),
			d.selfSignedCertFilename(),
			[]string{})
		if err != nil {
			logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
		}
		logrus.Info("Self-signed cert and key files generated")
	}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS(d.selfSignedCertFilename(), d.selfSignedKeyFilename())
		if err != nil && err != http.ErrServerClosed {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	close(d.streamsDone)
	d.server.Shutdown(context.Background())
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func (d *Api) Handler() http.Handler {
	return d.router
}

// sendEvent hands a mutation to the server event loop and waits for its outcome
func (d *Api) sendEvent(w http.ResponseWriter, r *http.Request, data interface{}) {
	result := make(chan error)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-r.Context().Done():
		return
	}
	err := <-result
	var errorMessage *apimodel.ErrorMessage
	switch {
	case err == nil:
		ErrorStatusAction(w, r, http.StatusOK)
	case errors.As(err, &errorMessage):
		logrus.Debugf("Api event refused with status %d", errorMessage.StatusCode())
		errorMessage.SendError(w)
	default:
		GlobalErrorAction(w, err.Error(), http.StatusForbidden)
	}
}

// eventsAction streams source changes and detected primes as server-sent events.
// The connection lives as a visual and a prime registration of the player.
func (d *Api) eventsAction(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		GlobalErrorAction(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	type sse struct {
		name string
		data interface{}
	}
	events := make(chan sse, 16)
	push := func(ev sse) {
		select {
		case events <- ev:
		default:
			logrus.Debugf("Drop %s event of slow stream", ev.name)
		}
	}

	disposeVisual := d.player.RegisterVisual(player.VisualRegistrationFunc(func(url string, info player.PlayerInfo) {
		push(sse{name: "source", data: apimodel.SourceEvent{Url: url, Info: info}})
	}))
	defer disposeVisual()
	disposePrime := d.player.RegisterPrime(func(prime int64) {
		push(sse{name: "prime", data: apimodel.PrimeEvent{Prime: prime, Color: frequency.FrequencyToColor(float64(prime))}})
	})
	defer disposePrime()

	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-d.streamsDone:
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()
		case ev := <-events:
			data, err := json.Marshal(ev.data)
			if err != nil {
				logrus.Warnf("Unable to encode %s event: %v", ev.name, err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.name, data)
			flusher.Flush()
		}
	}
}

func (d *Api) selfSignedKeyFilename() string {
	return filepath.Join(d.config.ConfigDir, "key.pem")
}

func (d *Api) selfSignedCertFilename() string {
	return filepath.Join(d.config.ConfigDir, "cert.pem")
}

func floatVar(r *http.Request, name string) (float64, bool) {
	str, ok := mux.Vars(r)[name]
	if !ok {
		return 0, false
	}
	value, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func JsonAction(w http.ResponseWriter, value interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		logrus.Warnf("Unable to encode response: %v", err)
	}
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	apimodel.ErrorMessage{ErrStatusCode: status}.SendError(w)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	apimodel.ErrorMessage{ErrStatusCode: status, ErrMessage: message}.SendError(w)
}
