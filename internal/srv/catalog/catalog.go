package catalog

import (
	"fmt"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/sirupsen/logrus"
	"strconv"
	"sync"
)

// Library is a source of journeys.
type Library interface {
	Name() string
	Journeys() ([]player.PlayerInfo, error)
}

// Catalog is the ordered list of every playable journey.
type Catalog struct {
	lock      sync.RWMutex
	libraries []Library
	journeys  []player.PlayerInfo
	index     map[string]int
}

func NewCatalog(libraries ...Library) *Catalog {
	c := &Catalog{libraries: libraries}
	c.Refresh()
	return c
}

// Refresh reloads every library. A failing library is skipped.
func (c *Catalog) Refresh() {
	var journeys []player.PlayerInfo
	index := make(map[string]int)

	for _, library := range c.libraries {
		libraryJourneys, err := library.Journeys()
		if err != nil {
			logrus.Warnf("Unable to load %s library: %v", library.Name(), err)
			continue
		}
		for position, journey := range libraryJourneys {
			if journey.Source == "" {
				logrus.Warnf("Journey %d of %s library has no source", position+1, library.Name())
				continue
			}
			if journey.Id == "" {
				journey.Id = library.Name() + "-" + strconv.Itoa(position+1)
			}
			if _, ok := index[journey.Id]; ok {
				logrus.Warnf("Journey %s of %s library is already defined", journey.Id, library.Name())
				continue
			}
			if journey.Chakra == "" && journey.Frequency > 0 {
				journey.Chakra = frequency.FrequencyToChakra(journey.Frequency)
			}
			index[journey.Id] = len(journeys)
			journeys = append(journeys, journey)
		}
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	c.journeys = journeys
	c.index = index
	logrus.Infof("Catalog loaded with %d journeys", len(journeys))
}

func (c *Catalog) Journeys() []player.PlayerInfo {
	c.lock.RLock()
	defer c.lock.RUnlock()

	journeys := make([]player.PlayerInfo, len(c.journeys))
	copy(journeys, c.journeys)
	return journeys
}

func (c *Catalog) Journey(journeyId string) (player.PlayerInfo, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	position, ok := c.index[journeyId]
	if !ok {
		return player.PlayerInfo{}, fmt.Errorf("Journey %s is undefined", journeyId)
	}
	return c.journeys[position], nil
}

// Next returns the journey following journeyId, wrapping around. An unknown id
// gives the first journey.
func (c *Catalog) Next(journeyId string) (player.PlayerInfo, bool) {
	return c.step(journeyId, 1)
}

func (c *Catalog) Previous(journeyId string) (player.PlayerInfo, bool) {
	return c.step(journeyId, -1)
}

func (c *Catalog) step(journeyId string, delta int) (player.PlayerInfo, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	if len(c.journeys) == 0 {
		return player.PlayerInfo{}, false
	}
	position, ok := c.index[journeyId]
	if !ok {
		return c.journeys[0], true
	}
	position = (position + delta + len(c.journeys)) % len(c.journeys)
	return c.journeys[position], true
}

type StaticLibrary struct {
	name     string
	journeys []player.PlayerInfo
}

func NewStaticLibrary(name string, journeys []player.PlayerInfo) *StaticLibrary {
	return &StaticLibrary{name: name, journeys: journeys}
}

func (l *StaticLibrary) Name() string {
	return l.name
}

func (l *StaticLibrary) Journeys() ([]player.PlayerInfo, error) {
	return l.journeys, nil
}

// ToneLibrary offers a pure tone journey for every solfeggio frequency.
type ToneLibrary struct{}

func (ToneLibrary) Name() string {
	return "tone"
}

func (ToneLibrary) Journeys() ([]player.PlayerInfo, error) {
	var journeys []player.PlayerInfo
	for _, s := range frequency.SolfeggioFrequencies {
		freq := strconv.FormatFloat(s.Frequency, 'f', -1, 64)
		journeys = append(journeys, player.PlayerInfo{
			Id:        "tone-" + freq,
			Title:     freq + " Hz " + s.Name,
			Artist:    "Solfeggio",
			Source:    ToneSource(s.Frequency),
			Frequency: s.Frequency,
		})
	}
	return journeys, nil
}

func ToneSource(freq float64) string {
	return "tone://" + strconv.FormatFloat(freq, 'f', -1, 64)
}
