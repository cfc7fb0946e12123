package config

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
	"sync"
	"time"
)

const saveDelay = 10 * time.Second

type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	backupTimer           *time.Timer
	completeStateFilename string
}

func NewServerState(completeStateFilename string) (*ServerState, error) {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
	}

	rawConfig, err := os.ReadFile(completeStateFilename)
	if err == nil {
		// Interpret state file
		err = yaml.Unmarshal(rawConfig, &serverState.serverStateConfig)
		if err != nil {
			return nil, fmt.Errorf("Unable to interpret state file: %v", err)
		}
	} else {
		// Create default state file
		logrus.Infof("Create default state file")
		serverState.SetVolume(0.6)
	}

	return serverState, nil
}

func (ss *ServerState) Volume() float64 {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.Volume
}

func (ss *ServerState) SetVolume(volume float64) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.serverStateConfig.Volume == volume {
		return
	}
	ss.serverStateConfig.Volume = volume
	ss.scheduleSave()
}

func (ss *ServerState) LastJourneyId() string {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.LastJourneyId
}

func (ss *ServerState) SetLastJourneyId(journeyId string) {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.serverStateConfig.LastJourneyId == journeyId {
		return
	}
	ss.serverStateConfig.LastJourneyId = journeyId
	ss.scheduleSave()
}

func (ss *ServerState) scheduleSave() {
	if ss.backupTimer == nil {
		ss.backupTimer = time.AfterFunc(saveDelay, func() {
			ss.lock.Lock()
			defer ss.lock.Unlock()
			ss.save()
		})
	} else {
		ss.backupTimer.Reset(saveDelay)
	}
}

func (ss *ServerState) save() {
	logrus.Infof("Save state file: %s", ss.completeStateFilename)
	rawConfig, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		logrus.Errorf("Unable to serialize state file: %v", err)
		return
	}
	err = os.WriteFile(ss.completeStateFilename, rawConfig, 0660)
	if err != nil {
		logrus.Errorf("Unable to save state file: %v", err)
	}
}

// FlushSave writes a pending change immediately.
func (ss *ServerState) FlushSave() {
	ss.lock.Lock()
	defer ss.lock.Unlock()
	if ss.backupTimer != nil {
		if ss.backupTimer.Stop() {
			ss.save()
		}
	}
}

type ServerStateConfig struct {
	Volume        float64 `yaml:"volume"`
	LastJourneyId string  `yaml:"last_journey_id"`
}
