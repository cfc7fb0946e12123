package config

import (
	"fmt"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
	"time"
)

const paramFilename = "param.yaml"
const stateFilename = "state.yaml"
const historyFilename = "history.db"
const snapshotFilename = "display.png"

type ServerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool

	*ServerParam
	*ServerState
}

func NewServerConfig(configDir string, debugMode bool, simulationMode bool) (*ServerConfig, error) {
	serverConfig := &ServerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
	}

	// Check Configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = os.MkdirAll(configDir, 0770)
			if err != nil {
				return nil, fmt.Errorf("Unable to create config folder: %v", err)
			}
		} else {
			return nil, fmt.Errorf("Unable to access config folder %s: %v", configDir, err)
		}
	}

	// Open param file
	rawConfig, err := os.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		serverConfig.ServerParam = &ServerParam{}
		err = yaml.Unmarshal(rawConfig, serverConfig.ServerParam)
		if err != nil {
			return nil, fmt.Errorf("Unable to interpret param file: %v", err)
		}
	} else {
		// Create default param file
		logrus.Infof("Create default param file")
		serverConfig.ServerParam = &ServerParam{}
		err = yaml.Unmarshal(ParamDefaultFile, serverConfig.ServerParam)
		if err != nil {
			return nil, fmt.Errorf("Unable to interpret default param file: %v", err)
		}

		if err = serverConfig.SaveParam(); err != nil {
			return nil, err
		}
	}
	serverConfig.ServerParam.applyDefaults()

	if serverConfig.ServerParam.MifasolParam != nil {
		serverConfig.ServerParam.MifasolParam.ConfigDir = serverConfig.ConfigDir
	}

	// Open state file
	serverConfig.ServerState, err = NewServerState(serverConfig.GetCompleteStateFilename())
	if err != nil {
		return nil, err
	}

	return serverConfig, nil
}

func (sp *ServerParam) applyDefaults() {
	if sp.PlayerParam.Backend == "" {
		sp.PlayerParam.Backend = SPEAKER_BACKEND
	}
	if sp.PlayerParam.SampleRate <= 0 {
		sp.PlayerParam.SampleRate = 44100
	}
	if sp.PlayerParam.ToneDuration <= 0 {
		sp.PlayerParam.ToneDuration = 900
	}
	if sp.PlayerParam.PlayTimeout <= 0 {
		sp.PlayerParam.PlayTimeout = 30
	}
	if sp.PlayerParam.Mixer == "" {
		sp.PlayerParam.Mixer = "PCM"
	}
	if sp.HistoryParam.Limit <= 0 {
		sp.HistoryParam.Limit = 50
	}
}

func (sp *ServerParam) PlayTimeout() time.Duration {
	return time.Duration(sp.PlayerParam.PlayTimeout) * time.Second
}

func (sp *ServerParam) ToneDuration() time.Duration {
	return time.Duration(sp.PlayerParam.ToneDuration) * time.Second
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) GetCompleteStateFilename() string {
	return filepath.Join(sc.ConfigDir, stateFilename)
}

func (sc *ServerConfig) GetCompleteHistoryFilename() string {
	return filepath.Join(sc.ConfigDir, historyFilename)
}

func (sc *ServerConfig) GetCompleteLibraryFolder() string {
	if sc.LibraryFolder == "" || filepath.IsAbs(sc.LibraryFolder) {
		return sc.LibraryFolder
	}
	return filepath.Join(sc.ConfigDir, sc.LibraryFolder)
}

func (sc *ServerConfig) GetCompleteSnapshotFilename() string {
	return filepath.Join(sc.ConfigDir, snapshotFilename)
}

func (sc *ServerConfig) SaveParam() error {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(*sc.ServerParam)
	if err != nil {
		return fmt.Errorf("Unable to serialize param file: %v", err)
	}
	err = os.WriteFile(sc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		return fmt.Errorf("Unable to save param file: %v", err)
	}
	return nil
}
