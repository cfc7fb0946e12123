package srv

import (
	"github.com/jypelle/solfeggio/internal/console"
	"github.com/sirupsen/logrus"
	"os"
)

// RunConsole drives the player from an interactive shell instead of the devices.
func (s *ServerApp) RunConsole() error {
	logrus.Debugf("Starting solfeggio console ...")

	s.player.Start()
	if s.history != nil {
		s.disposers = append(s.disposers, s.player.RegisterVisual(s.history))
	}
	if s.analyzerDevice != nil {
		s.analyzerDevice.Start()
	}

	shell := console.NewConsole(s.player, s.catalog, os.Stdout, s.PlayTimeout())
	err := shell.Run()
	shell.Close()

	for _, dispose := range s.disposers {
		dispose()
	}
	s.SetVolume(s.player.GetVolume())
	s.player.Stop()
	if s.analyzerDevice != nil {
		s.analyzerDevice.Stop()
	}
	if s.history != nil {
		s.history.Close()
	}
	s.ServerConfig.ServerState.FlushSave()

	return err
}
