package catalog

import (
	"fmt"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/player"
	"os"
	"path/filepath"
	"strings"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".wav":  true,
}

// FolderLibrary lists the audio files of a folder. Files of a sub folder get the sub
// folder name as artist.
type FolderLibrary struct {
	folder string
}

func NewFolderLibrary(folder string) *FolderLibrary {
	return &FolderLibrary{folder: folder}
}

func (l *FolderLibrary) Name() string {
	return "folder"
}

func (l *FolderLibrary) Journeys() ([]player.PlayerInfo, error) {
	entries, err := os.ReadDir(l.folder)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("Unable to access library folder: %v", err)
	}

	var journeys []player.PlayerInfo
	for _, entry := range entries {
		if entry.IsDir() {
			subEntries, err := os.ReadDir(filepath.Join(l.folder, entry.Name()))
			if err != nil {
				return nil, fmt.Errorf("Unable to access library folder %s: %v", entry.Name(), err)
			}
			for _, subEntry := range subEntries {
				if !subEntry.IsDir() {
					journeys = l.appendFile(journeys, entry.Name(), subEntry.Name())
				}
			}
			continue
		}
		journeys = l.appendFile(journeys, "", entry.Name())
	}
	return journeys, nil
}

func (l *FolderLibrary) appendFile(journeys []player.PlayerInfo, artist string, filename string) []player.PlayerInfo {
	ext := strings.ToLower(filepath.Ext(filename))
	if !audioExtensions[ext] {
		return journeys
	}
	title := strings.TrimSuffix(filename, filepath.Ext(filename))
	path := filepath.Join(l.folder, artist, filename)

	journey := player.PlayerInfo{
		Id:        "folder-" + strings.ReplaceAll(filepath.ToSlash(filepath.Join(artist, title)), "/", "-"),
		Title:     title,
		Artist:    artist,
		Source:    "file://" + filepath.ToSlash(path),
		Frequency: FrequencyFromName(title),
	}
	if journey.Frequency > 0 {
		journey.Chakra = frequency.FrequencyToChakra(journey.Frequency)
	}
	return append(journeys, journey)
}
