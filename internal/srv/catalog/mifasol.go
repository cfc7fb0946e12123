package catalog

import (
	"fmt"
	"github.com/jypelle/mifasol/restApiV1"
	"github.com/jypelle/mifasol/restClientV1"
	"github.com/jypelle/solfeggio/internal/frequency"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/jypelle/solfeggio/internal/srv/config"
	"github.com/sirupsen/logrus"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

const MIFASOL_SCHEME = "mifasol"

// A "528 Hz" or "528hz" mention in a song name gives the journey frequency
var hzPattern = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*hz`)

type contentReader func() (io.ReadCloser, error)

// MifasolLibrary imports the songs of the favorite playlists of a mifasol user.
// Their sources use the mifasol:// scheme, opened by OpenContent.
type MifasolLibrary struct {
	lock           sync.RWMutex
	mifasolClient  *restClientV1.RestClient
	playlistPrefix string
	contents       map[string]contentReader
}

func NewMifasolLibrary(mifasolParam *config.MifasolParam) (*MifasolLibrary, error) {
	mifasolClient, err := restClientV1.NewRestClient(mifasolParam, false)
	if err != nil {
		return nil, fmt.Errorf("Unable to create mifasol client: %v", err)
	}

	return &MifasolLibrary{
		mifasolClient:  mifasolClient,
		playlistPrefix: mifasolParam.PlaylistPrefix,
		contents:       make(map[string]contentReader),
	}, nil
}

func (l *MifasolLibrary) Name() string {
	return MIFASOL_SCHEME
}

func (l *MifasolLibrary) Journeys() ([]player.PlayerInfo, error) {
	userId := l.mifasolClient.UserId()
	playlistFilterOrder := restApiV1.PlaylistFilterOrderByName
	playlists, cliErr := l.mifasolClient.ReadPlaylists(&restApiV1.PlaylistFilter{
		FavoriteUserId: &userId,
		OrderBy:        &playlistFilterOrder,
	})
	if cliErr != nil {
		return nil, fmt.Errorf("Unable to read mifasol playlists: %v", cliErr)
	}

	var journeys []player.PlayerInfo
	contents := make(map[string]contentReader)

	for _, playlist := range playlists {
		if !strings.HasPrefix(playlist.Name, l.playlistPrefix) {
			continue
		}
		for _, songId := range playlist.SongIds {
			songId := songId
			song, cliErr := l.mifasolClient.ReadSong(songId)
			if cliErr != nil {
				logrus.Warnf("Unknown song %v on playlist %s", songId, playlist.Name)
				continue
			}

			key := fmt.Sprint(songId)
			contents[key] = func() (io.ReadCloser, error) {
				songContent, _, cliErr := l.mifasolClient.ReadSongContent(songId)
				if cliErr != nil {
					return nil, fmt.Errorf("Unable to read mifasol song %v: %v", songId, cliErr)
				}
				return songContent, nil
			}

			journey := player.PlayerInfo{
				Id:     MIFASOL_SCHEME + "-" + key,
				Title:  song.Name,
				Artist: playlist.Name,
				Source: MIFASOL_SCHEME + "://" + url.PathEscape(key),
			}
			journey.Frequency = FrequencyFromName(song.Name)
			if journey.Frequency > 0 {
				journey.Chakra = frequency.FrequencyToChakra(journey.Frequency)
			}
			journeys = append(journeys, journey)
		}
	}

	l.lock.Lock()
	l.contents = contents
	l.lock.Unlock()

	return journeys, nil
}

// OpenContent streams the song behind a mifasol:// source.
func (l *MifasolLibrary) OpenContent(source *url.URL) (io.ReadCloser, error) {
	key, err := url.PathUnescape(source.Host)
	if err != nil {
		return nil, err
	}

	l.lock.RLock()
	reader, ok := l.contents[key]
	l.lock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("Song %s is not part of the mifasol library", key)
	}
	return reader()
}

// FrequencyFromName extracts the first "<n> Hz" mention of a title, 0 if none.
func FrequencyFromName(name string) float64 {
	match := hzPattern.FindStringSubmatch(name)
	if match == nil {
		return 0
	}
	freq, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0
	}
	return freq
}
