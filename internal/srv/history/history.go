package history

import (
	"database/sql"
	"fmt"
	"github.com/google/uuid"
	"github.com/jypelle/solfeggio/internal/player"
	"github.com/sirupsen/logrus"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

type Play struct {
	Id        string            `json:"id"`
	PlayedAt  time.Time         `json:"played_at"`
	Journey   player.PlayerInfo `json:"journey"`
	SourceUrl string            `json:"source_url"`
}

// History keeps the last started journeys in a sqlite database. It is a visual
// registration of the player: every successful play is recorded.
type History struct {
	lock  sync.Mutex
	db    *sql.DB
	keep  int64
	clock func() time.Time
}

func NewHistory(filename string, keep int64) (*History, error) {
	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("Unable to open history database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS play (
			id TEXT PRIMARY KEY,
			played_at INTEGER NOT NULL,
			journey_id TEXT NOT NULL,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			source TEXT NOT NULL,
			chakra TEXT NOT NULL,
			frequency REAL NOT NULL,
			source_url TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("Unable to create history table: %v", err)
	}

	return &History{db: db, keep: keep, clock: time.Now}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

func (h *History) SetAudioSource(url string, info player.PlayerInfo) {
	if _, err := h.Record(url, info); err != nil {
		logrus.Warnf("Unable to record %s in history: %v", url, err)
	}
}

// Record stores a started journey and drops the oldest entries beyond the kept count.
func (h *History) Record(url string, info player.PlayerInfo) (Play, error) {
	h.lock.Lock()
	defer h.lock.Unlock()

	play := Play{
		Id:        uuid.NewString(),
		PlayedAt:  h.clock(),
		Journey:   info,
		SourceUrl: url,
	}

	_, err := h.db.Exec(`
		INSERT INTO play (id, played_at, journey_id, title, artist, source, chakra, frequency, source_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, play.Id, play.PlayedAt.UnixNano(), info.Id, info.Title, info.Artist, info.Source, info.Chakra, info.Frequency, url)
	if err != nil {
		return Play{}, err
	}

	if h.keep > 0 {
		_, err = h.db.Exec(`
			DELETE FROM play WHERE id NOT IN (
				SELECT id FROM play ORDER BY played_at DESC, rowid DESC LIMIT ?
			)
		`, h.keep)
		if err != nil {
			return Play{}, err
		}
	}

	logrus.Debugf("Play of %s recorded", url)
	return play, nil
}

// Recent returns up to limit plays, most recent first.
func (h *History) Recent(limit int64) ([]Play, error) {
	rows, err := h.db.Query(`
		SELECT id, played_at, journey_id, title, artist, source, chakra, frequency, source_url
		FROM play
		ORDER BY played_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plays := []Play{}
	for rows.Next() {
		var play Play
		var playedAt int64
		err = rows.Scan(&play.Id, &playedAt, &play.Journey.Id, &play.Journey.Title, &play.Journey.Artist,
			&play.Journey.Source, &play.Journey.Chakra, &play.Journey.Frequency, &play.SourceUrl)
		if err != nil {
			return nil, err
		}
		play.PlayedAt = time.Unix(0, playedAt)
		plays = append(plays, play)
	}
	return plays, rows.Err()
}
