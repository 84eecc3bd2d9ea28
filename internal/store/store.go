package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jwulff/transcript-review/internal/transcript"

	_ "modernc.org/sqlite"
)

const schema = `
	CREATE TABLE IF NOT EXISTS transcripts (
		filename TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		fetchedAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS positions (
		filename TEXT PRIMARY KEY,
		position REAL NOT NULL,
		updatedAt REAL NOT NULL
	);
`

// Store provides access to the local cache database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the cache at path with WAL enabled.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return newStore(db)
}

func newStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTranscript stores tr as the cached copy for filename.
func (s *Store) SaveTranscript(filename string, tr *transcript.Transcript) error {
	body, err := json.Marshal(tr)
	if err != nil {
		return fmt.Errorf("marshal transcript: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO transcripts (filename, body, fetchedAt) VALUES (?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET body = excluded.body, fetchedAt = excluded.fetchedAt
	`, filename, string(body), unixFromTime(s.now()))
	if err != nil {
		return fmt.Errorf("save transcript: %w", err)
	}
	return nil
}

// Transcript returns the cached transcript for filename, or nil if none.
func (s *Store) Transcript(filename string) (*CachedTranscript, error) {
	row := s.db.QueryRow(`
		SELECT body, fetchedAt FROM transcripts WHERE filename = ?
	`, filename)

	var body string
	var fetchedAt float64
	if err := row.Scan(&body, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	var tr transcript.Transcript
	if err := json.Unmarshal([]byte(body), &tr); err != nil {
		return nil, fmt.Errorf("unmarshal cached transcript: %w", err)
	}
	return &CachedTranscript{
		Filename:   filename,
		Transcript: &tr,
		FetchedAt:  timeFromUnix(fetchedAt),
	}, nil
}

// SavePosition records where playback of filename stopped.
func (s *Store) SavePosition(filename string, seconds float64) error {
	_, err := s.db.Exec(`
		INSERT INTO positions (filename, position, updatedAt) VALUES (?, ?, ?)
		ON CONFLICT(filename) DO UPDATE SET position = excluded.position, updatedAt = excluded.updatedAt
	`, filename, seconds, unixFromTime(s.now()))
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}
	return nil
}

// Position returns the saved playback position for filename, or nil if none.
func (s *Store) Position(filename string) (*Position, error) {
	row := s.db.QueryRow(`
		SELECT position, updatedAt FROM positions WHERE filename = ?
	`, filename)

	p := Position{Filename: filename}
	var updatedAt float64
	if err := row.Scan(&p.Seconds, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan position: %w", err)
	}
	p.UpdatedAt = timeFromUnix(updatedAt)
	return &p, nil
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
