package store

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwulff/transcript-review/internal/transcript"

	_ "modernc.org/sqlite"
)

// createTestStore opens an in-memory SQLite store with the cache schema.
func createTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	s, err := newStore(db)
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func lp(v float64) *float64 { return &v }

func TestSaveAndLoadTranscript(t *testing.T) {
	s := createTestStore(t)
	fixed := time.Unix(1700000000, 0)
	s.now = func() time.Time { return fixed }

	tr := &transcript.Transcript{
		Language: "en",
		Duration: 14,
		Segments: []transcript.Segment{
			{Start: 0, End: 5, Text: "a", AvgLogprob: lp(-0.1)},
			{Start: 5, End: 9, Text: "b"},
		},
	}
	if err := s.SaveTranscript("call.mp3", tr); err != nil {
		t.Fatalf("SaveTranscript: %v", err)
	}

	cached, err := s.Transcript("call.mp3")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if cached == nil {
		t.Fatal("expected cached transcript, got nil")
	}
	if cached.Transcript.Language != "en" || len(cached.Transcript.Segments) != 2 {
		t.Errorf("cached = %+v", cached.Transcript)
	}
	if cached.Transcript.Segments[1].AvgLogprob != nil {
		t.Error("missing score should stay missing")
	}
	if !cached.FetchedAt.Equal(fixed) {
		t.Errorf("FetchedAt = %v, want %v", cached.FetchedAt, fixed)
	}
}

func TestSaveTranscriptReplaces(t *testing.T) {
	s := createTestStore(t)

	s.SaveTranscript("call.mp3", &transcript.Transcript{Language: "en"})
	s.SaveTranscript("call.mp3", &transcript.Transcript{Language: "de"})

	cached, err := s.Transcript("call.mp3")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if cached.Transcript.Language != "de" {
		t.Errorf("Language = %q, want de", cached.Transcript.Language)
	}
}

func TestTranscriptMissing(t *testing.T) {
	s := createTestStore(t)

	cached, err := s.Transcript("nonexistent.mp3")
	if err != nil {
		t.Fatalf("Transcript: %v", err)
	}
	if cached != nil {
		t.Errorf("expected nil, got %+v", cached)
	}
}

func TestPositions(t *testing.T) {
	s := createTestStore(t)

	p, err := s.Position("call.mp3")
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil position, got %+v", p)
	}

	if err := s.SavePosition("call.mp3", 42.5); err != nil {
		t.Fatalf("SavePosition: %v", err)
	}
	if err := s.SavePosition("call.mp3", 61.25); err != nil {
		t.Fatalf("SavePosition: %v", err)
	}

	p, err = s.Position("call.mp3")
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	if p == nil || p.Seconds != 61.25 {
		t.Errorf("position = %+v, want 61.25", p)
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.sqlite")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.SavePosition("a.mp3", 1); err != nil {
		t.Fatalf("SavePosition: %v", err)
	}
}
