// Package store keeps a local SQLite cache of fetched transcripts and
// playback positions.
package store

import (
	"time"

	"github.com/jwulff/transcript-review/internal/transcript"
)

// CachedTranscript is a transcript saved after a successful fetch.
type CachedTranscript struct {
	Filename   string
	Transcript *transcript.Transcript
	FetchedAt  time.Time
}

// Position is where playback of a file was left.
type Position struct {
	Filename  string
	Seconds   float64
	UpdatedAt time.Time
}
