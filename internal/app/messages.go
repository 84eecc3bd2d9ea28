package app

import (
	"time"

	"github.com/jwulff/transcript-review/internal/api"
	"github.com/jwulff/transcript-review/internal/transcript"
)

// FilesLoadedMsg carries the audio file listing.
type FilesLoadedMsg struct {
	Files []api.AudioFile
	Err   error
}

// HealthMsg carries the backend health check result.
type HealthMsg struct {
	Health api.HealthResponse
	Err    error
}

// TranscribeStartedMsg carries the response to a transcription request.
type TranscribeStartedMsg struct {
	Filename string
	Err      error
}

// StatusMsg carries one job status poll result.
type StatusMsg struct {
	Filename string
	Status   api.StatusResponse
	Err      error
}

// PollTickMsg triggers a round of status requests. Ticks from an older
// generation are dropped.
type PollTickMsg struct {
	Gen int
}

// TranscriptLoadedMsg carries a transcript for the player view.
type TranscriptLoadedMsg struct {
	File       api.AudioFile
	Transcript *transcript.Transcript
	Err        error

	// Cached is set when the backend failed and the local copy was used.
	Cached    bool
	FetchedAt time.Time

	// Resume is the saved playback position, if any.
	Resume    float64
	HasResume bool
}

// PlaybackTickMsg advances the media clock. Ticks from an older player
// session are dropped.
type PlaybackTickMsg struct {
	Gen int
}

// ClearNoticeMsg clears the notification with the given ID.
type ClearNoticeMsg struct {
	ID int
}
