// Package api provides the client and wire types for the transcription
// backend's REST API.
package api

// Job statuses reported by the backend.
const (
	StatusNotProcessed = "not_processed"
	StatusProcessing   = "processing"
	StatusCompleted    = "completed"
	StatusError        = "error"
)

// AudioFile is one entry of the audio file listing.
type AudioFile struct {
	Filename      string   `json:"filename"`
	Size          int64    `json:"size"`
	Duration      *float64 `json:"duration"`
	Status        string   `json:"status"`
	HasTranscript bool     `json:"has_transcript"`
}

// AudioFilesResponse is returned by GET /audio-files.
type AudioFilesResponse struct {
	AudioFiles []AudioFile `json:"audio_files"`
}

// TranscribeResponse is returned by POST /transcribe/:name.
type TranscribeResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

// StatusResponse is returned by GET /status/:name.
type StatusResponse struct {
	Status   string  `json:"status"`
	Filename string  `json:"filename,omitempty"`
	Error    string  `json:"error,omitempty"`
	Progress float64 `json:"progress,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status       string `json:"status,omitempty"`
	ModelsLoaded bool   `json:"models_loaded"`
}

// errorBody is the backend's error envelope.
type errorBody struct {
	Error string `json:"error"`
}
