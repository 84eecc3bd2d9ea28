// Package mcpserver exposes transcript confidence analysis as MCP tools.
package mcpserver

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/jwulff/transcript-review/internal/api"
	"github.com/jwulff/transcript-review/internal/confidence"
	"github.com/jwulff/transcript-review/internal/observability"
	"github.com/jwulff/transcript-review/internal/transcript"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Backend is the subset of the API client the tools read from.
type Backend interface {
	ListAudioFiles(ctx context.Context) ([]api.AudioFile, error)
	Transcript(ctx context.Context, name string) (*transcript.Transcript, error)
}

// Server wraps an MCP server whose tools query the backend.
type Server struct {
	backend Backend
	mcp     *server.MCPServer
}

// New registers all tools on a fresh MCP server.
func New(backend Backend, version string) *Server {
	s := &Server{
		backend: backend,
		mcp:     server.NewMCPServer("transcript-review", version, server.WithToolCapabilities(true)),
	}

	s.mcp.AddTool(mcp.NewTool("list_audio_files",
		mcp.WithDescription("List audio files on the transcription backend with their status"),
	), s.handleListAudioFiles)

	s.mcp.AddTool(mcp.NewTool("confidence_summary",
		mcp.WithDescription("Summarize transcript confidence: segment counts per tier and segments that may be inaccurate"),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Audio file name")),
	), s.handleConfidenceSummary)

	s.mcp.AddTool(mcp.NewTool("segment_at",
		mcp.WithDescription("Return the transcript segment playing at a time"),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Audio file name")),
		mcp.WithNumber("seconds", mcp.Required(), mcp.Description("Playback position in seconds")),
	), s.handleSegmentAt)

	s.mcp.AddTool(mcp.NewTool("segments_by_tier",
		mcp.WithDescription("List the segments of one confidence tier in transcript order"),
		mcp.WithString("filename", mcp.Required(), mcp.Description("Audio file name")),
		mcp.WithString("tier", mcp.Required(), mcp.Description("Excellent, Good, Fair, or Poor")),
	), s.handleSegmentsByTier)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio serves the tools over stdin/stdout until EOF.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) handleListAudioFiles(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	files, err := s.backend.ListAudioFiles(ctx)
	if err != nil {
		lg := observability.Logger()
		lg.Error().Err(err).Msg("list audio files")
		return mcp.NewToolResultError(fmt.Sprintf("failed to list audio files: %v", err)), nil
	}
	if len(files) == 0 {
		return mcp.NewToolResultText("No audio files."), nil
	}

	var b strings.Builder
	for _, f := range files {
		fmt.Fprintf(&b, "%s\t%s\n", f.Filename, f.Status)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleConfidenceSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tr, index, errResult := s.load(ctx, name)
	if errResult != nil {
		return errResult, nil
	}
	segments := index.Segments()
	counts := confidence.BucketCounts(segments)

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", name)
	if tr.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", tr.Language)
	}
	fmt.Fprintf(&b, "Duration: %s\n", timestamp(tr.Duration))
	fmt.Fprintf(&b, "Segments: %d\n", len(segments))
	for _, t := range confidence.Tiers {
		fmt.Fprintf(&b, "%s: %d\n", t, counts[t])
	}

	var flagged []int
	for i, seg := range segments {
		if confidence.LowConfidence(seg.AvgLogprob) {
			flagged = append(flagged, i)
		}
	}
	if len(flagged) == 0 {
		b.WriteString("No segments flagged as possibly inaccurate.\n")
	} else {
		fmt.Fprintf(&b, "May be inaccurate (%d):\n", len(flagged))
		for _, i := range flagged {
			fmt.Fprintf(&b, "  %s\n", formatSegment(segments[i]))
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleSegmentAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	seconds, err := req.RequireFloat("seconds")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tr, index, errResult := s.load(ctx, name)
	if errResult != nil {
		return errResult, nil
	}

	i, ok := index.ActiveSegmentWithin(seconds, tr.Duration)
	if !ok {
		return mcp.NewToolResultText(fmt.Sprintf("No segment at %.2fs.", seconds)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Segment %d: %s", i, formatSegment(index.Segment(i)))), nil
}

func (s *Server) handleSegmentsByTier(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tierName, err := req.RequireString("tier")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tier, err := confidence.ParseTier(tierName)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	_, index, errResult := s.load(ctx, name)
	if errResult != nil {
		return errResult, nil
	}

	segments := index.Segments()
	indices := confidence.IndicesForTier(segments, tier)
	if len(indices) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No %s segments.", tier)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s segments (%d):\n", tier, len(indices))
	for _, i := range indices {
		fmt.Fprintf(&b, "  %d. %s\n", i, formatSegment(segments[i]))
	}
	return mcp.NewToolResultText(b.String()), nil
}

// load fetches and validates a transcript. On failure it returns the tool
// result to send instead.
func (s *Server) load(ctx context.Context, name string) (*transcript.Transcript, *transcript.Index, *mcp.CallToolResult) {
	logger := observability.Logger().With().Str("file", name).Logger()

	tr, err := s.backend.Transcript(ctx, name)
	if err != nil {
		logger.Error().Err(err).Msg("fetch transcript")
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("failed to load transcript for %s: %v", name, err))
	}
	index, err := transcript.Build(tr.Segments)
	if err != nil {
		logger.Error().Err(err).Msg("validate transcript")
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("transcript for %s is malformed: %v", name, err))
	}
	return tr, index, nil
}

func formatSegment(seg transcript.Segment) string {
	tier := confidence.Classify(seg.AvgLogprob)
	score := "N/A"
	if seg.AvgLogprob != nil {
		score = fmt.Sprintf("%.2f", *seg.AvgLogprob)
	}
	return fmt.Sprintf("[%s-%s] %s (%s): %s",
		timestamp(seg.Start), timestamp(seg.End), tier, score, strings.TrimSpace(seg.Text))
}

// timestamp renders seconds as mm:ss.
func timestamp(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
