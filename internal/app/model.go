package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/jwulff/transcript-review/internal/api"
	"github.com/jwulff/transcript-review/internal/confidence"
	"github.com/jwulff/transcript-review/internal/navigation"
	"github.com/jwulff/transcript-review/internal/observability"
	"github.com/jwulff/transcript-review/internal/playback"
	"github.com/jwulff/transcript-review/internal/store"
	"github.com/jwulff/transcript-review/internal/transcript"
	"github.com/jwulff/transcript-review/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

// Backend is the subset of the API client the TUI uses.
type Backend interface {
	ListAudioFiles(ctx context.Context) ([]api.AudioFile, error)
	Transcribe(ctx context.Context, name string) (api.TranscribeResponse, error)
	Transcript(ctx context.Context, name string) (*transcript.Transcript, error)
	Status(ctx context.Context, name string) (api.StatusResponse, error)
	Health(ctx context.Context) (api.HealthResponse, error)
	AudioURL(name string) string
}

// Cache stores transcripts and playback positions locally.
type Cache interface {
	SaveTranscript(filename string, tr *transcript.Transcript) error
	Transcript(filename string) (*store.CachedTranscript, error)
	SavePosition(filename string, seconds float64) error
	Position(filename string) (*store.Position, error)
}

// Options configures timers and audio output.
type Options struct {
	PollInterval time.Duration
	PlaybackTick time.Duration
	SeekStep     time.Duration

	// NewSink creates audio output for a stream URL. Nil plays silently.
	NewSink func(url string) (playback.Sink, error)
	// Now overrides the wall clock used for playback.
	Now func() time.Time
}

// View is the screen currently shown.
type View int

const (
	ViewList View = iota
	ViewPlayer
)

// Severity of a notification.
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

// Notice is a transient notification shown above the footer.
type Notice struct {
	ID       int
	Text     string
	Severity Severity
}

const noticeTimeout = 6 * time.Second

// Model is the root bubbletea model for the review TUI.
type Model struct {
	backend Backend
	cache   Cache
	opts    Options

	view View

	// Listing
	files      []api.AudioFile
	selected   int
	loading    bool
	listError  string
	opening    string
	processing []string

	// Status poll, scoped to the listing view.
	polling bool
	pollGen int

	// Player
	player  *player
	playGen int

	notice    Notice
	noticeSeq int

	spinner spinner.Model

	width  int
	height int
}

// New creates a Model in the listing view.
func New(backend Backend, cache Cache, opts Options) Model {
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.PlaybackTick <= 0 {
		opts.PlaybackTick = 250 * time.Millisecond
	}
	if opts.SeekStep <= 0 {
		opts.SeekStep = 5 * time.Second
	}
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(ui.SpinnerStyle))
	return Model{
		backend: backend,
		cache:   cache,
		opts:    opts,
		loading: true,
		spinner: s,
	}
}

// Init loads the listing and checks backend health.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadFilesCmd(m.backend),
		healthCmd(m.backend),
		m.spinner.Tick,
	)
}

func loadFilesCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		files, err := b.ListAudioFiles(context.Background())
		return FilesLoadedMsg{Files: files, Err: err}
	}
}

func healthCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		h, err := b.Health(context.Background())
		return HealthMsg{Health: h, Err: err}
	}
}

func transcribeCmd(b Backend, name string) tea.Cmd {
	return func() tea.Msg {
		_, err := b.Transcribe(context.Background(), name)
		return TranscribeStartedMsg{Filename: name, Err: err}
	}
}

func statusCmd(b Backend, name string) tea.Cmd {
	return func() tea.Msg {
		observability.RecordStatusPoll()
		st, err := b.Status(context.Background(), name)
		return StatusMsg{Filename: name, Status: st, Err: err}
	}
}

func pollTickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return PollTickMsg{Gen: gen}
	})
}

func playbackTickCmd(interval time.Duration, gen int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return PlaybackTickMsg{Gen: gen}
	})
}

func clearNoticeCmd(id int) tea.Cmd {
	return tea.Tick(noticeTimeout, func(time.Time) tea.Msg {
		return ClearNoticeMsg{ID: id}
	})
}

// loadTranscriptCmd fetches a transcript, refreshing the cache on success and
// falling back to it when the backend is unreachable.
func loadTranscriptCmd(b Backend, cache Cache, file api.AudioFile) tea.Cmd {
	return func() tea.Msg {
		logger := observability.Logger().With().Str("file", file.Filename).Logger()
		msg := TranscriptLoadedMsg{File: file}

		tr, err := b.Transcript(context.Background(), file.Filename)
		switch {
		case err == nil:
			msg.Transcript = tr
			if cache != nil {
				if err := cache.SaveTranscript(file.Filename, tr); err != nil {
					logger.Warn().Err(err).Msg("cache transcript")
				}
			}
		case cache != nil && !isClientError(err):
			cached, cerr := cache.Transcript(file.Filename)
			if cerr != nil {
				logger.Warn().Err(cerr).Msg("read cached transcript")
			}
			if cached == nil {
				msg.Err = err
				break
			}
			logger.Warn().Err(err).Msg("backend unavailable, using cached transcript")
			msg.Transcript = cached.Transcript
			msg.Cached = true
			msg.FetchedAt = cached.FetchedAt
		default:
			msg.Err = err
		}

		if msg.Transcript != nil && cache != nil {
			pos, err := cache.Position(file.Filename)
			if err != nil {
				logger.Warn().Err(err).Msg("read playback position")
			} else if pos != nil {
				msg.Resume = pos.Seconds
				msg.HasResume = true
			}
		}
		return msg
	}
}

func savePositionCmd(cache Cache, name string, seconds float64) tea.Cmd {
	if cache == nil {
		return nil
	}
	return func() tea.Msg {
		if err := cache.SavePosition(name, seconds); err != nil {
			lg := observability.Logger()
			lg.Warn().Err(err).Str("file", name).Msg("save playback position")
		}
		return nil
	}
}

func isClientError(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr) && apiErr.StatusCode < 500
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.player != nil {
			m.player.scrollTo(m.player.selected)
			m.resolveScroll()
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FilesLoadedMsg:
		m.loading = false
		if msg.Err != nil {
			lg := observability.Logger()
			lg.Error().Err(msg.Err).Msg("load audio files")
			m.listError = "Failed to load audio files. Make sure the backend is running."
			return m, nil
		}
		m.listError = ""
		m.files = msg.Files
		for _, f := range m.files {
			switch f.Status {
			case api.StatusProcessing:
				m.addProcessing(f.Filename)
			case api.StatusCompleted, api.StatusError:
				m.removeProcessing(f.Filename)
			}
		}
		if m.selected >= len(m.files) {
			m.selected = max(0, len(m.files)-1)
		}
		return m, m.startPoll()

	case HealthMsg:
		if msg.Err != nil {
			lg := observability.Logger()
			lg.Error().Err(msg.Err).Msg("backend health check")
			return m, m.setNotice("Unable to connect to backend. Make sure it is running.", SeverityError)
		}
		if !msg.Health.ModelsLoaded {
			return m, m.setNotice("Backend is starting up, models are loading...", SeverityWarning)
		}
		return m, nil

	case TranscribeStartedMsg:
		if msg.Err != nil {
			lg := observability.Logger()
			lg.Error().Err(msg.Err).Str("file", msg.Filename).Msg("start transcription")
			m.removeProcessing(msg.Filename)
			return m, m.setNotice(fmt.Sprintf("Failed to start transcription: %s", errorText(msg.Err)), SeverityError)
		}
		m.setFileStatus(msg.Filename, api.StatusProcessing, false)
		return m, m.setNotice(
			fmt.Sprintf("Transcription started for %s. This may take 20-35 minutes.", msg.Filename),
			SeverityInfo,
		)

	case PollTickMsg:
		if !m.polling || msg.Gen != m.pollGen {
			return m, nil
		}
		if m.view != ViewList || len(m.processing) == 0 {
			m.stopPoll()
			return m, nil
		}
		// One request per pending file per tick; earlier requests may still be
		// in flight.
		cmds := make([]tea.Cmd, 0, len(m.processing)+1)
		for _, name := range m.processing {
			cmds = append(cmds, statusCmd(m.backend, name))
		}
		cmds = append(cmds, pollTickCmd(m.opts.PollInterval, m.pollGen))
		return m, tea.Batch(cmds...)

	case StatusMsg:
		return m.handleStatus(msg)

	case TranscriptLoadedMsg:
		return m.openPlayer(msg)

	case PlaybackTickMsg:
		if m.player == nil || msg.Gen != m.player.gen {
			return m, nil
		}
		m.player.clock.Tick()
		m.resolveScroll()
		return m, playbackTickCmd(m.opts.PlaybackTick, m.player.gen)

	case ClearNoticeMsg:
		if msg.ID == m.notice.ID {
			m.notice = Notice{}
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleStatus(msg StatusMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		lg := observability.Logger()
		lg.Warn().Err(msg.Err).Str("file", msg.Filename).Msg("check transcription status")
		return m, nil
	}
	switch msg.Status.Status {
	case api.StatusCompleted:
		m.removeProcessing(msg.Filename)
		m.setFileStatus(msg.Filename, api.StatusCompleted, true)
		return m, m.setNotice(fmt.Sprintf("Transcription completed for %s!", msg.Filename), SeveritySuccess)
	case api.StatusError:
		m.removeProcessing(msg.Filename)
		m.setFileStatus(msg.Filename, api.StatusError, false)
		return m, m.setNotice(
			fmt.Sprintf("Transcription failed for %s: %s", msg.Filename, msg.Status.Error),
			SeverityError,
		)
	}
	return m, nil
}

// openPlayer switches to the player view once a transcript has loaded.
func (m Model) openPlayer(msg TranscriptLoadedMsg) (tea.Model, tea.Cmd) {
	m.opening = ""
	logger := observability.Logger().With().Str("file", msg.File.Filename).Logger()

	if msg.Err != nil || msg.Transcript == nil {
		logger.Error().Err(msg.Err).Msg("load transcript")
		return m, m.setNotice("Failed to load transcript", SeverityError)
	}
	if m.view != ViewList {
		return m, nil
	}

	index, err := transcript.Build(msg.Transcript.Segments)
	if err != nil {
		logger.Error().Err(err).Msg("validate transcript")
		return m, m.setNotice(fmt.Sprintf("Transcript for %s is malformed: %v", msg.File.Filename, err), SeverityError)
	}

	var cmds []tea.Cmd
	var sink playback.Sink
	if m.opts.NewSink != nil {
		s, err := m.opts.NewSink(m.backend.AudioURL(msg.File.Filename))
		if err != nil {
			logger.Warn().Err(err).Msg("audio output unavailable")
			cmds = append(cmds, m.setNotice(fmt.Sprintf("Audio output unavailable: %v", err), SeverityWarning))
		} else {
			sink = s
		}
	}

	clock := playback.NewClock(sink, m.opts.Now)
	clock.LoadMetadata(mediaDuration(msg.File, msg.Transcript, index))

	m.stopPoll()
	m.playGen++
	m.player = newPlayer(msg.File, msg.Transcript, index, clock, m.playGen)
	m.view = ViewPlayer

	if msg.HasResume {
		clock.Seek(msg.Resume)
	}
	m.resolveScroll()

	if msg.Cached {
		cmds = append(cmds, m.setNotice(
			fmt.Sprintf("Backend unavailable, showing cached transcript from %s", msg.FetchedAt.Format("Jan 2 15:04")),
			SeverityWarning,
		))
	}

	logger.Info().Int("segments", index.Len()).Bool("cached", msg.Cached).Msg("transcript opened")
	cmds = append(cmds, playbackTickCmd(m.opts.PlaybackTick, m.player.gen))
	return m, tea.Batch(cmds...)
}

// closePlayer returns to the listing and refreshes it.
func (m Model) closePlayer() (Model, tea.Cmd) {
	p := m.player
	if p == nil {
		return m, nil
	}
	pos := p.clock.CurrentTime()
	p.close()
	m.player = nil
	m.view = ViewList
	m.loading = true
	return m, tea.Batch(
		savePositionCmd(m.cache, p.file.Filename, pos),
		loadFilesCmd(m.backend),
		m.startPoll(),
	)
}

// mediaDuration prefers the listing's audio duration, then the transcript's,
// then the end of the last segment.
func mediaDuration(file api.AudioFile, tr *transcript.Transcript, index *transcript.Index) float64 {
	if file.Duration != nil && *file.Duration > 0 {
		return *file.Duration
	}
	if tr.Duration > 0 {
		return tr.Duration
	}
	if n := index.Len(); n > 0 {
		return index.Segment(n - 1).End
	}
	return 0
}

// startPoll begins the status poll if files are processing and the listing
// is shown. It is a no-op while a poll is already running.
func (m *Model) startPoll() tea.Cmd {
	if m.polling || m.view != ViewList || len(m.processing) == 0 {
		return nil
	}
	m.polling = true
	m.pollGen++
	return pollTickCmd(m.opts.PollInterval, m.pollGen)
}

// stopPoll cancels the running poll; its pending tick becomes stale.
func (m *Model) stopPoll() {
	m.polling = false
	m.pollGen++
}

func (m *Model) setNotice(text string, sev Severity) tea.Cmd {
	m.noticeSeq++
	m.notice = Notice{ID: m.noticeSeq, Text: text, Severity: sev}
	return clearNoticeCmd(m.notice.ID)
}

func (m *Model) addProcessing(name string) {
	if m.isProcessing(name) {
		return
	}
	m.processing = append(m.processing, name)
}

func (m *Model) removeProcessing(name string) {
	out := m.processing[:0:0]
	for _, f := range m.processing {
		if f != name {
			out = append(out, f)
		}
	}
	m.processing = out
}

func (m Model) isProcessing(name string) bool {
	for _, f := range m.processing {
		if f == name {
			return true
		}
	}
	return false
}

func (m *Model) setFileStatus(name, status string, hasTranscript bool) {
	for i := range m.files {
		if m.files[i].Filename == name {
			m.files[i].Status = status
			if hasTranscript {
				m.files[i].HasTranscript = true
			}
		}
	}
}

func errorText(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}

// handleKey processes key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyQuit, KeyQuitUpper, KeyCtrlC:
		if m.player != nil {
			pos := m.player.clock.CurrentTime()
			m.player.close()
			if m.cache != nil {
				if err := m.cache.SavePosition(m.player.file.Filename, pos); err != nil {
					lg := observability.Logger()
					lg.Warn().Err(err).Msg("save playback position")
				}
			}
		}
		return m, tea.Quit
	}

	if m.view == ViewPlayer && m.player != nil {
		return m.handlePlayerKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyJ, KeyDown:
		if m.selected < len(m.files)-1 {
			m.selected++
		}
		return m, nil

	case KeyK, KeyUp:
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case KeyRefresh:
		m.loading = true
		return m, loadFilesCmd(m.backend)

	case KeyEnter:
		if m.selected >= len(m.files) || m.opening != "" {
			return m, nil
		}
		f := m.files[m.selected]
		if f.Status != api.StatusCompleted || m.isProcessing(f.Filename) {
			return m, nil
		}
		m.opening = f.Filename
		return m, loadTranscriptCmd(m.backend, m.cache, f)

	case KeyTranscribe:
		if m.selected >= len(m.files) {
			return m, nil
		}
		f := m.files[m.selected]
		if f.Status != api.StatusNotProcessed || m.isProcessing(f.Filename) {
			return m, nil
		}
		m.addProcessing(f.Filename)
		return m, tea.Batch(transcribeCmd(m.backend, f.Filename), m.startPoll())
	}
	return m, nil
}

func (m Model) handlePlayerKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.player

	switch msg.String() {
	case KeyBack, KeyBackAlt:
		return m.closePlayer()

	case KeySpace:
		p.clock.Toggle()

	case KeyExcellent:
		m.navigate(p.cursor.SelectTier(confidence.Excellent))
	case KeyGood:
		m.navigate(p.cursor.SelectTier(confidence.Good))
	case KeyFair:
		m.navigate(p.cursor.SelectTier(confidence.Fair))
	case KeyPoor:
		m.navigate(p.cursor.SelectTier(confidence.Poor))
	case KeyNext:
		m.navigate(p.cursor.Next())
	case KeyPrevious:
		m.navigate(p.cursor.Previous())
	case KeyClear:
		p.cursor.Clear()

	case KeyJ, KeyDown:
		if p.selected < len(p.segments)-1 {
			p.selected++
			m.ensureSelectedVisible()
		}
	case KeyK, KeyUp:
		if p.selected > 0 {
			p.selected--
			m.ensureSelectedVisible()
		}

	case KeyEnter:
		if p.clickSegment() {
			observability.RecordSeek("segment")
		}

	case KeyLeft:
		p.clock.Seek(p.clock.CurrentTime() - m.opts.SeekStep.Seconds())
		observability.RecordSeek("step")
	case KeyRight:
		p.clock.Seek(p.clock.CurrentTime() + m.opts.SeekStep.Seconds())
		observability.RecordSeek("step")
	}

	m.resolveScroll()
	return m, nil
}

func (m Model) navigate(effects []navigation.Effect) {
	if m.player.applyNavigation(effects) {
		observability.RecordSeek("navigation")
	}
}
