package app

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/jwulff/transcript-review/internal/api"
	"github.com/jwulff/transcript-review/internal/confidence"
	"github.com/jwulff/transcript-review/internal/ui"
)

// Lines of player chrome around the transcript panel: title, metadata,
// divider, transport, progress, divider, tier bar, navigation, divider,
// divider, notice, footer.
const playerChromeLines = 12

// Lines of listing chrome: title, subtitle, divider, divider, notice, footer.
const listChromeLines = 6

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}
	if m.view == ViewPlayer && m.player != nil {
		return m.renderPlayer()
	}
	return m.renderList()
}

func (m Model) divider() string {
	return ui.DividerStyle.Render(strings.Repeat("─", m.width))
}

// Listing

func (m Model) renderList() string {
	var sections []string

	sections = append(sections, ui.TitleStyle.Render("TRANSCRIPT REVIEW"))
	sections = append(sections, ui.SubtitleStyle.Render("Audio files and their transcription status"))
	sections = append(sections, m.divider())
	sections = append(sections, m.renderFiles(m.listHeight()))
	sections = append(sections, m.divider())
	sections = append(sections, m.renderNotice())
	sections = append(sections, m.renderListFooter())

	return strings.Join(sections, "\n")
}

func (m Model) listHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(4, m.height-listChromeLines)
}

func (m Model) renderFiles(height int) string {
	var lines []string

	switch {
	case m.listError != "":
		lines = append(lines, "")
		lines = append(lines, ui.NoticeErrorStyle.Render("  "+m.listError))
		lines = append(lines, ui.DimStyle.Render("  Press r to retry"))
	case m.loading && len(m.files) == 0:
		lines = append(lines, "")
		lines = append(lines, "  "+m.spinner.View()+" Loading audio files...")
	case len(m.files) == 0:
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  No audio files found."))
	default:
		// Two lines per file, windowed around the selection.
		perPage := max(1, height/2)
		start := 0
		if m.selected >= perPage {
			start = m.selected - perPage + 1
		}
		end := min(len(m.files), start+perPage)
		for i := start; i < end; i++ {
			lines = append(lines, m.renderFile(i)...)
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderFile(i int) []string {
	f := m.files[i]

	var name string
	if i == m.selected {
		name = ui.SelectedStyle.Render("> " + f.Filename)
	} else {
		name = "  " + f.Filename
	}
	name = truncateToWidth(name, m.width)

	details := fmt.Sprintf("    %s  %s  %s",
		ui.DimStyle.Render("Duration: "+formatDuration(f.Duration)),
		ui.DimStyle.Render(fmt.Sprintf("Size: %.2f MB", float64(f.Size)/(1024*1024))),
		m.renderStatusChip(f),
	)

	if opening := m.opening == f.Filename; opening {
		details += "  " + m.spinner.View() + ui.DimStyle.Render(" Loading transcript...")
	} else if i == m.selected {
		switch {
		case f.Status == api.StatusCompleted && !m.isProcessing(f.Filename):
			details += "  " + ui.FooterKeyStyle.Render("Enter") + ui.FooterDescStyle.Render(" View Transcript")
		case f.Status == api.StatusNotProcessed && !m.isProcessing(f.Filename):
			details += "  " + ui.FooterKeyStyle.Render("t") + ui.FooterDescStyle.Render(" Transcribe")
		}
	}
	return []string{name, details}
}

func (m Model) renderStatusChip(f api.AudioFile) string {
	if m.isProcessing(f.Filename) {
		return m.spinner.View() + ui.StatusProcessingStyle.Render(" Processing")
	}
	switch f.Status {
	case api.StatusCompleted:
		return ui.StatusCompletedStyle.Render("✓ Completed")
	case api.StatusProcessing:
		return ui.StatusProcessingStyle.Render("Processing")
	case api.StatusError:
		return ui.StatusErrorStyle.Render("✗ Error")
	}
	return ui.StatusIdleStyle.Render("Not Processed")
}

func (m Model) renderListFooter() string {
	parts := []string{
		ui.FooterKeyStyle.Render("j/k") + ui.FooterDescStyle.Render(" Nav"),
		ui.FooterKeyStyle.Render("Enter") + ui.FooterDescStyle.Render(" Open"),
		ui.FooterKeyStyle.Render("t") + ui.FooterDescStyle.Render(" Transcribe"),
		ui.FooterKeyStyle.Render("r") + ui.FooterDescStyle.Render(" Refresh"),
		ui.FooterKeyStyle.Render("q") + ui.FooterDescStyle.Render(" Quit"),
	}
	return strings.Join(parts, "  ")
}

// Player

func (m Model) renderPlayer() string {
	var sections []string

	sections = append(sections, m.renderPlayerHeader())
	sections = append(sections, m.renderMetadata())
	sections = append(sections, m.divider())
	sections = append(sections, m.renderTransport())
	sections = append(sections, m.renderProgress())
	sections = append(sections, m.divider())
	sections = append(sections, m.renderTierBar())
	sections = append(sections, m.renderNavigation())
	sections = append(sections, m.divider())
	sections = append(sections, m.renderTranscript(m.transcriptHeight()))
	sections = append(sections, m.divider())
	sections = append(sections, m.renderNotice())
	sections = append(sections, m.renderPlayerFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderPlayerHeader() string {
	title := ui.TitleStyle.Render(m.player.file.Filename)
	if m.player.transcript.Status != "" {
		title += ui.DimStyle.Render(" [" + m.player.transcript.Status + "]")
	}
	return truncateToWidth(title, m.width)
}

func (m Model) renderMetadata() string {
	tr := m.player.transcript
	language := tr.Language
	if language == "" {
		language = "N/A"
	}
	processing := "N/A"
	if tr.ProcessingTime != nil {
		processing = fmt.Sprintf("%.1fs", *tr.ProcessingTime)
	}
	d := m.player.clock.Duration()
	line := fmt.Sprintf("Language: %s  Duration: %s  Processing Time: %s  Segments: %d",
		language, formatDuration(&d), processing, len(m.player.segments))
	return ui.DimStyle.Render(truncateToWidth(line, m.width))
}

func (m Model) renderTransport() string {
	c := m.player.clock
	var state string
	if c.Playing() {
		state = ui.PlayingStyle.Render(" ▶ PLAYING ")
	} else {
		state = ui.DimStyle.Render(" ⏸ PAUSED ")
	}
	return state + "  " + ui.TimestampStyle.Render(formatClock(c.CurrentTime())+" / "+formatClock(c.Duration()))
}

func (m Model) renderProgress() string {
	c := m.player.clock
	width := max(10, m.width)
	filled := 0
	if d := c.Duration(); d > 0 {
		filled = int(float64(width) * c.CurrentTime() / d)
	}
	filled = min(width, max(0, filled))
	return ui.ProgressFillStyle.Render(strings.Repeat("━", filled)) +
		ui.ProgressEmptyStyle.Render(strings.Repeat("─", width-filled))
}

func (m Model) renderTierBar() string {
	p := m.player
	state := p.cursor.State()
	parts := make([]string, 0, len(confidence.Tiers))
	for i, tier := range confidence.Tiers {
		label := fmt.Sprintf("[%d] %s (%d)", i+1, tier, p.counts[tier])
		switch {
		case state.Filtering && state.Filter == tier:
			parts = append(parts, ui.TierActiveStyle(tier).Render(" "+label+" "))
		case p.counts[tier] == 0:
			parts = append(parts, ui.DimStyle.Render(" "+label+" "))
		default:
			parts = append(parts, ui.TierStyle(tier).Render(" "+label+" "))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderNavigation() string {
	state := m.player.cursor.State()
	if !state.Filtering {
		return ui.DimStyle.Render("Press 1-4 to jump between segments of a confidence tier")
	}
	return ui.TierStyle(state.Filter).Render(state.Filter.String()) + "  " +
		ui.FooterKeyStyle.Render("p") + ui.FooterDescStyle.Render(" ◀ ") +
		fmt.Sprintf("%d of %d", state.Position+1, len(state.Indices)) +
		ui.FooterDescStyle.Render(" ▶ ") + ui.FooterKeyStyle.Render("n") + "  " +
		ui.FooterKeyStyle.Render("c") + ui.FooterDescStyle.Render(" Clear")
}

func (m Model) transcriptHeight() int {
	if m.height == 0 {
		return 20
	}
	return max(5, m.height-playerChromeLines)
}

func (m Model) textWidth() int {
	return max(10, m.width-4)
}

// renderSegment returns the display lines for segment i.
func (m Model) renderSegment(i int) []string {
	p := m.player
	seg := p.segments[i]
	tier := confidence.Classify(seg.AvgLogprob)
	hl, ok := p.highlighted()
	playing := ok && hl == i

	marker := " "
	if i == p.selected {
		marker = ui.SelectedStyle.Render("›")
	}
	gutter := ui.TierStyle(tier).Render("▌")
	prefix := " " + gutter + " "

	header := ui.TimestampStyle.Render(formatClock(seg.Start) + " - " + formatClock(seg.End))
	if playing {
		header = ui.PlayingStyle.Render("▶") + " " + header
	}
	if confidence.LowConfidence(seg.AvgLogprob) {
		header += "  " + ui.InaccurateStyle.Render("May be inaccurate")
	}

	lines := []string{marker + gutter + " " + header}
	for _, wl := range wrapText(seg.Text, m.textWidth()) {
		if playing {
			wl = ui.PlayingStyle.Render(wl)
		}
		lines = append(lines, prefix+wl)
	}

	score := "N/A"
	if seg.AvgLogprob != nil && !math.IsNaN(*seg.AvgLogprob) {
		score = fmt.Sprintf("%.2f", *seg.AvgLogprob)
	}
	lines = append(lines, prefix+ui.DimStyle.Render("Confidence: ")+
		ui.TierStyle(tier).Render(tier.String())+ui.DimStyle.Render(" ("+score+")"))
	lines = append(lines, "")
	return lines
}

func (m Model) segmentHeight(i int) int {
	return len(m.renderSegment(i))
}

// topFor returns the first segment to render so that segment i sits in the
// middle of the transcript panel.
func (m Model) topFor(i int) int {
	budget := (m.transcriptHeight() + m.segmentHeight(i)) / 2
	used := m.segmentHeight(i)
	top := i
	for top > 0 {
		h := m.segmentHeight(top - 1)
		if used+h > budget {
			break
		}
		used += h
		top--
	}
	return top
}

// resolveScroll applies a pending scroll request once the layout is known.
func (m Model) resolveScroll() {
	p := m.player
	if p == nil || !p.scrollPending {
		return
	}
	p.scrollPending = false
	p.top = m.topFor(p.scrollTarget)
}

// ensureSelectedVisible scrolls the minimum needed to show the selection.
func (m Model) ensureSelectedVisible() {
	p := m.player
	if p.selected < p.top {
		p.top = p.selected
		return
	}
	used := 0
	for i := p.top; i <= p.selected; i++ {
		used += m.segmentHeight(i)
	}
	for used > m.transcriptHeight() && p.top < p.selected {
		used -= m.segmentHeight(p.top)
		p.top++
	}
}

func (m Model) renderTranscript(height int) string {
	p := m.player
	var lines []string

	if len(p.segments) == 0 {
		lines = append(lines, "")
		lines = append(lines, ui.DimStyle.Render("  This transcript has no segments."))
	} else {
		for i := p.top; i < len(p.segments) && len(lines) < height; i++ {
			lines = append(lines, m.renderSegment(i)...)
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderPlayerFooter() string {
	var parts []string
	if m.player.clock.Playing() {
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Pause"))
	} else {
		parts = append(parts, ui.FooterKeyStyle.Render("Space")+ui.FooterDescStyle.Render(" Play"))
	}
	parts = append(parts, ui.FooterKeyStyle.Render("1-4")+ui.FooterDescStyle.Render(" Tier"))
	parts = append(parts, ui.FooterKeyStyle.Render("n/p")+ui.FooterDescStyle.Render(" Next/Prev"))
	parts = append(parts, ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Select"))
	parts = append(parts, ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Play Segment"))
	parts = append(parts, ui.FooterKeyStyle.Render("←→")+ui.FooterDescStyle.Render(" Seek"))
	parts = append(parts, ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Back"))
	parts = append(parts, ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))
	return truncateToWidth(strings.Join(parts, "  "), m.width)
}

func (m Model) renderNotice() string {
	if m.notice.Text == "" {
		return ""
	}
	var style lipgloss.Style
	switch m.notice.Severity {
	case SeveritySuccess:
		style = ui.NoticeSuccessStyle
	case SeverityWarning:
		style = ui.NoticeWarningStyle
	case SeverityError:
		style = ui.NoticeErrorStyle
	default:
		style = ui.NoticeInfoStyle
	}
	return style.Render(truncateToWidth(m.notice.Text, m.width))
}

// Helpers

// formatClock renders seconds as mm:ss.
func formatClock(seconds float64) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}

// formatDuration renders an optional duration as m:ss.
func formatDuration(seconds *float64) string {
	if seconds == nil || *seconds <= 0 || math.IsNaN(*seconds) {
		return "Unknown"
	}
	s := int(*seconds)
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}

func truncateToWidth(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if lipgloss.Width(current)+1+lipgloss.Width(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
