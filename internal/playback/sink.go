package playback

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// ExecSink plays audio through an external player process, restarting the
// process at the requested offset on every Start.
type ExecSink struct {
	bin  string
	args func(offset string) []string
	cmd  *exec.Cmd
}

// NewExecSink resolves player on PATH and prepares it to play url.
// Supported players are ffplay and mpv.
func NewExecSink(player, url string) (*ExecSink, error) {
	bin, err := exec.LookPath(player)
	if err != nil {
		return nil, fmt.Errorf("find player %q: %w", player, err)
	}

	var args func(string) []string
	switch filepath.Base(player) {
	case "ffplay":
		args = func(offset string) []string {
			return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", "-ss", offset, url}
		}
	case "mpv":
		args = func(offset string) []string {
			return []string{"--no-video", "--really-quiet", "--start=" + offset, url}
		}
	default:
		return nil, fmt.Errorf("unsupported player %q", player)
	}

	return &ExecSink{bin: bin, args: args}, nil
}

// Start stops any running player and launches a new one at offset.
func (s *ExecSink) Start(offset float64) error {
	if err := s.Stop(); err != nil {
		return err
	}
	cmd := exec.Command(s.bin, s.args(strconv.FormatFloat(offset, 'f', 3, 64))...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}
	s.cmd = cmd
	go cmd.Wait() // reap
	return nil
}

// Stop kills the running player, if any.
func (s *ExecSink) Stop() error {
	if s.cmd == nil || s.cmd.Process == nil {
		return nil
	}
	cmd := s.cmd
	s.cmd = nil
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop player: %w", err)
	}
	return nil
}
