// Package playback plays audio files through an external player, one at a
// time.
package playback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
)

// ErrNoPlayer is returned when no player command is configured.
var ErrNoPlayer = errors.New("no audio player configured")

// Manager owns the single audio player process. Starting a new clip stops
// the one already playing.
type Manager struct {
	player []string

	mu      sync.Mutex
	current string
	cmd     *exec.Cmd
	done    chan struct{}
}

// NewManager returns a Manager that runs player with the file path appended.
func NewManager(player []string) *Manager {
	return &Manager{player: append([]string(nil), player...)}
}

// Play stops any current clip and starts playing path under id. It returns
// once the player has started; Wait blocks until it exits.
func (m *Manager) Play(ctx context.Context, id, path string) error {
	if len(m.player) == 0 {
		return ErrNoPlayer
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()

	args := append(append([]string(nil), m.player[1:]...), path)
	cmd := exec.CommandContext(ctx, m.player[0], args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start player: %w", err)
	}

	done := make(chan struct{})
	m.current, m.cmd, m.done = id, cmd, done
	slog.Debug("playback started", "id", id, "file", path)

	go func() {
		err := cmd.Wait()
		m.mu.Lock()
		if m.cmd == cmd {
			m.current, m.cmd = "", nil
		}
		m.mu.Unlock()
		if err != nil {
			slog.Debug("player exited", "id", id, "err", err)
		}
		close(done)
	}()
	return nil
}

// Stop ends the current clip, if any.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

func (m *Manager) stopLocked() {
	if m.cmd == nil {
		return
	}
	if m.cmd.Process != nil {
		if err := m.cmd.Process.Kill(); err != nil {
			slog.Debug("stop player", "id", m.current, "err", err)
		}
	}
	slog.Debug("playback stopped", "id", m.current)
	m.current, m.cmd = "", nil
}

// Playing returns the id of the clip playing now, or "".
func (m *Manager) Playing() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Wait blocks until the most recently started clip finishes or ctx ends.
func (m *Manager) Wait(ctx context.Context) error {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
