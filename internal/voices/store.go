package voices

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxSaved is how many voices the store keeps; older ones fall off the end.
const MaxSaved = 5

// ErrNotFound is returned for an unknown voice id.
var ErrNotFound = errors.New("voice not found")

// SavedVoice is one cloned voice remembered between runs.
type SavedVoice struct {
	VoiceID   string `json:"voice_id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"` // unix millis
}

// Created returns CreatedAt as a time.Time.
func (v SavedVoice) Created() time.Time {
	return time.UnixMilli(v.CreatedAt)
}

// Store keeps the saved-voice list in a JSON file.
type Store struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

// NewStore returns a store backed by the file at path. The file is created
// on first write.
func NewStore(path string) *Store {
	return &Store{path: path, now: time.Now}
}

// DefaultName is the name given to a freshly saved voice.
func DefaultName(t time.Time) string {
	return "Voice — " + t.Format("2 Jan, 15:04")
}

// List returns the saved voices, newest first. A missing or unreadable file
// yields an empty list.
func (s *Store) List() []SavedVoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add saves voiceID at the front of the list under a default name and trims
// the list to MaxSaved. An id that is already saved moves to the front.
func (s *Store) Add(voiceID string) (SavedVoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	v := SavedVoice{VoiceID: voiceID, Name: DefaultName(now), CreatedAt: now.UnixMilli()}

	list := []SavedVoice{v}
	for _, old := range s.load() {
		if old.VoiceID != voiceID {
			list = append(list, old)
		}
	}
	if len(list) > MaxSaved {
		list = list[:MaxSaved]
	}
	if err := s.save(list); err != nil {
		return SavedVoice{}, err
	}
	return v, nil
}

// Rename sets the display name of a saved voice.
func (s *Store) Rename(voiceID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	found := false
	for i := range list {
		if list[i].VoiceID == voiceID {
			list[i].Name = name
			found = true
		}
	}
	if !found {
		return fmt.Errorf("%s: %w", voiceID, ErrNotFound)
	}
	return s.save(list)
}

// Delete forgets a saved voice.
func (s *Store) Delete(voiceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.load()
	kept := list[:0]
	for _, v := range list {
		if v.VoiceID != voiceID {
			kept = append(kept, v)
		}
	}
	if len(kept) == len(list) {
		return fmt.Errorf("%s: %w", voiceID, ErrNotFound)
	}
	return s.save(kept)
}

// Get returns the saved voice with the given id.
func (s *Store) Get(voiceID string) (SavedVoice, error) {
	for _, v := range s.List() {
		if v.VoiceID == voiceID {
			return v, nil
		}
	}
	return SavedVoice{}, fmt.Errorf("%s: %w", voiceID, ErrNotFound)
}

func (s *Store) load() []SavedVoice {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("cannot read saved voices", "path", s.path, "err", err)
		}
		return nil
	}

	var list []SavedVoice
	if err := json.Unmarshal(data, &list); err != nil {
		slog.Warn("saved voices file is corrupt, ignoring", "path", s.path, "err", err)
		return nil
	}
	return list
}

func (s *Store) save(list []SavedVoice) error {
	if list == nil {
		list = []SavedVoice{}
	}
	data, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create voices dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".voices-*.json")
	if err != nil {
		return fmt.Errorf("write voices: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write voices: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write voices: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("write voices: %w", err)
	}
	return nil
}
