package config

import (
	"os"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/bashhack/gitdoc/internal/errors"
)

// Source hands out the settings in force right now. Callers ask for a
// snapshot at the moment of use so configuration changes apply on the next
// evaluation.
type Source interface {
	Snapshot() Settings
}

// Static is a Source that never changes.
type Static Settings

// Snapshot returns the fixed settings.
func (s Static) Snapshot() Settings {
	return Settings(s)
}

// Store is the thread-safe settings holder backing a watch session. It
// layers defaults, the settings file, and an overlay (environment and
// flags), and re-reads the file whenever its modification time changes.
//
// enabled is the one key the overlay does not hold on to: once the file's
// enabled value changes after the store was opened (gitdoc enable/disable),
// the file decides it from then on.
type Store struct {
	mu      sync.RWMutex
	path    string
	overlay func(*Settings)
	current Settings
	modTime time.Time
	lastErr error

	loaded      bool
	fileEnabled bool
	fileToggled bool
}

// NewStore loads the settings at path. overlay may be nil.
func NewStore(path string, overlay func(*Settings)) (*Store, error) {
	s := &Store{path: path, overlay: overlay}

	settings, modTime, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current = settings
	s.modTime = modTime
	return s, nil
}

// Path returns the settings file location.
func (s *Store) Path() string {
	return s.path
}

// Snapshot returns the current settings, reloading the file first when it
// changed on disk. A file that no longer validates is ignored and the
// previous snapshot is kept; Err reports why.
func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	current, seen := s.current, s.modTime
	s.mu.RUnlock()

	if modTime(s.path).Equal(seen) {
		return current
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, mt, err := s.load()
	s.modTime = mt
	if err != nil {
		s.lastErr = err
		return s.current
	}
	s.current = settings
	s.lastErr = nil
	return s.current
}

// Err returns the error from the most recent failed reload, if any.
func (s *Store) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// SetEnabled persists the enabled flag to the settings file, keeping every
// other key in it.
func (s *Store) SetEnabled(enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := map[string]any{}
	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return errors.NewConfigError("file", s.path, errors.Wrap(errors.ErrInvalidConfiguration, err.Error()))
		}
	case !os.IsNotExist(err):
		return errors.NewConfigError("file", s.path, errors.Wrap(err, "failed to read settings"))
	}

	doc["enabled"] = enabled
	out, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "failed to encode settings")
	}
	if err := os.WriteFile(s.path, out, 0o644); err != nil {
		return errors.NewConfigError("file", s.path, errors.Wrap(err, "failed to write settings"))
	}

	settings, mt, err := s.load()
	if err != nil {
		return err
	}
	s.current = settings
	s.modTime = mt
	return nil
}

func (s *Store) load() (Settings, time.Time, error) {
	mt := modTime(s.path)

	settings, err := LoadFile(s.path, Defaults())
	if err != nil {
		return Settings{}, mt, err
	}
	fromFile := settings.Enabled

	if s.overlay != nil {
		s.overlay(&settings)
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, mt, err
	}

	if !s.loaded {
		s.loaded, s.fileEnabled = true, fromFile
	} else if fromFile != s.fileEnabled {
		s.fileToggled = true
	}
	if s.fileToggled {
		settings.Enabled = fromFile
	}
	return settings, mt, nil
}

// modTime is the zero time for a missing file.
func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
