package persist

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"pkt.systems/promptdeck/schema"
	"pkt.systems/pslog"
)

// Transcript captures a session's message history for persistence. The store
// observes the core; nothing is ever loaded back into it.
type Transcript struct {
	SessionID schema.SessionID   `json:"session_id"`
	Name      schema.SessionName `json:"name"`
	Provider  schema.ProviderID  `json:"provider"`
	Messages  []schema.Message   `json:"messages"`
	SavedAt   time.Time          `json:"saved_at"`
}

// Store persists session transcripts to disk.
type Store struct {
	dir string
	log pslog.Logger
}

// NewStore constructs a transcript store at the given directory.
func NewStore(dir string) (*Store, error) {
	return NewStoreWithLogger(dir, nil)
}

// NewStoreWithLogger constructs a transcript store with logging.
func NewStoreWithLogger(dir string, logger pslog.Logger) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("transcript directory is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if logger != nil {
		logger = logger.With("transcript_dir", dir)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Save writes a transcript atomically.
func (s *Store) Save(t Transcript) error {
	path := s.pathForSession(t.SessionID)
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		if s.log != nil {
			s.log.Warn("transcript save failed", "session", t.SessionID, "err", err)
		}
		return err
	}
	tmp, err := os.CreateTemp(s.dir, "transcript-*.json")
	if err != nil {
		if s.log != nil {
			s.log.Warn("transcript save failed", "session", t.SessionID, "err", err)
		}
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("transcript save failed", "session", t.SessionID, "err", err)
		}
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		if s.log != nil {
			s.log.Warn("transcript save failed", "session", t.SessionID, "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Trace("transcript saved", "session", t.SessionID, "messages", len(t.Messages))
	}
	return nil
}

// Load reads a transcript from disk, reporting whether one exists.
func (s *Store) Load(sessionID schema.SessionID) (Transcript, bool, error) {
	data, err := os.ReadFile(s.pathForSession(sessionID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Transcript{}, false, nil
		}
		return Transcript{}, false, err
	}
	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return Transcript{}, false, err
	}
	return t, true, nil
}

func (s *Store) pathForSession(id schema.SessionID) string {
	return filepath.Join(s.dir, sanitize(string(id))+".json")
}

func sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "session"
	}
	return b.String()
}
