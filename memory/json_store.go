package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// JSONStore writes each transcript to Dir/<session>.json.
type JSONStore struct {
	Dir string
}

func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &JSONStore{Dir: dir}, nil
}

func (s *JSONStore) path(id string) string {
	return filepath.Join(s.Dir, id+".json")
}

func (s *JSONStore) Load(_ context.Context, id string) (Transcript, error) {
	if err := checkID(id); err != nil {
		return Transcript{}, err
	}
	t, err := LoadTranscript(s.path(id))
	if err != nil {
		return Transcript{}, err
	}
	t.SessionID = id
	return t, nil
}

func (s *JSONStore) Save(_ context.Context, t Transcript) error {
	if err := checkID(t.SessionID); err != nil {
		return err
	}
	return SaveTranscript(s.path(t.SessionID), t)
}

func (s *JSONStore) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s *JSONStore) Close() error { return nil }

// LoadTranscript reads a transcript file. A missing file yields an empty
// Transcript and no error.
func LoadTranscript(path string) (Transcript, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Transcript{}, nil
		}
		return Transcript{}, err
	}
	var t Transcript
	if err := json.Unmarshal(b, &t); err != nil {
		return Transcript{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return t, nil
}

// SaveTranscript writes t to path via a temp file and rename, so a crash
// never leaves a half-written transcript behind.
func SaveTranscript(path string, t Transcript) error {
	b, err := json.MarshalIndent(t, "", " ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".transcript-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
