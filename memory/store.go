package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/petasbytes/searchchat/conversation"
)

var ErrInvalidSessionID = errors.New("invalid session id")

// Transcript is the persisted form of one Session.
type Transcript struct {
	SessionID string              `json:"session_id"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Turns     []conversation.Turn `json:"turns"`
}

// Store loads and saves transcripts by session ID.
type Store interface {
	Load(ctx context.Context, sessionID string) (Transcript, error)
	Save(ctx context.Context, t Transcript) error
	Delete(ctx context.Context, sessionID string) error
	Close() error
}

// FromSession snapshots s for saving.
func FromSession(s *conversation.Session) Transcript {
	return Transcript{
		SessionID: s.ID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Turns:     s.Log.Turns(),
	}
}

// checkID keeps session IDs usable as file names.
func checkID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}
	return nil
}

// Nop is a Store that keeps nothing.
type Nop struct{}

func (Nop) Load(_ context.Context, id string) (Transcript, error) {
	return Transcript{SessionID: id}, nil
}
func (Nop) Save(context.Context, Transcript) error { return nil }
func (Nop) Delete(context.Context, string) error   { return nil }
func (Nop) Close() error                           { return nil }
