package conversation

import (
	"time"

	"github.com/google/uuid"
)

// DefaultGreeting opens every new Session.
const DefaultGreeting = "Hello! I am your assistant who can search on the web. How may I help you?"

// Session owns one Log for the lifetime of one client connection.
type Session struct {
	ID        string
	CreatedAt time.Time
	Log       *Log

	greeting string
}

// NewSession starts a fresh Session under a random ID. A non-empty greeting
// is seeded as the first assistant Turn.
func NewSession(greeting string) *Session {
	s := &Session{ID: uuid.NewString(), greeting: greeting}
	s.Reset()
	return s
}

// ResumeSession rebuilds a Session from persisted Turns. With no Turns it
// behaves like NewSession under the given id.
func ResumeSession(id, greeting string, turns []Turn) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	s := &Session{ID: id, greeting: greeting}
	if len(turns) == 0 {
		s.Reset()
		return s, nil
	}
	l, err := NewLog(turns...)
	if err != nil {
		return nil, err
	}
	s.Log = l
	s.CreatedAt = turns[0].CreatedAt
	return s, nil
}

// Reset discards the conversation and starts over. The ID is kept so the
// Session keeps its storage slot.
func (s *Session) Reset() {
	s.CreatedAt = time.Now().UTC()
	s.Log = &Log{}
	if s.greeting != "" {
		_ = s.Log.Append(AssistantTurn(s.greeting))
	}
}
