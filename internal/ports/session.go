package ports

import "context"

// Identity: display data of the signed-in user
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Session: bearer token plus identity, read once and passed down explicitly
type Session struct {
	Token string
	User  Identity
}

func (s Session) Valid() bool {
	return s.Token != ""
}

type SessionStore interface {
	Load() (Session, error)
	Save(s Session) error
	Clear() error
}

// Notifier alerts an operator about backend faults. Never user facing.
type Notifier interface {
	Notify(ctx context.Context, source string, err error, details string) error
}
