package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vovarama1992/go-utils/logger"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/backend"
	"github.com/Vovarama1992/braille_bridge/internal/ports"
)

const (
	MsgFieldsRequired   = "All fields are required"
	MsgPasswordMismatch = "Passwords do not match"
	MsgPasswordShort    = "Password must be at least 6 characters"
	MsgInvalidLogin     = "Invalid credentials"
	MsgLoginFailed      = "Login failed. Please try again."
	MsgRegisterRejected = "Registration failed"
	MsgRegisterFailed   = "Something went wrong. Please try again."
)

const MinPasswordLen = 6

type RegisterForm struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// authBody: login/register response
type authBody struct {
	Token   string `json:"token"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type Service struct {
	backend ports.Backend
	store   ports.SessionStore
	log     *logger.ZapLogger
}

// NewService: store may be nil
func NewService(b ports.Backend, store ports.SessionStore, log *logger.ZapLogger) *Service {
	return &Service{backend: b, store: store, log: log}
}

func ValidateLogin(email, password string) error {
	if email == "" || password == "" {
		return apperr.New(apperr.KindPrecondition, MsgFieldsRequired)
	}
	return nil
}

func ValidateRegister(f RegisterForm) error {
	if f.Name == "" || f.Email == "" || f.Password == "" {
		return apperr.New(apperr.KindPrecondition, MsgFieldsRequired)
	}
	if f.Password != f.ConfirmPassword {
		return apperr.New(apperr.KindPrecondition, MsgPasswordMismatch)
	}
	if len(f.Password) < MinPasswordLen {
		return apperr.New(apperr.KindPrecondition, MsgPasswordShort)
	}
	return nil
}

// PasswordStrength: "" / weak / medium / strong
func PasswordStrength(pw string) string {
	switch n := len(pw); {
	case n == 0:
		return ""
	case n < MinPasswordLen:
		return "weak"
	case n < 10:
		return "medium"
	}
	return "strong"
}

// Login stores token and identity on success.
func (s *Service) Login(ctx context.Context, email, password string) (ports.Session, error) {
	if err := ValidateLogin(email, password); err != nil {
		return ports.Session{}, err
	}

	raw, err := s.backend.Login(ctx, ports.LoginInput{Email: email, Password: password})
	if err != nil {
		return ports.Session{}, apperr.Wrap(apperr.KindTransport, MsgLoginFailed, err)
	}

	p := backend.Parse[authBody](raw)
	if p.Malformed {
		return ports.Session{}, apperr.Wrap(apperr.KindMalformedResponse, MsgLoginFailed, p.Cause)
	}
	if !raw.OK() {
		return ports.Session{}, apperr.New(apperr.KindAuthRejected, apperr.ServerMessage(p.Value.Message, MsgInvalidLogin))
	}
	if p.Value.Token == "" {
		return ports.Session{}, apperr.New(apperr.KindMalformedResponse, MsgLoginFailed)
	}

	sess := sessionOf(p.Value, email)
	if err := s.save(sess); err != nil {
		return ports.Session{}, fmt.Errorf("store session: %w", err)
	}

	s.info(fmt.Sprintf("signed in as %s", sess.User.Email))
	return sess, nil
}

// Register returns a valid session only when the backend handed out a token.
func (s *Service) Register(ctx context.Context, f RegisterForm) (ports.Session, error) {
	if err := ValidateRegister(f); err != nil {
		return ports.Session{}, err
	}

	raw, err := s.backend.Register(ctx, ports.RegisterInput{Name: f.Name, Email: f.Email, Password: f.Password})
	if err != nil {
		return ports.Session{}, apperr.Wrap(apperr.KindTransport, MsgRegisterFailed, err)
	}

	p := backend.Parse[authBody](raw)
	if p.Malformed {
		return ports.Session{}, apperr.Wrap(apperr.KindMalformedResponse, MsgRegisterFailed, p.Cause)
	}
	if !raw.OK() {
		return ports.Session{}, apperr.New(apperr.KindAuthRejected, apperr.ServerMessage(p.Value.Message, MsgRegisterRejected))
	}

	if p.Value.Token == "" {
		s.info(fmt.Sprintf("registered %s, no token issued", f.Email))
		return ports.Session{User: ports.Identity{Name: f.Name, Email: f.Email}}, nil
	}

	if p.Value.Name == "" {
		p.Value.Name = f.Name
	}
	sess := sessionOf(p.Value, f.Email)
	if err := s.save(sess); err != nil {
		return ports.Session{}, fmt.Errorf("store session: %w", err)
	}

	s.info(fmt.Sprintf("registered and signed in as %s", sess.User.Email))
	return sess, nil
}

func (s *Service) Logout() error {
	if s.store == nil {
		return nil
	}
	return s.store.Clear()
}

// Current: the stored session, read once by callers at startup
func (s *Service) Current() (ports.Session, error) {
	if s.store == nil {
		return ports.Session{}, nil
	}
	return s.store.Load()
}

// save is a no-op without a store: the gateway hands tokens back to its caller
func (s *Service) save(sess ports.Session) error {
	if s.store == nil {
		return nil
	}
	return s.store.Save(sess)
}

func sessionOf(b authBody, email string) ports.Session {
	if strings.TrimSpace(b.Email) == "" {
		b.Email = email
	}
	return ports.Session{
		Token: b.Token,
		User:  ports.Identity{Name: b.Name, Email: b.Email},
	}
}

func (s *Service) info(msg string) {
	if s.log == nil {
		return
	}
	s.log.Log(logger.LogEntry{Level: "info", Message: "[auth] " + msg, Service: "braille_bridge"})
}
