package delivery

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Vovarama1992/braille_bridge/internal/apperr"
	"github.com/Vovarama1992/braille_bridge/internal/auth"
)

type AuthHandler struct {
	auth *auth.Service
}

func NewAuthHandler(svc *auth.Service) *AuthHandler {
	return &AuthHandler{auth: svc}
}

type sessionResponse struct {
	Token string `json:"token,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, statusFor(err), apperr.Message(err, auth.MsgLoginFailed))
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: sess.Token, Name: sess.User.Name, Email: sess.User.Email})
}

// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name            string `json:"name"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	sess, err := h.auth.Register(r.Context(), auth.RegisterForm{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		writeError(w, statusFor(err), apperr.Message(err, auth.MsgRegisterFailed))
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: sess.Token, Name: sess.User.Name, Email: sess.User.Email})
}

// GET /auth/password-strength?password=...
func (h *AuthHandler) PasswordStrength(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"strength": auth.PasswordStrength(r.URL.Query().Get("password")),
	})
}
