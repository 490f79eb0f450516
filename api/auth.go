package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/garnizeh/jobboard/internal/repository/mongo"
	"github.com/garnizeh/jobboard/pkg/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type AuthHandler struct {
	sessions      *SessionRegistry
	jwtSecret     string
	tokenDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler with required dependencies.
func NewAuthHandler(sessions *SessionRegistry, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{sessions: sessions, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type sessionResponse struct {
	Token string `json:"token"`
	SID   string `json:"sid"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
}

type registerRequest struct {
	models.User
	Password string `json:"password"`
}

type meResponse struct {
	State string       `json:"state"`
	User  *models.User `json:"user"`
}

// CreateSession issues a client session and a token carrying its id.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sid, err := h.sessions.Create(r.Context())
	if err != nil {
		logger.Error("create session", slog.Any("error", err))
		http.Error(w, "Error creating session", http.StatusInternalServerError)
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": time.Now().Add(h.tokenDuration).Unix(),
	})
	tokenString, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		http.Error(w, "Error generating token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, sessionResponse{Token: tokenString, SID: sid}, http.StatusCreated)
}

// EndSession forgets the client session and its stored state.
func (h *AuthHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.End(r.Context(), SessionID(r.Context())); err != nil {
		logger.Error("end session", slog.Any("error", err))
		http.Error(w, "Error ending session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Identifier == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}

	p, err := h.sessions.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if !p.Login(r.Context(), req.Identifier, req.Secret) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	writeJSON(w, p.User(), http.StatusOK)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	u := req.User
	u.Name = strings.TrimSpace(u.Name)
	u.Email = strings.TrimSpace(u.Email)
	if u.Name == "" || u.Email == "" {
		http.Error(w, "Missing fields", http.StatusBadRequest)
		return
	}
	if u.Role == "" {
		u.Role = models.RoleSeeker
	}
	// self-registration never grants admin
	if !u.Role.Valid() || u.Role == models.RoleAdmin {
		http.Error(w, "Invalid role", http.StatusBadRequest)
		return
	}
	if u.Status == "" {
		u.Status = models.UserStatusActive
	}
	if u.CreatedAt == "" {
		u.CreatedAt = time.Now().Format(time.DateOnly)
	}
	// remote mode replaces this with the account uid
	u.ID = uuid.NewString()

	p, err := h.sessions.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	if err := p.Register(r.Context(), u, req.Password); err != nil {
		if errors.Is(err, mongo.ErrEmailInUse) {
			http.Error(w, "Email already in use", http.StatusConflict)
			return
		}
		http.Error(w, "Error creating user", http.StatusInternalServerError)
		return
	}

	writeJSON(w, p.User(), http.StatusCreated)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	p.Logout(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	p, err := h.sessions.Get(r.Context(), SessionID(r.Context()))
	if err != nil {
		writeSessionError(w, err)
		return
	}
	writeJSON(w, meResponse{State: p.State().String(), User: p.User()}, http.StatusOK)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	// role and status are admin decisions
	patch.Role = nil
	patch.Status = nil

	p, _, ok := h.sessions.currentUser(w, r)
	if !ok {
		return
	}
	p.UpdateProfile(r.Context(), patch)
	writeJSON(w, p.User(), http.StatusOK)
}

func writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnknownSession) {
		http.Error(w, "unknown session", http.StatusUnauthorized)
		return
	}
	logger.Error("session lookup", slog.Any("error", err))
	http.Error(w, "session lookup failed", http.StatusInternalServerError)
}
