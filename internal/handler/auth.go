package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/moimapp/moim/internal/auth"
	"github.com/moimapp/moim/internal/middleware"
	"github.com/moimapp/moim/internal/model"
	"github.com/moimapp/moim/internal/store"
)

type AuthHandler struct {
	users  *store.UserStore
	jwt    *auth.JWTManager
	secure bool
	logger *slog.Logger
}

func NewAuthHandler(users *store.UserStore, jwt *auth.JWTManager, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		jwt:    jwt,
		secure: secureCookies,
		logger: logger,
	}
}

type registerRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Nickname *string `json:"nickname"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" {
		writeErrorMessage(w, http.StatusBadRequest, "username is required")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.users.GetByUsername(req.Username)
	if err != nil {
		h.logger.Error("register lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		writeErrorMessage(w, http.StatusConflict, "username already taken")
		return
	}

	user, err := h.users.Create(req.Username, hash)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if req.Nickname != nil {
		user, err = h.users.UpdateNickname(user.ID, req.Nickname)
		if err != nil {
			h.logger.Error("set nickname", "error", err)
			writeErrorMessage(w, http.StatusInternalServerError, "internal error")
			return
		}
	}

	h.startSession(w, r, user)
	writeJSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, hash, err := h.users.GetCredentials(strings.TrimSpace(req.Username))
	if err != nil {
		h.logger.Error("login lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		// Same message as a wrong password, no user enumeration
		writeErrorMessage(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}
	if err := auth.CheckPassword(hash, req.Password); err != nil {
		writeErrorMessage(w, http.StatusUnauthorized, auth.ErrInvalidCredentials.Error())
		return
	}

	h.startSession(w, r, user)
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		h.logger.Error("me lookup", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeErrorMessage(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type profileRequest struct {
	Nickname *string `json:"nickname"`
}

// UpdateProfile changes the user's nickname. A null nickname clears it.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := readJSON(r, &req); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Nickname != nil && strings.TrimSpace(*req.Nickname) == "" {
		writeErrorMessage(w, http.StatusBadRequest, "nickname must not be blank")
		return
	}

	user, err := h.users.UpdateNickname(auth.UserID(r.Context()), req.Nickname)
	if err != nil {
		h.logger.Error("update nickname", "error", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		writeErrorMessage(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) {
	token, err := h.jwt.Generate(user.ID, user.Username)
	if err != nil {
		h.logger.Error("sign session token", "error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   h.secure || r.TLS != nil,
	})
}
