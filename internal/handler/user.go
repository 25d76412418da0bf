package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/templui/calldesk/internal/ctxkeys"
	"github.com/templui/calldesk/internal/model"
	"github.com/templui/calldesk/internal/repository"
	"github.com/templui/calldesk/internal/service"
)

type UserHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

func NewUserHandler(authService *service.AuthService, userService *service.UserService) *UserHandler {
	return &UserHandler{
		authService: authService,
		userService: userService,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authUser struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

type authResponse struct {
	User  authUser `json:"user"`
	Token string   `json:"token"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			writeError(w, http.StatusBadRequest, "Username or email already exists")
			return
		}
		if msg, ok := service.AsInputError(err); ok {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		slog.Error("failed to register user", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{
		User: authUser{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			CreatedAt: &user.CreatedAt,
		},
		Token: token,
	})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	err := decodeJSON(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, token, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("failed to log in", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		User: authUser{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
		},
		Token: token,
	})
}

func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	identity := ctxkeys.Identity(r.Context())

	user, err := h.userService.Profile(identity.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		slog.Error("failed to fetch profile", "error", err, "user_id", identity.ID)
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, profileOf(user))
}

func profileOf(user *model.User) authUser {
	return authUser{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: &user.CreatedAt,
	}
}
