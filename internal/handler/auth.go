package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/staynest/staynest-go/internal/media"
	"github.com/staynest/staynest-go/internal/middleware"
	"github.com/staynest/staynest-go/internal/model"
	"github.com/staynest/staynest-go/internal/service"
)

// profileImageField is the multipart field carrying the profile image.
const profileImageField = "profileImage"

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	service   *service.AuthService
	bodyLimit int64
}

// NewAuthHandler creates a new AuthHandler. bodyLimit caps the registration
// body; zero disables the cap.
func NewAuthHandler(svc *service.AuthService, bodyLimit int64) *AuthHandler {
	return &AuthHandler{service: svc, bodyLimit: bodyLimit}
}

// HandleRegister handles POST /auth/register multipart requests.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r, h.bodyLimit); err != nil {
		if isBodyTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid multipart form"))
		return
	}
	defer removeForm(r)

	req := model.RegisterRequest{
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
	}

	resp, err := h.service.Register(r.Context(), req, media.PartsFromForm(r.MultipartForm, profileImageField))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation), media.IsValidationError(err):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case errors.Is(err, service.ErrDuplicateIdentity):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		default:
			slog.ErrorContext(r.Context(), "registration failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("registration failed"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleLogin handles POST /auth/login requests.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if isBodyTooLarge(err) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrIdentityNotFound):
			writeJSON(w, http.StatusConflict, errorResponse(err.Error()))
		case errors.Is(err, service.ErrInvalidCredentials):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		default:
			slog.ErrorContext(r.Context(), "login failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleMe handles GET /auth/me requests.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
		return
	}

	resp, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrIdentityNotFound) {
			writeJSON(w, http.StatusUnauthorized, errorResponse("unauthorized"))
			return
		}
		slog.ErrorContext(r.Context(), "loading current user failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
