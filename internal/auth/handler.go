package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/wiratama/access-management/internal"
	"github.com/wiratama/access-management/internal/transport"
	"github.com/wiratama/access-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Login(dto)
	if err != nil {
		h.Logger.Error("authentication failed", "username", dto.Username, "error", err)

		switch err {
		case ErrInvalidCredentials:
			h.WriteAppError(w, internal.ErrInvalidCredentials)
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.Service.Register(dto)
	if err != nil {
		h.Logger.Error("registration failed", "username", dto.Username, "error", err)

		switch err {
		case ErrUserAlreadyExists:
			h.WriteAppError(w, internal.ErrUserAlreadyExists)
		default:
			if _, ok := err.(ValidationError); ok {
				h.WriteError(w, http.StatusBadRequest, err.Error())
			} else {
				h.WriteError(w, http.StatusInternalServerError, "internal server error")
			}
		}
		return
	}

	h.WriteJSON(w, http.StatusCreated, user)
}

// Info returns the authenticated caller's profile. The request gate has
// already attached the identity to the context.
func (h *Handler) Info(w http.ResponseWriter, r *http.Request) {
	identity, ok := internal.IdentityFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrTokenMissing)
		return
	}

	user, err := h.Service.UserInfo(identity.UserID)
	if err != nil {
		h.WriteAppError(w, internal.ErrUserNotFound)
		return
	}

	h.WriteJSON(w, http.StatusOK, user)
}
