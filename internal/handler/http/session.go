package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/eldenfruit/storefront/internal/domain"
	"github.com/eldenfruit/storefront/internal/notify"
	"github.com/eldenfruit/storefront/internal/session"
	"github.com/eldenfruit/storefront/pkg/httputil"
	"github.com/eldenfruit/storefront/pkg/validator"
)

// SessionHandler lets the storefront sign a shopper in and out.
type SessionHandler struct {
	sessions *session.Manager
	logger   *slog.Logger
}

// NewSessionHandler creates a new session HTTP handler.
func NewSessionHandler(m *session.Manager, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{sessions: m, logger: logger}
}

// GetSession handles GET /api/v1/session
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	profile, err := h.sessions.Current(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// SignIn handles PUT /api/v1/session
func (h *SessionHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req domain.UserProfile
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	profile, err := h.sessions.SignIn(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, profile)
}

// SignOut handles DELETE /api/v1/session
func (h *SessionHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// NotificationHandler exposes the notice feed for polling.
type NotificationHandler struct {
	feed *notify.Feed
}

// NewNotificationHandler creates a new notification HTTP handler.
func NewNotificationHandler(feed *notify.Feed) *NotificationHandler {
	return &NotificationHandler{feed: feed}
}

// ListNotifications handles GET /api/v1/notifications?after=N
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	var after uint64
	if v := r.URL.Query().Get("after"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "after must be a non-negative integer"},
			})
			return
		}
		after = n
	}
	httputil.WriteData(w, http.StatusOK, h.feed.Since(after))
}
