package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"civiclink/internal/access"
	"civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	List(ctx context.Context, caller *access.Identity, unreadOnly bool, offset, limit int) (*models.ListResult, error)
	UnreadCount(ctx context.Context, caller *access.Identity) (int, error)
	MarkRead(ctx context.Context, caller *access.Identity, notificationID id.NotificationID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, caller *access.Identity) (int, error)
	Delete(ctx context.Context, caller *access.Identity, notificationID id.NotificationID) error
	DeleteRead(ctx context.Context, caller *access.Identity) (int, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Get("/notifications/unread-count", h.HandleUnreadCount)
	r.Put("/notifications/read-all", h.HandleMarkAllRead)
	r.Put("/notifications/{id}/read", h.HandleMarkRead)
	r.Delete("/notifications/read", h.HandleDeleteRead)
	r.Delete("/notifications/{id}", h.HandleDelete)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	unreadOnly := false
	if v := r.URL.Query().Get("unread_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "unread_only must be true or false"))
			return
		}
		unreadOnly = b
	}
	page := httputil.ParsePage(r)
	res, err := h.service.List(r.Context(), caller(r.Context()), unreadOnly, page.Offset(), page.Limit)
	if err != nil {
		h.logFailure(r.Context(), "list notifications failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.UnreadCount(r.Context(), caller(r.Context()))
	if err != nil {
		h.logFailure(r.Context(), "count notifications failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"unread_count": n})
}

func (h *Handler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := notificationIDParam(w, r)
	if !ok {
		return
	}
	n, err := h.service.MarkRead(r.Context(), caller(r.Context()), notificationID)
	if err != nil {
		h.logFailure(r.Context(), "mark notification read failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.MarkAllRead(r.Context(), caller(r.Context()))
	if err != nil {
		h.logFailure(r.Context(), "mark all notifications read failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	notificationID, ok := notificationIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), caller(r.Context()), notificationID); err != nil {
		h.logFailure(r.Context(), "delete notification failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleDeleteRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.DeleteRead(r.Context(), caller(r.Context()))
	if err != nil {
		h.logFailure(r.Context(), "delete read notifications failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func notificationIDParam(w http.ResponseWriter, r *http.Request) (id.NotificationID, bool) {
	notificationID, err := id.ParseNotificationID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.NotificationID{}, false
	}
	return notificationID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return
	}
	h.logger.InfoContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"code", dErrors.CodeOf(err),
	)
}

func caller(ctx context.Context) *access.Identity {
	identity, _ := access.FromContext(ctx)
	return identity
}
