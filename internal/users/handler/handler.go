package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"civiclink/internal/access"
	"civiclink/internal/users/models"
	"civiclink/internal/users/service"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResult, error)
	Profile(ctx context.Context, caller *access.Identity) (*models.User, error)
	UpdateProfile(ctx context.Context, caller *access.Identity, req *models.UpdateProfileRequest) (*models.User, error)
	ChangePassword(ctx context.Context, caller *access.Identity, req *models.ChangePasswordRequest) error
	List(ctx context.Context, caller *access.Identity, filter models.ListFilter) (*service.ListResult, error)
	SetStatus(ctx context.Context, caller *access.Identity, userID id.UserID, req *models.SetStatusRequest) (*models.User, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/auth/profile", h.HandleProfile)
	r.Put("/auth/profile", h.HandleUpdateProfile)
	r.Post("/auth/change-password", h.HandleChangePassword)
	r.Get("/admin/users", h.HandleList)
	r.Put("/admin/users/{id}/status", h.HandleSetStatus)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.logFailure(r.Context(), "register failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, res)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.logFailure(r.Context(), "login failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.service.Profile(r.Context(), caller(r.Context()))
	if err != nil {
		h.logFailure(r.Context(), "get profile failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.UpdateProfile(r.Context(), caller(r.Context()), &req)
	if err != nil {
		h.logFailure(r.Context(), "update profile failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req models.ChangePasswordRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.ChangePassword(r.Context(), caller(r.Context()), &req); err != nil {
		h.logFailure(r.Context(), "change password failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := httputil.ParsePage(r)
	filter := models.ListFilter{
		Role:   access.Role(strings.ToLower(q.Get("role"))),
		Status: access.Status(strings.ToLower(q.Get("status"))),
		Offset: page.Offset(),
		Limit:  page.Limit,
	}
	res, err := h.service.List(r.Context(), caller(r.Context()), filter)
	if err != nil {
		h.logFailure(r.Context(), "list users failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := id.ParseUserID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var req models.SetStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	u, err := h.service.SetStatus(r.Context(), caller(r.Context()), userID, &req)
	if err != nil {
		h.logFailure(r.Context(), "set user status failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, u)
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
