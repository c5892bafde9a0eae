package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civiclink/internal/access"
	issuehandler "civiclink/internal/issues/handler"
	issuemodels "civiclink/internal/issues/models"
	"civiclink/internal/ministry/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Get(ctx context.Context, ministryID id.MinistryID) (*models.Ministry, error)
	List(ctx context.Context) ([]*models.Ministry, error)
	Create(ctx context.Context, caller *access.Identity, req *models.CreateMinistryRequest) (*models.Ministry, error)
	Update(ctx context.Context, caller *access.Identity, ministryID id.MinistryID, req *models.CreateMinistryRequest) (*models.Ministry, error)
	Delete(ctx context.Context, caller *access.Identity, ministryID id.MinistryID) error
	AssignOfficer(ctx context.Context, caller *access.Identity, ministryID id.MinistryID, req *models.AssignOfficerRequest) (*models.Ministry, error)
	Issues(ctx context.Context, caller *access.Identity, ministryID id.MinistryID, filter issuemodels.Filter) (*issuemodels.ListResult, error)
	Dashboard(ctx context.Context, caller *access.Identity, ministryID id.MinistryID) (*models.Dashboard, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/ministries", h.HandleList)
	r.Get("/ministries/{id}", h.HandleGet)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/ministries/{id}/issues", h.HandleIssues)
	r.Get("/ministries/{id}/dashboard", h.HandleDashboard)
	r.Post("/admin/ministries", h.HandleCreate)
	r.Put("/admin/ministries/{id}", h.HandleUpdate)
	r.Delete("/admin/ministries/{id}", h.HandleDelete)
	r.Post("/admin/ministries/{id}/officers", h.HandleAssignOfficer)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ministries, err := h.service.List(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "list ministries failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"ministries": ministries, "count": len(ministries)})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ministryID, ok := ministryIDParam(w, r)
	if !ok {
		return
	}
	m, err := h.service.Get(r.Context(), ministryID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) HandleIssues(w http.ResponseWriter, r *http.Request) {
	ministryID, ok := ministryIDParam(w, r)
	if !ok {
		return
	}
	filter, err := issuehandler.ParseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.Issues(r.Context(), caller(r.Context()), ministryID, filter)
	if err != nil {
		h.logFailure(r.Context(), "list ministry issues failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ministryID, ok := ministryIDParam(w, r)
	if !ok {
		return
	}
	d, err := h.service.Dashboard(r.Context(), caller(r.Context()), ministryID)
	if err != nil {
		h.logFailure(r.Context(), "ministry dashboard failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateMinistryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.service.Create(r.Context(), caller(r.Context()), &req)
	if err != nil {
		h.logFailure(r.Context(), "create ministry failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ministryID, ok := ministryIDParam(w, r)
	if !ok {
		return
	}
	var req models.CreateMinistryRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.service.Update(r.Context(), caller(r.Context()), ministryID, &req)
	if err != nil {
		h.logFailure(r.Context(), "update ministry failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ministryID, ok := ministryIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), caller(r.Context()), ministryID); err != nil {
		h.logFailure(r.Context(), "delete ministry failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleAssignOfficer(w http.ResponseWriter, r *http.Request) {
	ministryID, ok := ministryIDParam(w, r)
	if !ok {
		return
	}
	var req models.AssignOfficerRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.service.AssignOfficer(r.Context(), caller(r.Context()), ministryID, &req)
	if err != nil {
		h.logFailure(r.Context(), "assign officer failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func ministryIDParam(w http.ResponseWriter, r *http.Request) (id.MinistryID, bool) {
	ministryID, err := id.ParseMinistryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.MinistryID{}, false
	}
	return ministryID, true
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
