package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civiclink/internal/access"
	issuemodels "civiclink/internal/issues/models"
	"civiclink/internal/ngo/models"
	"civiclink/internal/ngo/service"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Register(ctx context.Context, caller *access.Identity, req *models.RegisterRequest) (*models.NGO, error)
	Approve(ctx context.Context, caller *access.Identity, ngoID id.NGOID) (*models.NGO, error)
	Pending(ctx context.Context, caller *access.Identity, offset, limit int) (*service.ListResult, error)
	List(ctx context.Context, offset, limit int) (*service.ListResult, error)
	Get(ctx context.Context, caller *access.Identity, ngoID id.NGOID) (*models.NGO, error)
	Mine(ctx context.Context, caller *access.Identity) (*models.NGO, error)
	Delete(ctx context.Context, caller *access.Identity, ngoID id.NGOID) error
	UpdateProfile(ctx context.Context, caller *access.Identity, req *models.UpdateProfileRequest) (*models.NGO, error)
	AvailableIssues(ctx context.Context, caller *access.Identity, category string, offset, limit int) (*issuemodels.ListResult, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts routes served without authentication. Get still sees
// the caller when the optional auth middleware resolved one.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/ngos", h.HandleList)
	r.Get("/ngos/{id}", h.HandleGet)
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/ngos", h.HandleRegister)
	r.Get("/ngos/me", h.HandleMine)
	r.Put("/ngos/me", h.HandleUpdateProfile)
	r.Get("/ngos/me/available-issues", h.HandleAvailableIssues)
	r.Get("/admin/ngos/pending", h.HandlePending)
	r.Post("/admin/ngos/{id}/approve", h.HandleApprove)
	r.Delete("/admin/ngos/{id}", h.HandleDelete)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePage(r)
	res, err := h.service.List(r.Context(), page.Offset(), page.Limit)
	if err != nil {
		h.logFailure(r.Context(), "list ngos failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ngoID, ok := ngoIDParam(w, r)
	if !ok {
		return
	}
	n, err := h.service.Get(r.Context(), caller(r.Context()), ngoID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	n, err := h.service.Register(r.Context(), caller(r.Context()), &req)
	if err != nil {
		h.logFailure(r.Context(), "register ngo failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.Mine(r.Context(), caller(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	n, err := h.service.UpdateProfile(r.Context(), caller(r.Context()), &req)
	if err != nil {
		h.logFailure(r.Context(), "update ngo profile failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) HandleAvailableIssues(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePage(r)
	res, err := h.service.AvailableIssues(r.Context(), caller(r.Context()), r.URL.Query().Get("category"), page.Offset(), page.Limit)
	if err != nil {
		h.logFailure(r.Context(), "list available issues failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandlePending(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePage(r)
	res, err := h.service.Pending(r.Context(), caller(r.Context()), page.Offset(), page.Limit)
	if err != nil {
		h.logFailure(r.Context(), "list pending ngos failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ngoID, ok := ngoIDParam(w, r)
	if !ok {
		return
	}
	n, err := h.service.Approve(r.Context(), caller(r.Context()), ngoID)
	if err != nil {
		h.logFailure(r.Context(), "approve ngo failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ngoID, ok := ngoIDParam(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), caller(r.Context()), ngoID); err != nil {
		h.logFailure(r.Context(), "delete ngo failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func ngoIDParam(w http.ResponseWriter, r *http.Request) (id.NGOID, bool) {
	ngoID, err := id.ParseNGOID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.NGOID{}, false
	}
	return ngoID, true
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
