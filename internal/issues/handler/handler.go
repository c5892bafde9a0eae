package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"civiclink/internal/access"
	"civiclink/internal/issues/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	Create(ctx context.Context, caller *access.Identity, req *models.CreateIssueRequest) (*models.Issue, error)
	Get(ctx context.Context, issueID id.IssueID) (*models.Issue, error)
	List(ctx context.Context, filter models.Filter) (*models.ListResult, error)
	Search(ctx context.Context, query string, filter models.Filter) (*models.ListResult, error)
	CrisisMap(ctx context.Context) ([]*models.Issue, error)
	Update(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.UpdateIssueRequest) (*models.Issue, error)
	Delete(ctx context.Context, caller *access.Identity, issueID id.IssueID) error
	ToggleVerification(ctx context.Context, caller *access.Identity, issueID id.IssueID) (*models.VerificationResult, error)
	Respond(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.RespondRequest) (*models.Issue, error)
	UpdateStatus(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.UpdateStatusRequest) (*models.Issue, error)
	Claim(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.ClaimRequest) (*models.Issue, error)
	UpdateClaim(ctx context.Context, caller *access.Identity, issueID id.IssueID, req *models.UpdateClaimRequest) (*models.Issue, error)
	Close(ctx context.Context, caller *access.Identity, issueID id.IssueID) (*models.Issue, error)
	ActivateCrisis(ctx context.Context, caller *access.Identity, req *models.CrisisRequest) (*models.CrisisResult, error)
}

// Handler exposes the issue registry over HTTP.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the read-only routes that work without a token.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/issues", h.HandleList)
	r.Get("/issues/{id}", h.HandleGet)
	r.Get("/public/search", h.HandleSearch)
	r.Get("/public/crisis-map", h.HandleCrisisMap)
	r.Get("/public/districts", h.HandleDistricts)
	r.Get("/public/categories", h.HandleCategories)
}

// Register mounts the routes that require an authenticated caller.
func (h *Handler) Register(r chi.Router) {
	r.Post("/issues", h.HandleCreate)
	r.Put("/issues/{id}", h.HandleUpdate)
	r.Delete("/issues/{id}", h.HandleDelete)
	r.Post("/issues/{id}/verify", h.HandleVerify)
	r.Post("/issues/{id}/response", h.HandleRespond)
	r.Put("/issues/{id}/status", h.HandleUpdateStatus)
	r.Post("/issues/{id}/claim", h.HandleClaim)
	r.Put("/issues/{id}/claim", h.HandleUpdateClaim)
	r.Post("/issues/{id}/close", h.HandleClose)
	r.Post("/admin/crisis", h.HandleActivateCrisis)
	r.Delete("/admin/issues/{id}", h.HandleDelete)
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	var req models.CreateIssueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.service.Create(ctx, caller(ctx), &req)
	if err != nil {
		h.logFailure(ctx, "create issue failed", err)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "issue reported",
		"request_id", requestID,
		"issue_id", issue.ID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, issue)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	issue, err := h.service.Get(r.Context(), issueID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logFailure(r.Context(), "list issues failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	page := httputil.ParsePage(r)
	filter := models.Filter{Offset: page.Offset(), Limit: page.Limit}
	res, err := h.service.Search(r.Context(), r.URL.Query().Get("q"), filter)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleCrisisMap(w http.ResponseWriter, r *http.Request) {
	issues, err := h.service.CrisisMap(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "crisis map failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"issues": issues, "count": len(issues)})
}

func (h *Handler) HandleDistricts(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"districts": models.Districts()})
}

func (h *Handler) HandleCategories(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"categories": models.CategoryLabels()})
}

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	var req models.UpdateIssueRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.service.Update(r.Context(), caller(r.Context()), issueID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), caller(r.Context()), issueID); err != nil {
		h.logFailure(r.Context(), "delete issue failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	res, err := h.service.ToggleVerification(r.Context(), caller(r.Context()), issueID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) HandleRespond(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	var req models.RespondRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.service.Respond(r.Context(), caller(r.Context()), issueID, &req)
	if err != nil {
		h.logFailure(r.Context(), "government response failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	var req models.UpdateStatusRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.service.UpdateStatus(r.Context(), caller(r.Context()), issueID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	var req models.ClaimRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.service.Claim(r.Context(), caller(r.Context()), issueID, &req)
	if err != nil {
		h.logFailure(r.Context(), "claim failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) HandleUpdateClaim(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	var req models.UpdateClaimRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.service.UpdateClaim(r.Context(), caller(r.Context()), issueID, &req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) HandleClose(w http.ResponseWriter, r *http.Request) {
	issueID, ok := h.issueID(w, r)
	if !ok {
		return
	}
	issue, err := h.service.Close(r.Context(), caller(r.Context()), issueID)
	if err != nil {
		h.logFailure(r.Context(), "close issue failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) HandleActivateCrisis(w http.ResponseWriter, r *http.Request) {
	var req models.CrisisRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := h.service.ActivateCrisis(r.Context(), caller(r.Context()), &req)
	if err != nil {
		h.logFailure(r.Context(), "crisis activation failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

// ParseFilter reads list filters and pagination from the query string.
func ParseFilter(r *http.Request) (models.Filter, error) {
	q := r.URL.Query()
	page := httputil.ParsePage(r)
	f := models.Filter{
		District: q.Get("district"),
		Sort:     models.SortNewest,
		Offset:   page.Offset(),
		Limit:    page.Limit,
	}
	if v := q.Get("category"); v != "" {
		c, err := models.ParseCategory(v)
		if err != nil {
			return f, err
		}
		f.Category = c
	}
	if v := q.Get("status"); v != "" {
		st, err := models.ParseStatus(v)
		if err != nil {
			return f, err
		}
		f.Statuses = []models.Status{st}
	}
	if v := q.Get("is_crisis"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, dErrors.New(dErrors.CodeValidation, "is_crisis must be true or false")
		}
		f.IsCrisis = &b
	}
	if v := q.Get("ministry_id"); v != "" {
		m, err := id.ParseMinistryID(v)
		if err != nil {
			return f, err
		}
		f.MinistryID = &m
	}
	if v := q.Get("ngo_id"); v != "" {
		n, err := id.ParseNGOID(v)
		if err != nil {
			return f, err
		}
		f.NGOID = &n
	}
	if v := q.Get("reporter_id"); v != "" {
		u, err := id.ParseUserID(v)
		if err != nil {
			return f, err
		}
		f.ReporterID = &u
	}
	switch models.Sort(q.Get("sort")) {
	case "", models.SortNewest:
	case models.SortMostVerified:
		f.Sort = models.SortMostVerified
	default:
		return f, dErrors.New(dErrors.CodeValidation, "sort must be newest or verifications")
	}
	return f, nil
}

func (h *Handler) issueID(w http.ResponseWriter, r *http.Request) (id.IssueID, bool) {
	issueID, err := id.ParseIssueID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.IssueID{}, false
	}
	return issueID, true
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

// caller returns the identity resolved by the auth middleware, or nil.
func caller(ctx context.Context) *access.Identity {
	identity, _ := access.FromContext(ctx)
	return identity
}
