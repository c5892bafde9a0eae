package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"civiclink/internal/access"
	ministrymodels "civiclink/internal/ministry/models"
	"civiclink/internal/performance/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/platform/httputil"
	"civiclink/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

type Service interface {
	MinistryReport(ctx context.Context, ministryID id.MinistryID) (*ministrymodels.Ministry, error)
	Leaderboard(ctx context.Context) (*models.Leaderboard, error)
	PlatformStats(ctx context.Context) (*models.PlatformStats, error)
	Analytics(ctx context.Context, caller *access.Identity, groupBy string) (*models.Analytics, error)
	Dashboard(ctx context.Context, caller *access.Identity) (*models.Dashboard, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/public/leaderboard", h.HandleLeaderboard)
	r.Get("/public/stats", h.HandlePlatformStats)
	r.Get("/ministries/{id}/performance", h.HandleMinistryReport)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/admin/dashboard", h.HandleDashboard)
	r.Get("/admin/analytics", h.HandleAnalytics)
}

func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	board, err := h.service.Leaderboard(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "leaderboard failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, board)
}

func (h *Handler) HandlePlatformStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.PlatformStats(r.Context())
	if err != nil {
		h.logFailure(r.Context(), "platform stats failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) HandleMinistryReport(w http.ResponseWriter, r *http.Request) {
	ministryID, err := id.ParseMinistryID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	m, err := h.service.MinistryReport(r.Context(), ministryID)
	if err != nil {
		h.logFailure(r.Context(), "ministry report failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"ministry_id":       m.ID,
		"name":              m.Name,
		"performance_stats": m.Stats,
	})
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Dashboard(r.Context(), caller(r.Context()))
	if err != nil {
		h.logFailure(r.Context(), "admin dashboard failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

func (h *Handler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Analytics(r.Context(), caller(r.Context()), r.URL.Query().Get("group_by"))
	if err != nil {
		h.logFailure(r.Context(), "analytics failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
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
