package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"civiclink/internal/access"
	"civiclink/internal/issues/handler/mocks"
	"civiclink/internal/issues/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
)

type IssueHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  chi.Router
	caller  *access.Identity
}

func TestIssueHandlerSuite(t *testing.T) {
	suite.Run(t, new(IssueHandlerSuite))
}

func (s *IssueHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.caller = &access.Identity{UserID: id.UserID(uuid.New()), Role: access.RoleCitizen, Status: access.StatusActive}

	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("X-Test-Anonymous") == "" {
				r = r.WithContext(access.WithIdentity(r.Context(), s.caller))
			}
			next.ServeHTTP(w, r)
		})
	})
	h.RegisterPublic(s.router)
	h.Register(s.router)
}

func (s *IssueHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *IssueHandlerSuite) decodeError(rec *httptest.ResponseRecorder) map[string]string {
	var body map[string]string
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func (s *IssueHandlerSuite) TestCreate() {
	s.Run("created", func() {
		issueID := id.IssueID(uuid.New())
		s.service.EXPECT().Create(gomock.Any(), s.caller, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *access.Identity, req *models.CreateIssueRequest) (*models.Issue, error) {
				s.Equal(6.9271, req.Location.Coordinates.Lat)
				s.Equal(79.8612, req.Location.Coordinates.Lng)
				return &models.Issue{ID: issueID, Title: req.Title, Status: models.StatusPending}, nil
			})

		rec := s.do(http.MethodPost, "/issues", map[string]any{
			"title":       "Burst water main",
			"description": "Water has been leaking onto the road since Monday",
			"category":    "water",
			"location": map[string]any{
				"address":     "12 Galle Road",
				"district":    "Colombo",
				"coordinates": []float64{6.9271, 79.8612},
			},
		})
		s.Equal(http.StatusCreated, rec.Code)
		var got models.Issue
		s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
		s.Equal(issueID, got.ID)
	})

	s.Run("unknown field is a bad request", func() {
		rec := s.do(http.MethodPost, "/issues", map[string]any{"title": "x", "bogus": true})
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Equal("bad_request", s.decodeError(rec)["error"])
	})

	s.Run("malformed coordinates report the field reason", func() {
		rec := s.do(http.MethodPost, "/issues", map[string]any{
			"title":    "Burst water main",
			"location": map[string]any{"district": "Colombo", "coordinates": []float64{6.9271}},
		})
		s.Equal(http.StatusBadRequest, rec.Code)
		body := s.decodeError(rec)
		s.Equal("validation_error", body["error"])
		s.Equal("coordinates must be [lat, lng]", body["error_description"])
	})

	s.Run("forbidden role", func() {
		s.service.EXPECT().Create(gomock.Any(), s.caller, gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "role ngo may not perform issue.create"))

		rec := s.do(http.MethodPost, "/issues", map[string]any{"title": "Broken streetlight"})
		s.Equal(http.StatusForbidden, rec.Code)
	})
}

func (s *IssueHandlerSuite) TestList() {
	s.Run("parses filters and pagination", func() {
		ministryID := id.MinistryID(uuid.New())
		s.service.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f models.Filter) (*models.ListResult, error) {
				s.Equal(models.CategoryFlood, f.Category)
				s.Equal([]models.Status{models.StatusVerified}, f.Statuses)
				s.Require().NotNil(f.IsCrisis)
				s.True(*f.IsCrisis)
				s.Equal(ministryID, *f.MinistryID)
				s.Equal(models.SortMostVerified, f.Sort)
				s.Equal(10, f.Offset)
				s.Equal(10, f.Limit)
				return &models.ListResult{Issues: []*models.Issue{}, Page: 2, Limit: 10}, nil
			})

		rec := s.do(http.MethodGet, "/issues?category=flood&status=verified&is_crisis=true&ministry_id="+
			ministryID.String()+"&sort=verifications&page=2&limit=10", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("limit is capped", func() {
		s.service.EXPECT().List(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, f models.Filter) (*models.ListResult, error) {
				s.Equal(100, f.Limit)
				return &models.ListResult{}, nil
			})
		rec := s.do(http.MethodGet, "/issues?limit=5000", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("bad status", func() {
		rec := s.do(http.MethodGet, "/issues?status=closed", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("bad sort", func() {
		rec := s.do(http.MethodGet, "/issues?sort=oldest", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}

func (s *IssueHandlerSuite) TestLifecycleRoutes() {
	issueID := id.IssueID(uuid.New())
	path := "/issues/" + issueID.String()

	s.Run("verify", func() {
		s.service.EXPECT().ToggleVerification(gomock.Any(), s.caller, issueID).
			Return(&models.VerificationResult{Action: "added", Issue: &models.Issue{ID: issueID}}, nil)
		rec := s.do(http.MethodPost, path+"/verify", nil)
		s.Equal(http.StatusOK, rec.Code)
		s.Contains(rec.Body.String(), `"action":"added"`)
	})

	s.Run("claim conflict", func() {
		s.service.EXPECT().Claim(gomock.Any(), s.caller, issueID, &models.ClaimRequest{ActionPlan: "Send volunteers"}).
			Return(nil, dErrors.New(dErrors.CodeConflict, "issue is already claimed"))
		rec := s.do(http.MethodPost, path+"/claim", map[string]string{"action_plan": "Send volunteers"})
		s.Equal(http.StatusConflict, rec.Code)
		s.Equal("issue is already claimed", s.decodeError(rec)["error_description"])
	})

	s.Run("status", func() {
		s.service.EXPECT().UpdateStatus(gomock.Any(), s.caller, issueID, &models.UpdateStatusRequest{Status: "in_progress"}).
			Return(&models.Issue{ID: issueID, Status: models.StatusInProgress}, nil)
		rec := s.do(http.MethodPut, path+"/status", map[string]string{"status": "in_progress"})
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("close", func() {
		s.service.EXPECT().Close(gomock.Any(), s.caller, issueID).
			Return(&models.Issue{ID: issueID, Status: models.StatusSolved, SolutionVerified: true}, nil)
		rec := s.do(http.MethodPost, path+"/close", nil)
		s.Equal(http.StatusOK, rec.Code)
	})

	s.Run("admin delete", func() {
		s.service.EXPECT().Delete(gomock.Any(), s.caller, issueID).Return(nil)
		rec := s.do(http.MethodDelete, "/admin/issues/"+issueID.String(), nil)
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("malformed id", func() {
		rec := s.do(http.MethodPost, "/issues/not-a-uuid/verify", nil)
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("store failure hides the description", func() {
		s.service.EXPECT().Get(gomock.Any(), issueID).
			Return(nil, dErrors.Wrap(io.ErrUnexpectedEOF, dErrors.CodeInternal, "failed to load issue"))
		rec := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusInternalServerError, rec.Code)
		body := s.decodeError(rec)
		s.Equal("internal_error", body["error"])
		s.Empty(body["error_description"])
	})
}

func (s *IssueHandlerSuite) TestPublicReference() {
	rec := s.do(http.MethodGet, "/public/districts", nil)
	s.Equal(http.StatusOK, rec.Code)
	var districts struct {
		Districts []string `json:"districts"`
	}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &districts))
	s.Len(districts.Districts, 25)

	rec = s.do(http.MethodGet, "/public/categories", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), "Waste Management")

	s.Run("search", func() {
		s.service.EXPECT().Search(gomock.Any(), "pothole", models.Filter{Offset: 0, Limit: 20}).
			Return(&models.ListResult{Issues: []*models.Issue{}}, nil)
		rec := s.do(http.MethodGet, "/public/search?q=pothole", nil)
		s.Equal(http.StatusOK, rec.Code)
	})
}
