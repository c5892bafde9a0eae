package handler

import (
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"civiclink/internal/access"
	issuemodels "civiclink/internal/issues/models"
	"civiclink/internal/ngo/handler/mocks"
	"civiclink/internal/ngo/models"
	"civiclink/internal/ngo/service"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, chi.Router) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.RegisterPublic(r)
	h.Register(r)
	return svc, r
}

func TestHandleList(t *testing.T) {
	svc, router := newRouter(t)
	svc.EXPECT().List(gomock.Any(), 20, 20).
		Return(&service.ListResult{NGOs: []*models.NGO{}, Total: 21, Page: 2, Limit: 20}, nil)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ngos?page=2"))
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "total", float64(21))
}

func TestHandleGet(t *testing.T) {
	ngoID := id.NGOID(uuid.New())

	t.Run("anonymous", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().Get(gomock.Any(), gomock.Nil(), ngoID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "ngo not found"))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/ngos/"+ngoID.String()))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("me is not parsed as an id", func(t *testing.T) {
		svc, router := newRouter(t)
		req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodGet, "/ngos/me"), access.RoleNGO)
		svc.EXPECT().Mine(gomock.Any(), caller).Return(&models.NGO{ID: ngoID}, nil)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "id", ngoID.String())
	})
}

func TestHandleRegister(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		svc, router := newRouter(t)
		req, caller := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPost, "/ngos", map[string]any{
			"name":                "Clean Rivers Trust",
			"registration_number": "REG-77",
			"contact_email":       "info@cleanrivers.lk",
			"areas_of_work":       []string{"water"},
		}), access.RoleCitizen)
		svc.EXPECT().Register(gomock.Any(), caller, &models.RegisterRequest{
			Name:               "Clean Rivers Trust",
			RegistrationNumber: "REG-77",
			ContactEmail:       "info@cleanrivers.lk",
			AreasOfWork:        []string{"water"},
		}).Return(&models.NGO{ID: id.NGOID(uuid.New()), Name: "Clean Rivers Trust"}, nil)

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "verified", false)
	})

	t.Run("duplicate registration number", func(t *testing.T) {
		svc, router := newRouter(t)
		req, _ := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPost, "/ngos", map[string]any{
			"name": "Copycat", "registration_number": "REG-77", "contact_email": "a@b.lk",
		}), access.RoleCitizen)
		svc.EXPECT().Register(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeConflict, "registration number is already registered"))

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})
}

func TestHandleAvailableIssues(t *testing.T) {
	svc, router := newRouter(t)
	req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodGet, "/ngos/me/available-issues?category=road&limit=5"), access.RoleNGO)
	svc.EXPECT().AvailableIssues(gomock.Any(), caller, "road", 0, 5).
		Return(&issuemodels.ListResult{Issues: []*issuemodels.Issue{}, Page: 1, Limit: 5}, nil)

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONHasKey(t, rr, "issues")
}

func TestAdminRoutes(t *testing.T) {
	ngoID := id.NGOID(uuid.New())

	t.Run("pending", func(t *testing.T) {
		svc, router := newRouter(t)
		req, admin := testutil.AsRole(testutil.NewRequest(t, http.MethodGet, "/admin/ngos/pending"), access.RoleAdmin)
		svc.EXPECT().Pending(gomock.Any(), admin, 0, 20).Return(&service.ListResult{NGOs: []*models.NGO{}}, nil)
		testutil.AssertStatusOK(t, testutil.DoRequest(router, req))
	})

	t.Run("approve twice", func(t *testing.T) {
		svc, router := newRouter(t)
		req, admin := testutil.AsRole(testutil.NewRequest(t, http.MethodPost, "/admin/ngos/"+ngoID.String()+"/approve"), access.RoleAdmin)
		svc.EXPECT().Approve(gomock.Any(), admin, ngoID).
			Return(nil, dErrors.New(dErrors.CodeConflict, "ngo is already verified"))
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
	})

	t.Run("delete", func(t *testing.T) {
		svc, router := newRouter(t)
		req, admin := testutil.AsRole(testutil.NewRequest(t, http.MethodDelete, "/admin/ngos/"+ngoID.String()), access.RoleAdmin)
		svc.EXPECT().Delete(gomock.Any(), admin, ngoID).Return(nil)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("update profile rejects unknown fields", func(t *testing.T) {
		_, router := newRouter(t)
		req, _ := testutil.AsRole(testutil.NewJSONRequest(t, http.MethodPut, "/ngos/me", map[string]any{"verified": true}), access.RoleNGO)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})
}
