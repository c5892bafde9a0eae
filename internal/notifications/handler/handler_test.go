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
	"civiclink/internal/notifications/handler/mocks"
	"civiclink/internal/notifications/models"
	id "civiclink/pkg/domain"
	dErrors "civiclink/pkg/domain-errors"
	"civiclink/pkg/testutil"
)

func newRouter(t *testing.T) (*mocks.MockService, chi.Router) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	h := New(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	h.Register(r)
	return svc, r
}

func TestHandleList(t *testing.T) {
	t.Run("unread only", func(t *testing.T) {
		svc, router := newRouter(t)
		req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodGet, "/notifications?unread_only=true&limit=10"), access.RoleCitizen)
		svc.EXPECT().List(gomock.Any(), caller, true, 0, 10).
			Return(&models.ListResult{Notifications: []*models.Notification{}, Unread: 4, Page: 1, Limit: 10}, nil)

		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "unread_count", float64(4))
	})

	t.Run("bad flag", func(t *testing.T) {
		_, router := newRouter(t)
		req, _ := testutil.AsRole(testutil.NewRequest(t, http.MethodGet, "/notifications?unread_only=maybe"), access.RoleCitizen)
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusBadRequest, "validation_error")
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, router := newRouter(t)
		svc.EXPECT().List(gomock.Any(), gomock.Nil(), false, 0, 20).
			Return(nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/notifications"))
		testutil.AssertStatus(t, rr, http.StatusUnauthorized)
	})
}

func TestHandleUnreadCount(t *testing.T) {
	svc, router := newRouter(t)
	req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodGet, "/notifications/unread-count"), access.RoleNGO)
	svc.EXPECT().UnreadCount(gomock.Any(), caller).Return(7, nil)

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)
	testutil.AssertJSONContains(t, rr, "unread_count", float64(7))
}

func TestReadAndDeleteRoutes(t *testing.T) {
	notificationID := id.NotificationID(uuid.New())

	t.Run("mark read of someone else's notification", func(t *testing.T) {
		svc, router := newRouter(t)
		req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodPut, "/notifications/"+notificationID.String()+"/read"), access.RoleCitizen)
		svc.EXPECT().MarkRead(gomock.Any(), caller, notificationID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "notification not found"))
		testutil.AssertStatusAndError(t, testutil.DoRequest(router, req), http.StatusNotFound, "not_found")
	})

	t.Run("read-all is not an id", func(t *testing.T) {
		svc, router := newRouter(t)
		req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodPut, "/notifications/read-all"), access.RoleCitizen)
		svc.EXPECT().MarkAllRead(gomock.Any(), caller).Return(3, nil)
		rr := testutil.DoRequest(router, req)
		testutil.AssertStatusOK(t, rr)
		testutil.AssertJSONContains(t, rr, "updated", float64(3))
	})

	t.Run("delete read", func(t *testing.T) {
		svc, router := newRouter(t)
		req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodDelete, "/notifications/read"), access.RoleCitizen)
		svc.EXPECT().DeleteRead(gomock.Any(), caller).Return(2, nil)
		rr := testutil.DoRequest(router, req)
		testutil.AssertJSONContains(t, rr, "deleted", float64(2))
	})

	t.Run("delete one", func(t *testing.T) {
		svc, router := newRouter(t)
		req, caller := testutil.AsRole(testutil.NewRequest(t, http.MethodDelete, "/notifications/"+notificationID.String()), access.RoleCitizen)
		svc.EXPECT().Delete(gomock.Any(), caller, notificationID).Return(nil)
		rr := testutil.DoRequest(router, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
