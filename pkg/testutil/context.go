package testutil

import (
	"net/http"

	"github.com/google/uuid"

	"civiclink/internal/access"
	id "civiclink/pkg/domain"
	"civiclink/pkg/requestcontext"
)

// WithIdentity attaches a resolved caller to the request, as the auth
// middleware would after validating a bearer token.
func WithIdentity(req *http.Request, identity *access.Identity) *http.Request {
	ctx := access.WithIdentity(req.Context(), identity)
	if identity != nil {
		ctx = requestcontext.WithUserID(ctx, identity.UserID)
	}
	return req.WithContext(ctx)
}

// AsRole attaches an active caller with the given role and a fresh user ID.
func AsRole(req *http.Request, role access.Role) (*http.Request, *access.Identity) {
	identity := &access.Identity{UserID: id.UserID(uuid.New()), Role: role, Status: access.StatusActive}
	return WithIdentity(req, identity), identity
}
