package testutil

import (
	"net/http"

	id "beacon/pkg/domain"
	"beacon/pkg/requestcontext"
)

// WithAuth adds an authenticated user ID and role to the request context.
// This simulates what the auth middleware would do for authenticated requests.
func WithAuth(req *http.Request, userID id.UserID, role string) *http.Request {
	ctx := requestcontext.WithUserID(req.Context(), userID)
	ctx = requestcontext.WithRole(ctx, role)
	return req.WithContext(ctx)
}
