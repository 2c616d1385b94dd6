package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"quadralivre/internal/middleware"
	"quadralivre/internal/models"
)

// authed stamps the identity the JWT middleware would have put in the
// request context.
func authed(req *http.Request, userID string, role models.Role) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.CtxUserID, userID)
	ctx = context.WithValue(ctx, middleware.CtxRole, role)
	ctx = context.WithValue(ctx, middleware.CtxSessionID, "test-session")
	return req.WithContext(ctx)
}

// withURLParam injects a chi route parameter the way the router would.
func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}
