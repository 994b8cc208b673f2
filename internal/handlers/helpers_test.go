package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sbilibin2017/gw-messenger/internal/middlewares"
)

// withRoute attaches chi URL params and, when set, the principal to the request.
func withRoute(r *http.Request, principal string, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	if principal != "" {
		ctx = middlewares.WithPrincipal(ctx, principal)
	}
	return r.WithContext(ctx)
}
