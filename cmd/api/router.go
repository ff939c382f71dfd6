package main

import (
	"net/http"

	"archiveapi/internal/archive"
	"archiveapi/internal/config"
	"archiveapi/internal/httpx"
	"archiveapi/internal/metrics"
)

const (
	apiName    = "Internet Archive Feature Films API"
	apiVersion = "0.1.0"
)

// readinessChecker is satisfied by the upstream client.
type readinessChecker interface {
	Ready() bool
}

// newRouter registers every route and wraps the mux in the middleware chain.
// The returned func releases background resources held by the middleware.
func newRouter(cfg config.Config, svc *archive.Service, upstream readinessChecker) (http.Handler, func()) {
	archiveHandler := archive.NewHTTPHandler(svc)

	router := http.NewServeMux()

	router.HandleFunc("GET /{$}", rootInfo)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.Text(w, http.StatusOK, "ok")
	})
	router.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if upstream != nil && !upstream.Ready() {
			httpx.Text(w, http.StatusServiceUnavailable, "upstream circuit open")
			return
		}
		httpx.Text(w, http.StatusOK, "ready")
	})
	router.Handle("GET /metrics", metrics.Handler())

	routes := map[string]http.HandlerFunc{
		"GET /api/v1/explore":                           archiveHandler.Explore,
		"GET /api/v1/collections/{collection_id}":       archiveHandler.GetCollection,
		"GET /api/v1/collections/{collection_id}/items": archiveHandler.ListCollectionItems,
		"GET /api/v1/videos/{video_id}":                 archiveHandler.GetVideo,
	}
	for pattern, h := range routes {
		router.Handle(pattern, metrics.InstrumentRoute(pattern, h))
	}

	middlewares := []func(http.Handler) http.Handler{
		httpx.RequestIDMiddleware,
		httpx.AccessLogMiddleware,
		httpx.RecoveryMiddleware,
		httpx.SecurityHeadersMiddleware(cfg.Server.EnableHSTS),
		httpx.CORSMiddleware(cfg.CORS.Origins),
	}

	cleanup := func() {}
	if !cfg.RateLimit.Disabled {
		rl := httpx.NewRateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
		middlewares = append(middlewares, rl.Middleware)
		cleanup = rl.Stop
	}

	return httpx.Chain(router, middlewares...), cleanup
}

// @Summary API info
// @Description Name, version and entry points of the API
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func rootInfo(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]interface{}{
		"name":        apiName,
		"version":     apiVersion,
		"description": "API facade for accessing Internet Archive Video Content",
		"docs_url":    "/docs",
		"explore_url": "/api/v1/explore",
		"endpoints": map[string]string{
			"explore":            "/api/v1/explore",
			"collection_details": "/api/v1/collections/{collection_id}",
			"collection_items":   "/api/v1/collections/{collection_id}/items",
			"video_details":      "/api/v1/videos/{video_id}",
		},
	})
}
