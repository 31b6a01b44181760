// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const RequestIDHeader = "X-Request-ID"

// requestLog echoes the request id back to the client and logs every request
// once it's served, server errors are logged as warnings.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := middleware.GetReqID(r.Context())
		if rid != "" {
			w.Header().Set(RequestIDHeader, rid)
		}

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			level := slog.LevelDebug
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelWarn
			}

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}

			slog.Log(r.Context(), level, "Request", //nolint:contextcheck
				"rid", rid,
				"method", r.Method,
				"route", route,
				"from", r.RemoteAddr,
				"status", ww.Status(),
				"size", ww.BytesWritten(),
				"took", time.Since(start),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}
