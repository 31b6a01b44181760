// Copyright 2025 Hedgehog
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.githedgehog.com/rangemerge/pkg/config"
	"go.githedgehog.com/rangemerge/pkg/ranges"
	"golang.org/x/sync/errgroup"
)

const (
	MergeURL   = "/v1/merge"
	CheckURL   = "/v1/check"
	DomainsURL = "/v1/domains"
	MetricsURL = "/metrics"
	HealthURL  = "/healthz"

	ShutdownTimeout = 10 * time.Second
)

type MergeRequest struct {
	Domain string `json:"domain,omitempty"`
	Input  string `json:"input"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

type service struct {
	cfg     *config.Config
	metrics *Metrics
}

// NewHandler returns the HTTP API handler, cfg should be valid.
func NewHandler(cfg *config.Config, metrics *Metrics) http.Handler {
	svc := &service{
		cfg:     cfg,
		metrics: metrics,
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat(HealthURL))
	r.Use(middleware.Timeout(cfg.RequestTimeout.Duration))

	r.Post(MergeURL, svc.handleMerge)
	r.Post(CheckURL, svc.handleCheck)
	r.Get(DomainsURL, svc.handleDomains)
	r.Handle(MetricsURL, promhttp.HandlerFor(metrics.Registry(), promhttp.HandlerOpts{}))

	return r
}

// Run serves the API until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return errors.Wrapf(err, "invalid config")
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RequestTimeout.Duration + 5*time.Second,
		IdleTimeout:       90 * time.Second,
		Handler:           NewHandler(cfg, NewMetrics()),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Starting server", "listen", cfg.Listen, "domain", cfg.Domain)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "error running server")
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		slog.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		return errors.Wrapf(srv.Shutdown(shutdownCtx), "error shutting down server") //nolint:contextcheck
	})

	return g.Wait() //nolint:wrapcheck
}

func (svc *service) handleMerge(w http.ResponseWriter, r *http.Request) {
	svc.handle(w, r, ranges.Merger.Normalize)
}

func (svc *service) handleCheck(w http.ResponseWriter, r *http.Request) {
	svc.handle(w, r, ranges.Merger.Check)
}

func (svc *service) handle(w http.ResponseWriter, r *http.Request, fn func(ranges.Merger, string) (*ranges.Result, error)) {
	l := slog.With("rid", middleware.GetReqID(r.Context()))

	req := &MergeRequest{}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, svc.cfg.MaxBodyBytes)).Decode(req); err != nil {
		svc.metrics.Requests.WithLabelValues("", ResultBadRequest).Inc()
		writeError(w, http.StatusBadRequest, ResultBadRequest, errors.Wrapf(err, "decoding request"))

		return
	}

	if req.Domain == "" {
		req.Domain = svc.cfg.Domain
	}

	m, ok := ranges.Lookup(req.Domain)
	if !ok {
		svc.metrics.Requests.WithLabelValues("", ResultUnknownDomain).Inc()
		writeError(w, http.StatusNotFound, ResultUnknownDomain, errors.Errorf("unknown domain %q", req.Domain))

		return
	}

	start := time.Now()
	res, err := fn(m, req.Input)
	svc.metrics.MergeDuration.WithLabelValues(req.Domain).Observe(time.Since(start).Seconds())

	if res != nil {
		svc.metrics.InputRanges.WithLabelValues(req.Domain).Observe(float64(res.InputCount))
	}

	if err != nil && res != nil {
		l.Debug("Input not normalized", "domain", req.Domain, "err", err)
		svc.metrics.Requests.WithLabelValues(req.Domain, ResultNotNormalized).Inc()
		writeJSON(w, http.StatusUnprocessableEntity, res)

		return
	}

	if err != nil {
		kind := ResultBadRequest
		switch {
		case errors.Is(err, ranges.ErrBadFormat):
			kind = ResultBadFormat
		case errors.Is(err, ranges.ErrBadNumber):
			kind = ResultBadNumber
		}

		l.Debug("Rejected input", "domain", req.Domain, "kind", kind, "err", err)
		svc.metrics.Requests.WithLabelValues(req.Domain, kind).Inc()
		writeError(w, http.StatusBadRequest, kind, err)

		return
	}

	svc.metrics.Requests.WithLabelValues(req.Domain, ResultOK).Inc()
	writeJSON(w, http.StatusOK, res)
}

func (svc *service) handleDomains(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, ranges.Domains())
}

func writeError(w http.ResponseWriter, status int, kind string, err error) {
	writeJSON(w, status, &ErrorResponse{Error: err.Error(), Kind: kind})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to write response", "err", err)
	}
}
