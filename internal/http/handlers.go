package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Truncate(time.Second).String(),
	}).Write(w)
}

// handleReady checks that the ledger can be read
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := map[string]any{}

	if _, err := s.backend.Snapshot(ctx); err != nil {
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err)
		checks["storage"] = "failed"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["storage"] = "ok"
	}
	checks["summary_cache"] = s.summaries.Stats()

	NewResponse().Status(httpStatus).JSON(map[string]any{
		"status": status,
		"checks": checks,
	}).Write(w)
}

// handleMetrics exposes process counters as plain text, one per line.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	reqs := s.tracer.GetMetrics()
	limits := s.limiter.GetMetrics()
	sec := s.detector.GetMetrics()
	cs := s.summaries.Stats()

	var b strings.Builder
	write := func(name string, v int64) {
		fmt.Fprintf(&b, "enriquecer_%s %d\n", name, v)
	}
	write("uptime_seconds", int64(s.now().Sub(s.started).Seconds()))
	write("http_requests_total", reqs.TotalRequests)
	write("http_response_time_avg_us", reqs.AverageResponseTime)
	write("rate_limit_hits_total", limits.TotalHits)
	write("rate_limit_clients", limits.ClientCount)
	write("security_suspicious_requests_total", sec.SuspiciousRequests)
	write("security_invalid_ip_total", sec.InvalidIPAttempts)
	write("summary_cache_entries", int64(cs.Size))
	write("summary_cache_hits_total", cs.Hits)
	write("summary_cache_misses_total", cs.Misses)

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = w.Write([]byte(b.String()))
}
