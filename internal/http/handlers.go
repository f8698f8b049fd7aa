package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports 503 until the store answers a ping.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status, code := "ready", http.StatusOK
	checks := map[string]string{"store": "ok"}
	if err := s.svc.Ping(ctx); err != nil {
		status, code = "not_ready", http.StatusServiceUnavailable
		checks["store"] = fmt.Sprintf("failed: %v", err)
		s.logger.WarnContext(ctx, "Readiness check failed", "error", err.Error())
	}

	NewJSONResponse().Status(code).Body(map[string]any{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics exposes request, rate limit and security counters in plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	traceMetrics := s.traceMiddleware.GetMetrics()
	rateMetrics := s.rateLimiter.GetMetrics()
	securityMetrics := s.securityDetector.GetMetrics()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "expense_api_uptime_seconds %d\n", int64(time.Since(s.started).Seconds()))
	fmt.Fprintf(w, "expense_api_requests_total %d\n", traceMetrics.TotalRequests)
	fmt.Fprintf(w, "expense_api_server_errors_total %d\n", traceMetrics.ServerErrors)
	fmt.Fprintf(w, "expense_api_last_request_duration_us %d\n", traceMetrics.LastDurationUs)
	fmt.Fprintf(w, "expense_api_rate_limited_total %d\n", rateMetrics.Rejected)
	fmt.Fprintf(w, "expense_api_rate_limit_clients %d\n", rateMetrics.ClientCount)
	fmt.Fprintf(w, "expense_api_suspicious_requests_total %d\n", securityMetrics.SuspiciousRequests)
	fmt.Fprintf(w, "expense_api_invalid_ip_total %d\n", securityMetrics.InvalidIPAttempts)
}
