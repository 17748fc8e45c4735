package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"donasi/internal/content"
	"donasi/internal/report"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady reports whether the server can render pages. With ?deep=1 it
// also reads the donations sheet, without touching the views' state.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)
	fail := func(name, reason string) {
		checks[name] = reason
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", "failed: templates not loaded")
	} else {
		checks["templates"] = "ok"
	}

	if s.board == nil {
		fail("sheets", "not_configured")
	} else if r.URL.Query().Get("deep") == "1" {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		if _, err := s.board.Service().DonationTotal(ctx); err != nil {
			fail("sheets", fmt.Sprintf("failed: %s", report.UserMessage(err)))
		} else {
			checks["sheets"] = "ok"
		}
	} else {
		checks["sheets"] = "configured"
	}

	checks["rate_limiter"] = map[string]any{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// handleMetrics provides request, security and view metrics in plain text.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	securityMetrics := s.securityDetector.GetMetrics()
	rateLimitMetrics := s.rateLimiter.GetMetrics()
	traceMetrics := s.traceMiddleware.GetMetrics()

	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, "# HELP http_requests_total Total number of HTTP requests\n")
	fmt.Fprintf(w, "# TYPE http_requests_total counter\n")
	fmt.Fprintf(w, "http_requests_total %d\n\n", traceMetrics.TotalRequests)

	fmt.Fprintf(w, "# HELP http_server_errors_total Responses with a 5xx status\n")
	fmt.Fprintf(w, "# TYPE http_server_errors_total counter\n")
	fmt.Fprintf(w, "http_server_errors_total %d\n\n", traceMetrics.ServerErrors)

	fmt.Fprintf(w, "# HELP http_request_duration_ms_avg Mean request duration\n")
	fmt.Fprintf(w, "# TYPE http_request_duration_ms_avg gauge\n")
	fmt.Fprintf(w, "http_request_duration_ms_avg %.2f\n\n", traceMetrics.AverageMs())

	fmt.Fprintf(w, "# HELP rate_limit_hits_total Total rate limit hits\n")
	fmt.Fprintf(w, "# TYPE rate_limit_hits_total counter\n")
	fmt.Fprintf(w, "rate_limit_hits_total %d\n\n", rateLimitMetrics.TotalHits)

	fmt.Fprintf(w, "# HELP active_rate_limit_clients Currently tracked rate limit clients\n")
	fmt.Fprintf(w, "# TYPE active_rate_limit_clients gauge\n")
	fmt.Fprintf(w, "active_rate_limit_clients %d\n\n", rateLimitMetrics.ClientCount)

	fmt.Fprintf(w, "# HELP suspicious_requests_total Total suspicious requests detected\n")
	fmt.Fprintf(w, "# TYPE suspicious_requests_total counter\n")
	fmt.Fprintf(w, "suspicious_requests_total %d\n\n", securityMetrics.SuspiciousRequests)

	if s.board != nil {
		fmt.Fprintf(w, "# HELP view_state Current view state (0 idle, 1 loading, 2 success, 3 error)\n")
		fmt.Fprintf(w, "# TYPE view_state gauge\n")
		fmt.Fprintf(w, "view_state{view=%q} %d\n", s.board.Total.Name(), s.board.Total.Snapshot().State)
		fmt.Fprintf(w, "view_state{view=%q} %d\n", s.board.Disbursed.Name(), s.board.Disbursed.Snapshot().State)
		fmt.Fprintf(w, "view_state{view=%q} %d\n", s.board.Donors.Name(), s.board.Donors.Snapshot().State)
		for _, tab := range report.Tabs() {
			if task, ok := s.board.Tab(tab); ok {
				fmt.Fprintf(w, "view_state{view=%q} %d\n", task.Name(), task.Snapshot().State)
			}
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "# HELP uptime_seconds Application uptime in seconds\n")
	fmt.Fprintf(w, "# TYPE uptime_seconds gauge\n")
	fmt.Fprintf(w, "uptime_seconds %.0f\n", time.Since(s.started).Seconds())
}

// pageData is shared by the full pages.
type pageData struct {
	Site      *content.Site
	Copyright string
	Tabs      []tabLink
	Active    report.Tab
}

func (s *Server) newPageData(active report.Tab) pageData {
	return pageData{
		Site:      s.site,
		Copyright: s.site.Copyright(s.now()),
		Tabs:      tabLinks(active),
		Active:    active,
	}
}

// handleIndex renders the landing shell. Each figure is loaded by its own
// partial request.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, NewHTMXResponse(), "index", s.newPageData(report.TabDonasi))
}

// handleReportPage renders the report page with the tab from ?tab= active.
func (s *Server) handleReportPage(w http.ResponseWriter, r *http.Request) {
	tab, ok := report.ParseTab(r.URL.Query().Get("tab"))
	if !ok {
		tab = report.TabDonasi
	}
	s.render(w, r, NewHTMXResponse(), "laporan", s.newPageData(tab))
}

// handlePanel renders one of the static donation panels.
func (s *Server) handlePanel(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, NewHTMXResponse(), name, s.site)
	}
}
