package http

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"donasi/internal/content"
	"donasi/internal/log"
	"donasi/internal/middleware/ratelimit"
	"donasi/internal/middleware/security"
	"donasi/internal/middleware/trace"
	"donasi/internal/report"
	appweb "donasi/web"
)

// Options configures a Server.
type Options struct {
	Addr      string
	Board     *report.Board
	Site      *content.Site
	Logger    *log.Logger
	RateLimit ratelimit.Config
	// Templates overrides the embedded templates; used by tests.
	Templates fs.FS
}

type Server struct {
	http.Server
	templates *template.Template
	board     *report.Board
	site      *content.Site
	logger    *log.Logger
	started   time.Time
	now       func() time.Time

	rateLimiter      *ratelimit.Limiter
	securityDetector *security.Detector
	traceMiddleware  *trace.Middleware

	shutdownOnce sync.Once
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// NewServer configures routes and templates, returning a ready-to-run server.
// A template parse failure is logged and reported by /readyz; pages then
// answer 500.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	site := opts.Site
	if site == nil {
		site = &content.Site{}
	}

	mux := http.NewServeMux()
	s := &Server{
		board:            opts.Board,
		site:             site,
		logger:           logger,
		started:          time.Now(),
		now:              time.Now,
		rateLimiter:      ratelimit.NewLimiter(opts.RateLimit),
		securityDetector: security.NewDetector(logger),
	}
	s.traceMiddleware = trace.NewMiddleware(s.securityDetector.ExtractClientIP, logger)

	tfs := opts.Templates
	if tfs == nil {
		tfs = appweb.TemplatesFS
	}
	t, err := template.New("").Funcs(templateFuncs).ParseFS(tfs, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates",
			log.FieldError, err.Error(),
			log.FieldErrorType, log.ErrorTypeConfiguration)
	} else {
		s.templates = t
	}

	static := http.StripPrefix("/static/", http.FileServer(http.FS(appweb.Static())))
	mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /laporan", s.handleReportPage)

	// Panels carry no sheet data.
	mux.HandleFunc("GET /ui/transfer", s.handlePanel("panel_transfer"))
	mux.HandleFunc("GET /ui/qris", s.handlePanel("panel_qris"))
	mux.HandleFunc("GET /ui/sosmed", s.handlePanel("panel_sosmed"))

	// Every route below reads the spreadsheet.
	mux.Handle("GET /ui/total", s.limited(s.handleTotal))
	mux.Handle("GET /ui/disbursed", s.limited(s.handleDisbursed))
	mux.Handle("GET /ui/donors", s.limited(s.handleDonors))
	mux.Handle("GET /ui/laporan/{tab}", s.limited(s.handleReportTable))
	mux.Handle("GET /ui/laporan/{tab}/{row}", s.limited(s.handleReportDetail))
	mux.Handle("GET /laporan/{file}", s.limited(s.handleReportExport))
	mux.Handle("GET /api/ringkasan", s.limited(s.handleSummaryAPI))
	mux.Handle("GET /api/laporan/{tab}", s.limited(s.handleReportAPI))

	var handler http.Handler = mux
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.securityDetector.Middleware(handler)
	handler = s.traceMiddleware.Middleware(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// limited applies the per-client rate limit and disables caching.
func (s *Server) limited(h http.HandlerFunc) http.Handler {
	limit := s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.securityDetector.ExtractClientIP(r),
			log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Terlalu banyak permintaan, coba lagi nanti").Write(w)
	})
	return limit(security.NoStore(h))
}

// Shutdown stops accepting requests, waits for in-flight sheet reads and
// stops the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
		s.rateLimiter.Stop()
		if s.board == nil {
			return
		}
		done := make(chan struct{})
		go func() {
			s.board.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			if shutdownErr == nil {
				shutdownErr = fmt.Errorf("waiting for sheet reads: %w", ctx.Err())
			}
		}
	})
	return shutdownErr
}

// render executes a named template into a buffer so a failing template
// never leaves a half-written response.
func (s *Server) render(w http.ResponseWriter, r *http.Request, b *HTMXResponseBuilder, name string, data any) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		InternalServerError("Template tidak tersedia").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err.Error(),
			log.FieldOperation, log.OpRender,
			"template", name)
		InternalServerError("Gagal menampilkan halaman").Write(w)
		return
	}
	b.BodyHTML(buf.Bytes()).Write(w)
}
