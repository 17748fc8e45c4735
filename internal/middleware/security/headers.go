package security

import (
	"net/http"
	"strconv"
	"strings"
)

// HeadersConfig lists the response headers set on every page. Empty values
// are not sent.
type HeadersConfig struct {
	// ScriptSources and ImageSources extend 'self' in the content security
	// policy.
	ScriptSources []string
	ImageSources  []string

	HSTSMaxAge            int
	HSTSIncludeSubdomains bool

	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string
}

// DefaultHeadersConfig allows htmx from unpkg. Evidence images may live on
// any host, so img-src takes every https source.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		ScriptSources: []string{"https://unpkg.com"},
		ImageSources:  []string{"data:", "https:"},

		HSTSMaxAge:            365 * 24 * 60 * 60,
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "strict-origin-when-cross-origin",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "same-origin",
	}
}

// ContentSecurityPolicy renders the CSP header value.
func (c HeadersConfig) ContentSecurityPolicy() string {
	src := func(extra []string) string {
		return strings.Join(append([]string{"'self'"}, extra...), " ")
	}
	return strings.Join([]string{
		"default-src 'self'",
		"script-src " + src(c.ScriptSources),
		"style-src 'self' 'unsafe-inline'",
		"img-src " + src(c.ImageSources),
		"connect-src 'self'",
		"font-src 'self'",
		"object-src 'none'",
		"frame-ancestors 'none'",
		"base-uri 'self'",
		"form-action 'self'",
	}, "; ")
}

func (c HeadersConfig) hsts() string {
	if c.HSTSMaxAge <= 0 {
		return ""
	}
	v := "max-age=" + strconv.Itoa(c.HSTSMaxAge)
	if c.HSTSIncludeSubdomains {
		v += "; includeSubDomains"
	}
	return v
}

type HeadersMiddleware struct {
	headers [][2]string
	hsts    string
}

// NewHeadersMiddleware renders the header values once.
func NewHeadersMiddleware(cfg HeadersConfig) *HeadersMiddleware {
	h := &HeadersMiddleware{hsts: cfg.hsts()}
	for _, kv := range [][2]string{
		{"X-Content-Type-Options", cfg.XContentTypeOptions},
		{"X-Frame-Options", cfg.XFrameOptions},
		{"Content-Security-Policy", cfg.ContentSecurityPolicy()},
		{"Referrer-Policy", cfg.ReferrerPolicy},
		{"Permissions-Policy", cfg.PermissionsPolicy},
		{"Cross-Origin-Opener-Policy", cfg.CrossOriginOpener},
		{"Cross-Origin-Resource-Policy", cfg.CrossOriginResource},
	} {
		if kv[1] != "" {
			h.headers = append(h.headers, kv)
		}
	}
	return h
}

// Middleware sets the headers before the handler runs. HSTS is only sent
// over TLS.
func (h *HeadersMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hdr := w.Header()
		for _, kv := range h.headers {
			hdr.Set(kv[0], kv[1])
		}
		if r.TLS != nil && h.hsts != "" {
			hdr.Set("Strict-Transport-Security", h.hsts)
		}
		next.ServeHTTP(w, r)
	})
}

// StaticAssetMiddleware lets browsers cache embedded assets for maxAge
// seconds.
func StaticAssetMiddleware(maxAge int) func(http.Handler) http.Handler {
	value := "public, max-age=" + strconv.Itoa(maxAge)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxAge > 0 {
				w.Header().Set("Cache-Control", value)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NoStore marks responses as uncacheable. Sheet-backed views are always
// read fresh.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
