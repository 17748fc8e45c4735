package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"donasi/internal/core"
)

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(nil)
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{"direct", "203.0.113.9:5000", nil, "203.0.113.9"},
		{"untrusted forwarder ignored", "203.0.113.9:5000", map[string]string{"X-Forwarded-For": "198.51.100.1"}, "203.0.113.9"},
		{"trusted proxy xff", "10.0.0.2:80", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.2"}, "198.51.100.1"},
		{"trusted proxy real ip", "127.0.0.1:80", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"trusted proxy bad header", "192.168.1.1:80", map[string]string{"X-Forwarded-For": "garbage"}, "192.168.1.1"},
		{"no port", "198.51.100.3", nil, "198.51.100.3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Errorf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectSuspiciousRequest(t *testing.T) {
	d := NewDetector(nil)
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   bool
	}{
		{"landing", http.MethodGet, "/", "Mozilla/5.0", false},
		{"report", http.MethodGet, "/ui/laporan/penyaluran/3", "Mozilla/5.0", false},
		{"dotenv", http.MethodGet, "/.env", "Mozilla/5.0", true},
		{"traversal query", http.MethodGet, "/laporan?f=../../etc/passwd", "", true},
		{"scanner", http.MethodGet, "/", "sqlmap/1.7", true},
		{"trace method", "TRACE", "/", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got := d.DetectSuspiciousRequest(r); got != tt.want {
				t.Errorf("DetectSuspiciousRequest() = %v, want %v", got, tt.want)
			}
		})
	}
	if d.GetMetrics().SuspiciousRequests != 4 {
		t.Errorf("metrics = %+v", d.GetMetrics())
	}
}

func TestDetectorMiddlewareRejectsTrace(t *testing.T) {
	h := NewDetector(nil).Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("TRACE", "/", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("TRACE status = %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/wp-admin", nil))
	if rr.Code != http.StatusNoContent {
		t.Errorf("GET status = %d, suspicious GETs are only logged", rr.Code)
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.NotFoundHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Header().Get("X-Frame-Options") != "DENY" || rr.Header().Get("Content-Security-Policy") == "" {
		t.Errorf("headers = %v", rr.Header())
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HSTS set on plain HTTP")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.TLS = &tls.ConnectionState{}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, r)
	if got := rr.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestContentSecurityPolicy(t *testing.T) {
	csp := DefaultHeadersConfig().ContentSecurityPolicy()
	for _, want := range []string{
		"script-src 'self' https://unpkg.com",
		"img-src 'self' data: https:",
		"frame-ancestors 'none'",
	} {
		if !strings.Contains(csp, want) {
			t.Errorf("CSP %q missing %q", csp, want)
		}
	}
}

// imgAllowed reports whether the img-src directive of csp admits rawURL.
func imgAllowed(csp, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	for _, d := range strings.Split(csp, ";") {
		fields := strings.Fields(d)
		if len(fields) == 0 || fields[0] != "img-src" {
			continue
		}
		for _, src := range fields[1:] {
			switch {
			case src == u.Scheme+":":
				return true
			case strings.HasPrefix(src, "https://*."):
				if u.Scheme == "https" && strings.HasSuffix(u.Host, src[len("https://*"):]) {
					return true
				}
			case src == u.Scheme+"://"+u.Host:
				return true
			}
		}
	}
	return false
}

func TestContentSecurityPolicyAllowsEvidenceThumbnails(t *testing.T) {
	csp := DefaultHeadersConfig().ContentSecurityPolicy()
	tests := []struct {
		value string
		kind  core.EvidenceKind
	}{
		{"https://drive.google.com/file/d/abc123/view", core.EvidenceDrive},
		{"https://i.imgur.com/a.jpg", core.EvidenceImage},
		{"https://cdn.example.org/bukti/transfer.png", core.EvidenceImage},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			ev := core.ClassifyEvidence(tt.value)
			if ev.Kind != tt.kind {
				t.Fatalf("kind = %q, want %q", ev.Kind, tt.kind)
			}
			if !imgAllowed(csp, ev.Thumbnail) {
				t.Errorf("CSP %q blocks thumbnail %q", csp, ev.Thumbnail)
			}
		})
	}
	if imgAllowed(csp, "http://i.imgur.com/a.jpg") {
		t.Error("plain http images should stay blocked")
	}
}

func TestAddTrustedProxy(t *testing.T) {
	d := NewDetector(nil)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.9:443"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	if got := d.ExtractClientIP(r); got != "203.0.113.9" {
		t.Fatalf("before: ExtractClientIP() = %q", got)
	}
	if err := d.AddTrustedProxy("203.0.113.0/24"); err != nil {
		t.Fatal(err)
	}
	if got := d.ExtractClientIP(r); got != "198.51.100.1" {
		t.Errorf("after: ExtractClientIP() = %q", got)
	}
	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Error("expected error for invalid CIDR")
	}
}
