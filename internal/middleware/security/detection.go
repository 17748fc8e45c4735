// Package security sets response headers and screens out probing traffic
// before it reaches the donation pages.
package security

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"donasi/internal/log"
)

type DetectionMetrics struct {
	SuspiciousRequests int64
}

// Detector flags probing requests and resolves visitor addresses behind
// trusted proxies.
type Detector struct {
	suspicious atomic.Int64
	logger     *log.Logger

	mu      sync.RWMutex
	proxies []netip.Prefix
}

var probePaths = []string{
	"../", "..\\", ".env", ".git", ".ssh", "etc/passwd", "cmd.exe",
	"wp-admin", "wp-login", "phpmyadmin", "admin.php", "config.php",
	"eval(", "javascript:", "<script", "union select",
}

var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "zgrab",
}

// rejectedMethods are answered with 405 instead of being served.
var rejectedMethods = []string{"TRACE", "TRACK", "DEBUG", "CONNECT"}

const (
	maxURLLength = 2048
	maxProxyHops = 5
)

// NewDetector trusts loopback and private networks as proxies.
func NewDetector(logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.Discard()
	}
	return &Detector{
		logger: logger.WithComponent(log.ComponentSecurity),
		proxies: []netip.Prefix{
			netip.MustParsePrefix("127.0.0.0/8"),
			netip.MustParsePrefix("::1/128"),
			netip.MustParsePrefix("10.0.0.0/8"),
			netip.MustParsePrefix("172.16.0.0/12"),
			netip.MustParsePrefix("192.168.0.0/16"),
		},
	}
}

// DetectSuspiciousRequest reports whether r looks like a scan or probe and
// counts it.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	hit := slices.Contains(rejectedMethods, r.Method) ||
		containsAny(strings.ToLower(r.URL.Path), probePaths) ||
		containsAny(strings.ToLower(r.URL.RawQuery), probePaths) ||
		containsAny(strings.ToLower(r.UserAgent()), scannerAgents) ||
		len(r.URL.String()) > maxURLLength ||
		strings.Count(r.Header.Get("X-Forwarded-For"), ",") > maxProxyHops
	if hit {
		d.suspicious.Add(1)
	}
	return hit
}

func containsAny(s string, needles []string) bool {
	return slices.ContainsFunc(needles, func(n string) bool { return strings.Contains(s, n) })
}

// Middleware logs suspicious requests and rejects the unusual methods.
// Everything else is served.
func (d *Detector) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !d.DetectSuspiciousRequest(r) {
			next.ServeHTTP(w, r)
			return
		}
		d.logger.WarnContext(r.Context(), "Suspicious request",
			log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()).
				WithClientIP(d.ExtractClientIP(r)).
				ToSlice()...)
		if slices.Contains(rejectedMethods, r.Method) {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ExtractClientIP returns the visitor address. Forwarding headers are only
// believed when the direct peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !d.trusted(peer.Unmap()) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return host
}

func (d *Detector) trusted(addr netip.Addr) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.ContainsFunc(d.proxies, func(p netip.Prefix) bool { return p.Contains(addr) })
}

func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{SuspiciousRequests: d.suspicious.Load()}
}

// AddTrustedProxy trusts forwarding headers from cidr.
func (d *Detector) AddTrustedProxy(cidr string) error {
	p, err := netip.ParsePrefix(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}
	d.mu.Lock()
	d.proxies = append(d.proxies, p.Masked())
	d.mu.Unlock()
	return nil
}
