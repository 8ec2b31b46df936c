package server

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// GuardLimits bounds per-client activity inside one counting window.
type GuardLimits struct {
	Window            time.Duration
	RequestsPerWindow int
	FailedAuthAlert   int
	HighRateLogEvery  int
}

// DefaultGuardLimits returns the production limits.
func DefaultGuardLimits() GuardLimits {
	return GuardLimits{
		Window:            ActivityWindow,
		RequestsPerWindow: RequestsPerWindowLimit,
		FailedAuthAlert:   FailedAuthAlertCount,
		HighRateLogEvery:  HighRateLogEvery,
	}
}

type clientActivity struct {
	requests   int
	failedAuth int
}

// ClientGuard counts requests and failed authentications per client address
// over a fixed window. All counters reset together when the window rolls.
type ClientGuard struct {
	mu          sync.Mutex
	limits      GuardLimits
	now         func() time.Time
	windowStart time.Time
	clients     map[string]*clientActivity
}

// NewClientGuard creates a guard. Zero fields in limits take the defaults.
func NewClientGuard(limits GuardLimits) *ClientGuard {
	def := DefaultGuardLimits()
	if limits.Window <= 0 {
		limits.Window = def.Window
	}
	if limits.RequestsPerWindow <= 0 {
		limits.RequestsPerWindow = def.RequestsPerWindow
	}
	if limits.FailedAuthAlert <= 0 {
		limits.FailedAuthAlert = def.FailedAuthAlert
	}
	if limits.HighRateLogEvery <= 0 {
		limits.HighRateLogEvery = def.HighRateLogEvery
	}
	return &ClientGuard{
		limits:      limits,
		now:         time.Now,
		windowStart: time.Now(),
		clients:     make(map[string]*clientActivity),
	}
}

// activity returns the counters for ip in the current window. Caller holds mu.
func (g *ClientGuard) activity(ip string) *clientActivity {
	if now := g.now(); now.Sub(g.windowStart) > g.limits.Window {
		g.clients = make(map[string]*clientActivity)
		g.windowStart = now
	}
	a, ok := g.clients[ip]
	if !ok {
		a = &clientActivity{}
		g.clients[ip] = a
	}
	return a
}

// Allow counts one request from ip and reports whether it is within the limit.
func (g *ClientGuard) Allow(ctx context.Context, ip string) bool {
	g.mu.Lock()
	a := g.activity(ip)
	a.requests++
	count := a.requests
	g.mu.Unlock()

	if count <= g.limits.RequestsPerWindow {
		return true
	}
	if count%g.limits.HighRateLogEvery == 0 {
		logger.FromContext(ctx).Warn(SecurityAlertHighRate,
			"ip", ip,
			"count_in_window", count,
			"window", g.limits.Window)
	}
	return false
}

// FailedAuth counts one rejected credential from ip and returns the running total.
func (g *ClientGuard) FailedAuth(ctx context.Context, ip string) int {
	g.mu.Lock()
	a := g.activity(ip)
	a.failedAuth++
	count := a.failedAuth
	g.mu.Unlock()

	if count >= g.limits.FailedAuthAlert {
		logger.FromContext(ctx).Warn(SecurityAlertFailedAuth, "ip", ip, "count", count)
	}
	return count
}

// Requests reports how many requests ip made in the current window.
func (g *ClientGuard) Requests(ip string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	if a, ok := g.clients[ip]; ok {
		return a.requests
	}
	return 0
}

// ProxySet is the set of peers allowed to report a client address through
// X-Forwarded-For. Entries are single addresses or CIDR prefixes.
type ProxySet []netip.Prefix

// ParseProxySet parses entries, skipping and logging the ones it cannot read.
func ParseProxySet(entries []string) ProxySet {
	var set ProxySet
	for _, raw := range entries {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if p, err := netip.ParsePrefix(raw); err == nil {
			set = append(set, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			logger.Warn(LogMsgBadTrustedProxy, "entry", raw, "error", err)
			continue
		}
		set = append(set, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return set
}

// Contains reports whether ip falls inside any entry.
func (s ProxySet) Contains(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range s {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ClientAddr resolves the caller address. X-Forwarded-For is honoured only
// when the direct peer is a trusted proxy, and then only its last hop.
func (s ProxySet) ClientAddr(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}
	if !s.Contains(peer) {
		return peer
	}
	forwarded := r.Header.Get(HeaderForwardedFor)
	if forwarded == "" {
		return peer
	}
	hops := strings.Split(forwarded, ",")
	if last := strings.TrimSpace(hops[len(hops)-1]); last != "" {
		return last
	}
	return peer
}

// ClientIPMiddleware stores the resolved caller address in the request context.
func ClientIPMiddleware(proxies ProxySet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logger.WithClientIP(r.Context(), proxies.ClientAddr(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func isPublicPath(path string) bool {
	for _, p := range PublicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

// AuthMiddleware requires the X-API-Key header outside the public paths.
func AuthMiddleware(apiKey string, guard *ClientGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			provided := r.Header.Get(HeaderAPIKey)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
				ip := logger.ClientIP(r.Context())
				attempts := guard.FailedAuth(r.Context(), ip)
				logger.FromContext(r.Context()).Warn(LogMsgAuthFailed,
					"path", r.URL.Path,
					"has_key", provided != "",
					"attempts", attempts)
				http.Error(w, ErrMsgUnauthorized, http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware rejects callers over the guard's request limit.
func RateLimitMiddleware(guard *ClientGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !guard.Allow(r.Context(), logger.ClientIP(r.Context())) {
				w.Header().Set(HeaderRetryAfter, retryAfterSeconds(guard.limits.Window))
				http.Error(w, ErrMsgTooManyRequests, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

// RequestSizeLimitMiddleware caps request bodies at maxBytes.
func RequestSizeLimitMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeadersMiddleware sets the browser hardening headers on every response.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set(HeaderContentType, HeaderValueNoSniff)
			h.Set(HeaderFrameOptions, HeaderValueSameOrigin)
			h.Set(HeaderXSSProtection, HeaderValueXSSBlock)
			h.Set(HeaderReferrerPolicy, HeaderValueReferrerStrictOrigin)
			h.Set(HeaderCacheControl, HeaderValueNoStore)
			next.ServeHTTP(w, r)
		})
	}
}
