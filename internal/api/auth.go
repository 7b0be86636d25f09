package api

import (
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"

	"meepleden/internal/config"

	"golang.org/x/time/rate"
)

const apiKeyHeaderDefault = "x-api-key"

var errPermissionDenied = fmt.Errorf("permission denied")

// HTTPAuth provides API-key auth for the back-office routes and
// per-client rate limiting for the whole API surface. LIFF-facing
// routes stay open; everything under /api/v1/admin/ requires a key.
type HTTPAuth struct {
	cfg      config.APIConfig
	limiters sync.Map // map[string]*rate.Limiter
}

func NewHTTPAuth(cfg config.APIConfig) *HTTPAuth {
	return &HTTPAuth{cfg: cfg}
}

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.cfg.Auth.Enabled && isAdminPath(r.URL.Path) {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if err == errPermissionDenied {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, err.Error())
				return
			}
		}

		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/api/v1/admin/")
}

func (a *HTTPAuth) headerName() string {
	name := strings.TrimSpace(strings.ToLower(a.cfg.Auth.HeaderAPIKey))
	if name == "" {
		name = apiKeyHeaderDefault
	}
	return name
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.headerName()))
	if apiKey == "" {
		return fmt.Errorf("missing api key header")
	}

	client, ok := a.findClient(apiKey)
	if !ok {
		return fmt.Errorf("invalid api key")
	}

	return a.checkPermissions(client, r)
}

// findClient compares against every configured key so the lookup does
// not leak which prefix matched.
func (a *HTTPAuth) findClient(apiKey string) (config.APIClientKey, bool) {
	var (
		found  config.APIClientKey
		hasHit bool
	)
	for _, k := range a.cfg.Auth.APIKeys {
		if subtle.ConstantTimeCompare([]byte(k.Key), []byte(apiKey)) == 1 {
			found = k
			hasHit = true
		}
	}
	return found, hasHit
}

func (a *HTTPAuth) checkPermissions(client config.APIClientKey, r *http.Request) error {
	required := requiredPermissionHTTP(r)
	if required == "" {
		return nil
	}
	// An empty permission list means allow-all.
	if len(client.Permissions) == 0 {
		return nil
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return nil
		}
	}
	return errPermissionDenied
}

func requiredPermissionHTTP(r *http.Request) string {
	path := r.URL.Path
	switch {
	case strings.HasPrefix(path, "/api/v1/admin/exports/"):
		return "export"
	case strings.HasPrefix(path, "/api/v1/admin/sync/"):
		return "read:sync"
	case strings.HasPrefix(path, "/api/v1/admin/"):
		if r.Method == http.MethodGet {
			return "admin:read"
		}
		return "admin:write"
	}
	return ""
}

func (a *HTTPAuth) checkRateLimit(r *http.Request) error {
	if a.cfg.RateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)
	lim := a.getLimiter(key)
	if !lim.Allow() {
		return fmt.Errorf("rate limit exceeded")
	}
	return nil
}

// clientKey identifies the caller: API key when present, source host
// otherwise.
func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.headerName())); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *HTTPAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.cfg.RateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.cfg.RateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
