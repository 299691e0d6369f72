// FilePath: api/middleware/api.middleware.throttle.go
package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	nuts "github.com/vaudience/go-nuts"

	"github.com/verdantlabs/chainsense/internal/errors"
	"github.com/verdantlabs/chainsense/internal/monitoring"
	"github.com/verdantlabs/chainsense/internal/throttle"
)

// ThrottleMiddleware guards mutating routes with the fixed-window limiter
type ThrottleMiddleware struct {
	limiter *throttle.Limiter
	metrics *monitoring.Service
}

// NewThrottleMiddleware creates the middleware around an existing limiter
func NewThrottleMiddleware(limiter *throttle.Limiter, metrics *monitoring.Service) *ThrottleMiddleware {
	return &ThrottleMiddleware{limiter: limiter, metrics: metrics}
}

// Throttle rejects requests from sources that exhausted their window
func (m *ThrottleMiddleware) Throttle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		source := requestSource(r)
		if !m.limiter.Allow(r.Context(), source) {
			m.metrics.Throttled()
			apiErr := errors.NewRateLimitError("too many requests, please try again later", nil)
			nuts.L.Warnf("[Throttle] rejected %s %s from %s", r.Method, r.URL.Path, source)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(apiErr.Code)
			json.NewEncoder(w).Encode(map[string]any{
				"success": false,
				"error":   apiErr.Message,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestSource identifies the caller: the first X-Forwarded-For hop when a
// proxy sits in front, the bare remote address otherwise.
func requestSource(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
