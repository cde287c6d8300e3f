// Package ratelimit applies per-endpoint, per-client request limits on top of go-chi/httprate.
package ratelimit

import (
	"net"
	"net/http"

	"github.com/go-chi/httprate"
)

// Middleware returns a handler wrapper enforcing cfg. Each endpoint config gets its
// own httprate limiter keyed by client IP; whitelisted IPs are never limited.
func Middleware(cfg *Config, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	if cfg == nil || !cfg.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}

	opts := []httprate.Option{httprate.WithKeyFuncs(httprate.KeyByIP)}
	if onLimit != nil {
		opts = append(opts, httprate.WithLimitHandler(onLimit))
	}

	return func(next http.Handler) http.Handler {
		limited := make(map[*EndpointConfig]http.Handler, len(cfg.EndpointConfigs))
		for i := range cfg.EndpointConfigs {
			ec := &cfg.EndpointConfigs[i]
			if ec.Limit > 0 {
				limited[ec] = httprate.Limit(ec.Limit, ec.Window, opts...)(next)
			}
		}
		fallback := next
		if cfg.DefaultLimit > 0 {
			fallback = httprate.Limit(cfg.DefaultLimit, cfg.DefaultWindow, opts...)(next)
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Whitelist[clientIP(r)] {
				next.ServeHTTP(w, r)
				return
			}

			ec := MatchEndpoint(r.URL.Path, r.Method, cfg.EndpointConfigs)
			switch {
			case ec == nil:
				fallback.ServeHTTP(w, r)
			case ec.Limit == 0:
				next.ServeHTTP(w, r)
			default:
				limited[ec].ServeHTTP(w, r)
			}
		})
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
