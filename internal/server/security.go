// Package server wraps the drift router with the transport-level protections
// that sit outside it.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

type Options struct {
	RequestsPerMinute int
	Production        bool
	Logger            *zap.Logger
}

// Harden adds security headers and a per-IP rate limit in front of next.
func Harden(next http.Handler, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        opts.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !opts.Production,
	})

	limiter := httprate.Limit(opts.RequestsPerMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger.Warn("rate limit exceeded",
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("path", r.URL.Path),
			)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"too many requests"}`))
		}),
	)

	return secureMiddleware.Handler(limiter(next))
}
