package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fastygo/regioncheck/api/transport"
)

// RateLimit throttles the wrapped handler with a shared token bucket. Every
// validation request fans out to the upstream, so the bucket protects it
// rather than this server.
func RateLimit(limit float64, burst int, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if burst <= 0 {
		burst = 1
	}
	lim := rate.NewLimiter(rate.Limit(limit), burst)
	if limit <= 0 {
		lim = rate.NewLimiter(rate.Inf, burst)
	}

	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if !lim.Allow() {
				logger.Warn("rate limit exceeded",
					zap.String("path", string(ctx.Path())),
					zap.String("remote_addr", ctx.RemoteAddr().String()))
				ctx.Response.Header.Set("Retry-After", "1")
				ctx.Response.Header.SetContentType("application/json")
				ctx.SetStatusCode(http.StatusTooManyRequests)
				body, _ := json.Marshal(transport.NewError("RATE_LIMITED", "too many requests", nil))
				ctx.SetBody(body)
				return
			}
			next(ctx)
		}
	}
}
