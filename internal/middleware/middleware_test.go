package middleware

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fastygo/regioncheck/pkg/httpcontext"
)

func okHandler(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(http.StatusOK)
}

func call(h fasthttp.RequestHandler) *fasthttp.RequestCtx {
	var ctx fasthttp.RequestCtx
	ctx.Request.SetRequestURI("/api/v1/validation")
	h(&ctx)
	return &ctx
}

func TestRateLimit_RejectsAfterBurst(t *testing.T) {
	h := RateLimit(0.001, 2, nil)(okHandler)

	assert.Equal(t, http.StatusOK, call(h).Response.StatusCode())
	assert.Equal(t, http.StatusOK, call(h).Response.StatusCode())

	ctx := call(h)
	assert.Equal(t, http.StatusTooManyRequests, ctx.Response.StatusCode())
	assert.Equal(t, "1", string(ctx.Response.Header.Peek("Retry-After")))
	assert.Contains(t, string(ctx.Response.Body()), "RATE_LIMITED")
}

func TestRateLimit_NonPositiveLimitIsUnlimited(t *testing.T) {
	h := RateLimit(0, 1, nil)(okHandler)
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, call(h).Response.StatusCode())
	}
}

func TestRequestLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := RequestLog(zap.New(core))(okHandler)

	ctx := call(h)
	reqID := string(ctx.Response.Header.Peek(httpcontext.RequestIDHeader))
	assert.NotEmpty(t, reqID)

	entries := logs.FilterMessage("http request").All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, reqID, fields["request_id"])
		assert.Equal(t, "/api/v1/validation", fields["path"])
		assert.Equal(t, int64(http.StatusOK), fields["status"])
	}
}
