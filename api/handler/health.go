package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/regioncheck/api/transport"
	"github.com/fastygo/regioncheck/internal/infrastructure/monitor"
	"github.com/fastygo/regioncheck/pkg/httpcontext"
)

// StatusSource reports the last known upstream state.
type StatusSource interface {
	GetStatus() monitor.Status
}

type HealthHandler struct {
	baseHandler
	monitor StatusSource
}

func NewHealthHandler(mon StatusSource, adapter *httpcontext.Adapter, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		baseHandler: newBaseHandler(adapter, logger),
		monitor:     mon,
	}
}

// @Summary Health check
// @Tags health
// @Router /health [get]
func (h *HealthHandler) Check(ctx *fasthttp.RequestCtx) {
	status := h.monitor.GetStatus()
	payload := map[string]interface{}{
		"timestamp": time.Now().UTC(),
		"services": map[string]interface{}{
			"upstream": map[string]interface{}{
				"online":     status.Upstream,
				"latency_ms": status.Latency.Milliseconds(),
				"last_check": status.LastCheck,
				"last_error": status.LastError,
			},
		},
	}

	if status.Upstream {
		h.respondSuccess(ctx, http.StatusOK, payload)
		return
	}
	h.respondJSON(ctx, http.StatusServiceUnavailable, transport.NewError("DEGRADED", "upstream unreachable", payload))
}
