package router

import (
	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	apiHandler "github.com/fastygo/regioncheck/api/handler"
)

type Handlers struct {
	Validation *apiHandler.ValidationHandler
	Health     *apiHandler.HealthHandler
	// Metrics is optional; /metrics is not mounted without it.
	Metrics prometheus.Gatherer
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

// New mounts the report server routes. throttle wraps every route that
// reaches the upstream source.
func New(handlers Handlers, throttle Middleware) *router.Router {
	if throttle == nil {
		throttle = func(next fasthttp.RequestHandler) fasthttp.RequestHandler { return next }
	}
	r := router.New()

	r.GET("/health", handlers.Health.Check)
	if handlers.Metrics != nil {
		r.GET("/metrics", fasthttpadaptor.NewFastHTTPHandler(
			promhttp.HandlerFor(handlers.Metrics, promhttp.HandlerOpts{}),
		))
	}

	r.GET("/api/v1/validation", throttle(handlers.Validation.Validate))
	r.GET("/api/v1/users/in-region", throttle(handlers.Validation.InRegion))
	r.GET("/api/v1/users/{id}/validation", throttle(handlers.Validation.User))

	return r
}
