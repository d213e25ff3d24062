package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bloggazers_redis_errors_total",
		Help: "Total number of Redis command errors, labeled by command.",
	},
	[]string{"command"},
)

// ViewIncrements counts accepted (deduplicated) view registrations.
var ViewIncrements = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "bloggazers_post_view_increments_total",
		Help: "Total number of post view increments applied.",
	},
)

// InitMetrics creates the Prometheus HTTP metrics middleware for the service.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus handler as a fiber.Handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
