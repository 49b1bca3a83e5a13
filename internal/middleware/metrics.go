package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis errors by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ladle_redis_errors_total",
	Help: "Total number of Redis errors by command",
}, []string{"command"})

var (
	promOnce sync.Once
	promInst *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// Collectors register against the default registry, so the instance is shared
// across repeated server constructions.
func InitMetrics(service string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInst = fiberprometheus.New(service)
	})
	return promInst
}

// MetricsMiddleware returns the Fiber handler that records request metrics.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
