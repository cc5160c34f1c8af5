package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// MailDeliveries counts confirmation email deliveries by outcome.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_mail_deliveries_total",
		Help: "Total number of confirmation email deliveries by outcome",
	}, []string{"outcome"})

	// StorageOperations counts object storage calls by operation and outcome.
	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pressroom_storage_operations_total",
		Help: "Total number of object storage operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// ArticlesArchived counts successful archive-on-delete transitions.
	ArticlesArchived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pressroom_articles_archived_total",
		Help: "Total number of articles moved to the archive table",
	})
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a Fiber handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
