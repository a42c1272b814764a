// Package metrics expone contadores Prometheus del backoffice.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tienda-pos/backoffice-api/internal/application/documents"
	"github.com/tienda-pos/backoffice-api/internal/domain/entity"
)

const namespace = "backoffice"

// Registry agrupa las métricas en un registro propio (no el global).
type Registry struct {
	registry         *prometheus.Registry
	documentsWritten *prometheus.CounterVec
	numberConflicts  prometheus.Counter
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var _ documents.Metrics = (*Registry)(nil)

// New registra las métricas de negocio, las HTTP y las del runtime de Go.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		documentsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_written_total",
			Help:      "Documentos creados, actualizados, borrados o convertidos.",
		}, []string{"op", "type"}),
		numberConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "document_number_conflicts_total",
			Help:      "Colisiones de numeración reintentadas.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de las peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		r.documentsWritten,
		r.numberConflicts,
		r.httpRequests,
		r.httpDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// DocumentWritten cuenta una escritura de documento.
func (r *Registry) DocumentWritten(op string, docType entity.DocType) {
	r.documentsWritten.WithLabelValues(op, string(docType)).Inc()
}

// NumberConflict cuenta un reintento por número duplicado.
func (r *Registry) NumberConflict() {
	r.numberConflicts.Inc()
}

// Middleware mide cada petición por ruta registrada (no por URL cruda).
func (r *Registry) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		method := c.Method()
		r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler sirve /metrics en formato de exposición de Prometheus.
func (r *Registry) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
