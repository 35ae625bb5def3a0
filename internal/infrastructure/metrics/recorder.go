// Package metrics expone contadores Prometheus del motor de ventas y de la API HTTP.
package metrics

import (
	"net/http"

	"github.com/jhoicas/resto-pos-api/internal/application/sales"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var _ sales.Recorder = (*Recorder)(nil)

// Recorder contadores de ventas y peticiones registrados en un registry propio.
type Recorder struct {
	registry       *prometheus.Registry
	salesCreated   prometheus.Counter
	salesCancelled prometheus.Counter
	salesRejected  *prometheus.CounterVec
	salesAmount    prometheus.Counter
	saleItems      prometheus.Histogram
	httpRequests   *prometheus.CounterVec
}

// New crea el registry con los colectores de proceso y runtime de Go.
func New(namespace string) *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		salesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_created_total",
			Help: "Ventas registradas.",
		}),
		salesCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_cancelled_total",
			Help: "Ventas anuladas.",
		}),
		salesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_rejected_total",
			Help: "Ventas rechazadas por motivo.",
		}, []string{"reason"}),
		salesAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "sales_amount_total",
			Help: "Suma de los totales de venta.",
		}),
		saleItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "sale_items",
			Help:    "Líneas por venta.",
			Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "Peticiones HTTP por ruta y status.",
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.salesCreated, r.salesCancelled, r.salesRejected, r.salesAmount, r.saleItems, r.httpRequests,
	)
	return r
}

// SaleCreated registra una venta exitosa.
func (r *Recorder) SaleCreated(total decimal.Decimal, items int) {
	r.salesCreated.Inc()
	r.salesAmount.Add(total.InexactFloat64())
	r.saleItems.Observe(float64(items))
}

// SaleCancelled registra una anulación.
func (r *Recorder) SaleCancelled() { r.salesCancelled.Inc() }

// SaleRejected registra un rechazo con su código de error.
func (r *Recorder) SaleRejected(reason string) { r.salesRejected.WithLabelValues(reason).Inc() }

// HTTPRequest registra una petición atendida.
func (r *Recorder) HTTPRequest(method, route, status string) {
	r.httpRequests.WithLabelValues(method, route, status).Inc()
}

// Handler expone el registry en formato Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry devuelve el registry (pruebas).
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }
