// Package metrics define las métricas Prometheus de la API de certificados.
// Todas se registran en el registro por defecto al importar el paquete.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "certificados"

// HTTPRequestsTotal cuenta peticiones por método, ruta registrada y código de estado.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total de peticiones HTTP atendidas.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration mide la latencia por método y ruta registrada.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route"},
)

// CertificatesIssuedTotal cuenta certificados confirmados en base de datos.
var CertificatesIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "emitidos_total",
		Help:      "Total de certificados emitidos (transacción confirmada).",
	},
)

// DocumentFailuresTotal cuenta fallos de documentos.
// Label stage: "render" (plantilla → docx) o "convert" (docx → pdf).
var DocumentFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "documento_errores_total",
		Help:      "Total de fallos al generar o convertir documentos.",
	},
	[]string{"stage"},
)
