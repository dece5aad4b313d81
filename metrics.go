package logkit

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus collectors describing the pipeline itself:
// records that reached handlers, records vetoed by filters, and handler
// write failures. All methods are nil-receiver safe so metrics stay
// optional.
type Metrics struct {
	emitted       *prometheus.CounterVec
	filtered      *prometheus.CounterVec
	handlerErrors *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		emitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logkit_records_emitted_total",
				Help: "Records dispatched to handlers",
			},
			[]string{"logger", "level"},
		),
		filtered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logkit_records_filtered_total",
				Help: "Records vetoed by the filter pipeline",
			},
			[]string{"logger", "level"},
		),
		handlerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "logkit_handler_errors_total",
				Help: "Handler write failures (records dropped by that sink)",
			},
			[]string{"logger"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.emitted, m.filtered, m.handlerErrors)
	}
	return m
}

func (m *Metrics) recordEmitted(logger string, level Level) {
	if m == nil {
		return
	}
	m.emitted.WithLabelValues(logger, level.String()).Inc()
}

func (m *Metrics) recordFiltered(logger string, level Level) {
	if m == nil {
		return
	}
	m.filtered.WithLabelValues(logger, level.String()).Inc()
}

func (m *Metrics) recordHandlerError(logger string) {
	if m == nil {
		return
	}
	m.handlerErrors.WithLabelValues(logger).Inc()
}
