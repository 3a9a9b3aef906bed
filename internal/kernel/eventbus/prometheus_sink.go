package eventbus

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink exposes the event stream as counters and gauges, giving
// an operator a Prometheus-scrapable view of kernel activity without the
// engine itself depending on the metrics library (subscribers
// are an external, best-effort concern).
type PrometheusSink struct {
	eventsTotal  *prometheus.CounterVec
	toolsTotal   *prometheus.CounterVec
	delegations  prometheus.Counter
	errorReports prometheus.Counter
}

// NewPrometheusSink registers its metrics against reg and returns the
// sink. Pass prometheus.DefaultRegisterer for the global registry.
func NewPrometheusSink(reg prometheus.Registerer) *PrometheusSink {
	s := &PrometheusSink{
		eventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarmkernel_events_total",
			Help: "Total events published on the kernel event bus, by kind.",
		}, []string{"kind"}),
		toolsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "swarmkernel_tool_calls_total",
			Help: "Total tool dispatcher outcomes, by result.",
		}, []string{"result"}),
		delegations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarmkernel_delegations_total",
			Help: "Total delegations dispatched.",
		}),
		errorReports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "swarmkernel_error_reports_total",
			Help: "Total report_error tool invocations.",
		}),
	}
	reg.MustRegister(s.eventsTotal, s.toolsTotal, s.delegations, s.errorReports)
	return s
}

func (s *PrometheusSink) Emit(_ context.Context, e Event) {
	s.eventsTotal.WithLabelValues(string(e.Kind)).Inc()
	switch e.Kind {
	case KindToolResult:
		s.toolsTotal.WithLabelValues("success").Inc()
	case KindToolError:
		s.toolsTotal.WithLabelValues("error").Inc()
	case KindDelegation:
		s.delegations.Inc()
	case KindErrorReport:
		s.errorReports.Inc()
	}
}
