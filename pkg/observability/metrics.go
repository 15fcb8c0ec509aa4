package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/annotate/pkg/annotation"
	"github.com/aretw0/annotate/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors for annotation and execution events.
type Metrics struct {
	Live       prometheus.Gauge
	Installed  prometheus.Counter
	Released   *prometheus.CounterVec
	Executions *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Live: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "annotate_annotations_live",
			Help: "Number of annotations currently bound to nodes",
		}),
		Installed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "annotate_annotations_installed_total",
			Help: "Total number of annotations installed",
		}),
		Released: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotate_annotations_released_total",
				Help: "Total number of annotations released, by reason",
			},
			[]string{"reason"},
		),
		Executions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "annotate_node_executions_total",
				Help: "Total number of node executions",
			},
			[]string{"op", "annotated"},
		),
	}

	for _, c := range []prometheus.Collector{m.Live, m.Installed, m.Released, m.Executions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// GroupHooks returns hooks recording installs and releases of annotations.
func (m *Metrics) GroupHooks() annotation.Hooks {
	return annotation.Hooks{
		OnSet: func(annotation.Event) {
			m.Installed.Inc()
			m.Live.Inc()
		},
		OnRelease: func(e annotation.Event) {
			m.Released.WithLabelValues(string(e.Reason)).Inc()
			m.Live.Dec()
		},
	}
}

// EngineHooks returns hooks counting node executions.
func (m *Metrics) EngineHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			m.Executions.WithLabelValues(e.Op, strconv.FormatBool(e.Annotated)).Inc()
		},
	}
}
