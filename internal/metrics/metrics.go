package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/leengari/linkplanner/internal/planner"
)

// Observer exports planner events as Prometheus metrics. It is safe for
// concurrent use.
type Observer struct {
	plans       prometheus.Counter
	estimates   *prometheus.CounterVec
	filterCosts prometheus.Counter
	strategies  *prometheus.CounterVec
	planCost    prometheus.Histogram
	planNodes   prometheus.Histogram
}

// NewObserver registers the planner metrics with reg
func NewObserver(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		plans: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linkplanner",
			Name:      "plans_total",
			Help:      "Specifications planned successfully.",
		}),
		estimates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkplanner",
			Name:      "oracle_estimates_total",
			Help:      "Oracle estimates by kind (runtime, size) and measure family.",
		}, []string{"kind", "family"}),
		filterCosts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "linkplanner",
			Name:      "filter_cost_estimates_total",
			Help:      "Filter cost estimates.",
		}),
		strategies: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "linkplanner",
			Name:      "conjunction_strategies_total",
			Help:      "Strategies chosen for pairs of conjuncts.",
		}, []string{"strategy"}),
		planCost: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linkplanner",
			Name:      "plan_runtime_cost",
			Help:      "Estimated runtime cost of finished plans.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 12),
		}),
		planNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "linkplanner",
			Name:      "plan_nodes",
			Help:      "Nodes in finished plans.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
	}
}

// OnEvent implements planner.Observer
func (o *Observer) OnEvent(event planner.Event) {
	switch d := event.Data.(type) {
	case planner.EstimateData:
		kind := "runtime"
		if event.Type == planner.EventSizeEstimate {
			kind = "size"
		}
		o.estimates.WithLabelValues(kind, d.Family.String()).Inc()
	case planner.FilterCostData:
		o.filterCosts.Inc()
	case planner.StrategyData:
		o.strategies.WithLabelValues(string(d.Strategy)).Inc()
	case planner.PlanData:
		o.plans.Inc()
		o.planCost.Observe(d.RuntimeCost)
		o.planNodes.Observe(float64(d.Nodes))
	}
}
