package planner

import (
	"math"

	"github.com/cockroachdb/errors"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
	"github.com/leengari/linkplanner/internal/measure"
	"github.com/leengari/linkplanner/internal/oracle"
	"github.com/leengari/linkplanner/internal/plan"
)

// EstimateRuntime is the oracle runtime of running the named measure over the
// planner's collections. Unknown names are priced by the default oracle.
func (p *Planner) EstimateRuntime(measureName string, threshold float64) (float64, error) {
	r, err := p.estimationRun(threshold)
	if err != nil {
		return 0, err
	}
	return r.estimateRuntime(p.catalog.Lookup(measureName), threshold), nil
}

// EstimateSize is the oracle mapping size of the named measure over the
// planner's collections
func (p *Planner) EstimateSize(measureName string, threshold float64) (float64, error) {
	r, err := p.estimationRun(threshold)
	if err != nil {
		return 0, err
	}
	return r.estimateSize(p.catalog.Lookup(measureName), threshold), nil
}

// FilterCost is the cost of applying measures as post-filters over a
// candidate set of the given size
func (p *Planner) FilterCost(measures []string, candidates int64) (float64, error) {
	if candidates < 0 {
		return 0, domainerrors.InvalidInputf("negative candidate set size %d", candidates)
	}
	r, err := p.newRun(p.source, p.target)
	if err != nil {
		return 0, err
	}
	return r.filterCost(measures, candidates), nil
}

func (p *Planner) estimationRun(threshold float64) (*run, error) {
	if err := checkFraction("threshold", threshold); err != nil {
		return nil, err
	}
	return p.newRun(p.source, p.target)
}

func checkFraction(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return domainerrors.InvalidInputf("%s %v outside [0,1]", name, v)
	}
	return nil
}

func (r *run) input(threshold float64) oracle.Input {
	return oracle.Input{
		SourceSize: r.sourceSize,
		TargetSize: r.targetSize,
		Threshold:  threshold,
		Language:   r.language,
	}
}

func (r *run) estimateRuntime(m measure.Measure, threshold float64) float64 {
	v := r.registry.For(m.Family).Runtime(r.input(threshold))
	r.notify(Event{Type: EventRuntimeEstimate, Data: EstimateData{
		Measure: m.Name, Family: m.Family, Threshold: threshold, Value: v,
	}})
	return v
}

func (r *run) estimateSize(m measure.Measure, threshold float64) float64 {
	v := r.registry.For(m.Family).Size(r.input(threshold))
	r.notify(Event{Type: EventSizeEstimate, Data: EstimateData{
		Measure: m.Name, Family: m.Family, Threshold: threshold, Value: v,
	}})
	return v
}

func (r *run) filterCost(measures []string, candidates int64) float64 {
	v := r.catalog.FilterCost(measures, candidates)
	r.notify(Event{Type: EventFilterCost, Data: FilterCostData{
		Measures: measures, Candidates: candidates, Cost: v,
	}})
	return v
}

// candidates sizes a candidate set holding fraction of the cross product,
// saturating at math.MaxInt64
func (r *run) candidates(fraction float64) int64 {
	n := math.Ceil(r.cross * fraction)
	if n >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(n)
}

// allMeasures lists every measure a plan applies, in its instructions, its
// filters and its sub-plans, in depth-first order. A measure applied twice
// is listed twice.
func allMeasures(catalog *measure.Catalog, root *plan.NestedPlan) ([]string, error) {
	var names []string
	collect := func(expr string) error {
		found, err := catalog.Extract(expr)
		if err != nil {
			return err
		}
		names = append(names, found...)
		return nil
	}

	err := plan.WalkTree(root, func(n *plan.NestedPlan) error {
		for _, ins := range n.Instructions {
			if err := collect(ins.Measure); err != nil {
				return err
			}
		}
		if n.Filter != nil {
			return collect(n.Filter.Measure)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "collecting plan measures")
	}
	return names, nil
}
