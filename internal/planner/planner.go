package planner

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/leengari/linkplanner/internal/collection"
	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
	"github.com/leengari/linkplanner/internal/domain/spec"
	"github.com/leengari/linkplanner/internal/measure"
	"github.com/leengari/linkplanner/internal/oracle"
	"github.com/leengari/linkplanner/internal/plan"
)

// DefaultMergeOverhead is the cost of merging one more child result into an
// OR, XOR or MINUS
const DefaultMergeOverhead = 1.0

const tracerName = "github.com/leengari/linkplanner/internal/planner"

// Planner turns link specifications into cost-annotated execution plans.
// It is immutable once built; concurrent Plan calls are safe as long as the
// observers are.
type Planner struct {
	source        collection.Collection
	target        collection.Collection
	registry      oracle.Registry
	catalog       *measure.Catalog
	language      oracle.Language
	mergeOverhead float64
	observers     []Observer
	tracer        trace.Tracer
}

// Option configures a Planner
type Option func(*Planner)

// WithRegistry sets the cost oracles
func WithRegistry(r oracle.Registry) Option {
	return func(p *Planner) { p.registry = r }
}

// WithCatalog sets the measure catalog used for parsing and filter costs
func WithCatalog(c *measure.Catalog) Option {
	return func(p *Planner) { p.catalog = c }
}

// WithLanguage sets the language hint passed to every oracle
func WithLanguage(l oracle.Language) Option {
	return func(p *Planner) { p.language = l }
}

// WithMergeOverhead sets the per-extra-child cost of OR, XOR and MINUS
func WithMergeOverhead(c float64) Option {
	return func(p *Planner) { p.mergeOverhead = c }
}

// WithObservers registers observers to receive planning events
func WithObservers(observers ...Observer) Option {
	return func(p *Planner) { p.observers = append(p.observers, observers...) }
}

// WithTracer overrides the global OpenTelemetry tracer
func WithTracer(t trace.Tracer) Option {
	return func(p *Planner) { p.tracer = t }
}

// New creates a planner for the given source and target collections
func New(source, target collection.Collection, opts ...Option) *Planner {
	p := &Planner{
		source:        source,
		target:        target,
		registry:      oracle.DefaultRegistry(),
		catalog:       measure.DefaultCatalog(),
		mergeOverhead: DefaultMergeOverhead,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	return p
}

// Plan plans node against the planner's own collections
func (p *Planner) Plan(node *spec.Node) (*plan.NestedPlan, error) {
	return p.PlanContext(context.Background(), node)
}

// PlanContext is Plan with a parent context for the tracing span.
// Planning never blocks, so ctx is not checked for cancellation.
func (p *Planner) PlanContext(ctx context.Context, node *spec.Node) (*plan.NestedPlan, error) {
	return p.planWith(ctx, node, p.source, p.target)
}

// PlanFor plans node against explicit collections instead of the planner's own
func (p *Planner) PlanFor(node *spec.Node, source, target collection.Collection) (*plan.NestedPlan, error) {
	return p.planWith(context.Background(), node, source, target)
}

func (p *Planner) planWith(
	ctx context.Context, node *spec.Node, source, target collection.Collection,
) (*plan.NestedPlan, error) {
	r, err := p.newRun(source, target)
	if err != nil {
		return nil, err
	}
	if err := node.ValidateTree(); err != nil {
		return nil, errors.Wrap(err, "invalid specification")
	}

	text := node.String()
	_, span := p.tracer.Start(ctx, "planner.Plan",
		trace.WithAttributes(
			attribute.String("run_id", r.id),
			attribute.Int("source_size", r.sourceSize),
			attribute.Int("target_size", r.targetSize),
			attribute.String("specification", text),
		),
	)
	defer span.End()

	r.notify(Event{Type: EventPlanStart, Data: text})
	result, err := r.plan(node)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Float64("runtime_cost", result.RuntimeCost),
		attribute.Float64("mapping_size", result.MappingSize),
		attribute.Float64("selectivity", result.Selectivity),
	)
	r.notify(Event{Type: EventPlanEnd, Data: PlanData{
		Specification: text,
		RuntimeCost:   result.RuntimeCost,
		MappingSize:   result.MappingSize,
		Selectivity:   result.Selectivity,
		Nodes:         plan.CountNodes(result),
	}})
	return result, nil
}

// ReduceConjunction folds already planned conjuncts left to right,
// ((p1 ∧ p2) ∧ p3) ∧ ..., choosing a strategy for every pair. sel is the
// selectivity of the whole conjunction. No list is an error: an empty one
// reduces to the empty plan and a single plan is returned unchanged.
func (p *Planner) ReduceConjunction(plans []*plan.NestedPlan, sel float64) (*plan.NestedPlan, error) {
	if err := checkFraction("selectivity", sel); err != nil {
		return nil, err
	}
	for i, sub := range plans {
		if sub == nil {
			return nil, domainerrors.InvalidInputf("conjunct %d of %d is nil", i, len(plans))
		}
	}
	r, err := p.newRun(p.source, p.target)
	if err != nil {
		return nil, err
	}
	return r.reduce(plans, sel)
}

// run is the state of one planning call
type run struct {
	*Planner
	id         string
	sourceSize int
	targetSize int
	cross      float64 // |S|·|T|
}

func (p *Planner) newRun(source, target collection.Collection) (*run, error) {
	if source == nil || target == nil {
		return nil, domainerrors.InvalidInputf("source and target collections are required")
	}
	s, t := source.Size(), target.Size()
	if s < 0 || t < 0 {
		return nil, domainerrors.InvalidInputf("negative collection size (source %d, target %d)", s, t)
	}
	return &run{
		Planner:    p,
		id:         uuid.New().String(),
		sourceSize: s,
		targetSize: t,
		cross:      float64(s) * float64(t),
	}, nil
}

// notify sends an event to all registered observers
func (r *run) notify(event Event) {
	if len(r.observers) == 0 {
		return
	}
	event.RunID = r.id
	event.Timestamp = time.Now()
	for _, observer := range r.observers {
		observer.OnEvent(event)
	}
}

// plan is the recursive entry point: atomic leaves go to the oracles,
// AND to the conjunctive optimizer, everything else to the combinator
func (r *run) plan(node *spec.Node) (*plan.NestedPlan, error) {
	switch {
	case node.IsAtomic():
		return r.atomic(node)
	case node.Operator == spec.And:
		return r.conjunction(node)
	default:
		return r.combine(node)
	}
}

func (r *run) atomic(node *spec.Node) (*plan.NestedPlan, error) {
	m, err := r.catalog.Head(node.Filter)
	if err != nil {
		return nil, errors.Wrapf(err, "planning condition %q", node.Filter)
	}

	p := plan.New()
	p.AddInstruction(plan.NewInstruction(plan.Run, node.Filter, node.Threshold))
	p.RuntimeCost = r.estimateRuntime(m, node.Threshold)
	p.MappingSize = r.estimateSize(m, node.Threshold)
	p.Selectivity = r.selectivity(p.MappingSize)
	return p, nil
}

func (r *run) planChildren(node *spec.Node) ([]*plan.NestedPlan, error) {
	children := make([]*plan.NestedPlan, 0, len(node.Children))
	for i, child := range node.Children {
		cp, err := r.plan(child)
		if err != nil {
			return nil, errors.Wrapf(err, "child %d of %s", i, node.Operator)
		}
		children = append(children, cp)
	}
	return children, nil
}

// combine plans OR, XOR and MINUS. Every child must be evaluated in full,
// so children keep their order and no strategy is chosen.
func (r *run) combine(node *spec.Node) (*plan.NestedPlan, error) {
	children, err := r.planChildren(node)
	if err != nil {
		return nil, err
	}
	filterMeasures, err := r.catalog.Extract(node.Filter)
	if err != nil {
		return nil, errors.Wrapf(err, "filter of %s", node.Operator)
	}

	result := &plan.NestedPlan{SubPlans: children}
	for _, c := range children {
		result.RuntimeCost += c.RuntimeCost
	}
	result.RuntimeCost += r.mergeOverhead * float64(len(children)-1)

	accrue := func(fraction float64) {
		if len(filterMeasures) > 0 {
			result.RuntimeCost += r.filterCost(filterMeasures, r.candidates(fraction))
		}
	}

	sel := children[0].Selectivity
	switch node.Operator {
	case spec.Or:
		result.Operator = plan.Union
		missed := 1 - sel
		for _, c := range children[1:] {
			missed *= 1 - c.Selectivity
			accrue(1 - missed)
		}
		sel = 1 - missed
	case spec.Minus:
		result.Operator = plan.Difference
		for _, c := range children[1:] {
			sel *= 1 - c.Selectivity
			accrue(1 - sel)
		}
	case spec.Xor:
		result.Operator = plan.Xor
		for _, c := range children[1:] {
			both := sel * c.Selectivity
			sel = (1 - (1-sel)*(1-c.Selectivity)) * (1 - both)
			accrue(both)
		}
	default:
		return nil, errors.AssertionFailedf("combine called for operator %s", node.Operator)
	}

	filter := plan.NewInstruction(plan.Filter, node.Filter, node.Threshold)
	result.Filter = &filter
	result.Selectivity = sel
	result.MappingSize = r.cross * sel
	return result, nil
}

func (r *run) conjunction(node *spec.Node) (*plan.NestedPlan, error) {
	children, err := r.planChildren(node)
	if err != nil {
		return nil, err
	}
	sel := 1.0
	for _, c := range children {
		sel *= c.Selectivity
	}
	return r.reduce(children, sel)
}

// reduce left-folds the conjuncts pairwise. Sibling order is preserved.
func (r *run) reduce(plans []*plan.NestedPlan, sel float64) (*plan.NestedPlan, error) {
	switch len(plans) {
	case 0:
		return plan.New(), nil
	case 1:
		return plans[0], nil
	}

	acc := plans[0]
	for _, next := range plans[1:] {
		var err error
		if acc, err = r.pair(acc, next, sel); err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// pair combines two conjuncts with the cheapest of three strategies. The
// result always carries the selectivity of the whole conjunction.
func (r *run) pair(left, right *plan.NestedPlan, sel float64) (*plan.NestedPlan, error) {
	rightMeasures, err := allMeasures(r.catalog, right)
	if err != nil {
		return nil, err
	}
	leftMeasures, err := allMeasures(r.catalog, left)
	if err != nil {
		return nil, err
	}

	costs := [3]float64{
		left.RuntimeCost + right.RuntimeCost,
		left.RuntimeCost + r.filterCost(rightMeasures, r.candidates(right.Selectivity)),
		right.RuntimeCost + r.filterCost(leftMeasures, r.candidates(left.Selectivity)),
	}
	strategy, cost := selectStrategy(costs)

	result := &plan.NestedPlan{}
	switch strategy {
	case StrategyDualRun:
		result.Operator = plan.Intersection
		result.SubPlans = []*plan.NestedPlan{left, right}
	case StrategyRightAsFilter:
		result.Filter = filterSource(right)
		result.SubPlans = []*plan.NestedPlan{left}
	case StrategyLeftAsFilter:
		result.Filter = filterSource(left)
		result.SubPlans = []*plan.NestedPlan{right}
	}
	result.RuntimeCost = cost
	result.Selectivity = sel
	result.MappingSize = r.cross * sel
	result.Metadata()[plan.MetaStrategy] = string(strategy)
	result.Metadata()[plan.MetaCandidateCosts] = costs[:]

	r.notify(Event{Type: EventStrategyChosen, Data: StrategyData{Strategy: strategy, Costs: costs}})
	return result, nil
}

// filterSource builds the FILTER instruction that absorbs p into its sibling.
// A composite is absorbed by its equivalent measure expression. A reduced
// conjunction carries its conditions inside that expression, so its own
// filter threshold does not apply to the whole.
func filterSource(p *plan.NestedPlan) *plan.Instruction {
	var f plan.Instruction
	switch {
	case p.IsFlat():
		f = plan.NewInstruction(plan.Filter, p.Instructions[0].Measure, p.Instructions[0].Threshold)
	case p.Strategy() != "":
		f = plan.NewInstruction(plan.Filter, p.EquivalentMeasure(), 0)
	default:
		f = plan.NewInstruction(plan.Filter, p.EquivalentMeasure(), p.Threshold())
	}
	return &f
}

func (r *run) selectivity(size float64) float64 {
	if r.cross == 0 {
		return 0
	}
	return size / r.cross
}
