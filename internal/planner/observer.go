package planner

import (
	"time"

	"github.com/leengari/linkplanner/internal/measure"
)

// EventType represents the points in a planning run observers are told about
type EventType string

const (
	EventPlanStart       EventType = "plan_start"
	EventPlanEnd         EventType = "plan_end"
	EventRuntimeEstimate EventType = "runtime_estimate"
	EventSizeEstimate    EventType = "size_estimate"
	EventFilterCost      EventType = "filter_cost"
	EventStrategyChosen  EventType = "strategy_chosen"
)

// Event represents one diagnostic event of a planning run
type Event struct {
	Type      EventType   // Type of event
	RunID     string      // Planning run ID for tracing
	Timestamp time.Time   // When the event occurred
	Data      interface{} // One of the *Data types below, or the specification text on EventPlanStart
}

// EstimateData accompanies EventRuntimeEstimate and EventSizeEstimate
type EstimateData struct {
	Measure   string
	Family    measure.Family
	Threshold float64
	Value     float64
}

// FilterCostData accompanies EventFilterCost
type FilterCostData struct {
	Measures   []string
	Candidates int64
	Cost       float64
}

// StrategyData accompanies EventStrategyChosen
type StrategyData struct {
	Strategy Strategy
	Costs    [3]float64 // dual run, right as filter, left as filter
}

// PlanData accompanies EventPlanEnd
type PlanData struct {
	Specification string
	RuntimeCost   float64
	MappingSize   float64
	Selectivity   float64
	Nodes         int
}

// Observer interface for event subscribers.
// Observers are called synchronously from the planning goroutine; an
// observer shared by concurrent Plan calls must be safe for concurrent use.
type Observer interface {
	OnEvent(event Event)
}
