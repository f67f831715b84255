package planner

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/leengari/linkplanner/internal/collection"
	"github.com/leengari/linkplanner/internal/domain/spec"
	"github.com/leengari/linkplanner/internal/measure"
)

func captureDefaultLogger(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: level})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestNotifyWithNoObservers(t *testing.T) {
	p := New(collection.Fixed(10), collection.Fixed(10))
	r, err := p.newRun(p.source, p.target)
	if err != nil {
		t.Fatal(err)
	}

	// Should not panic
	r.notify(Event{Type: EventPlanStart})
}

func TestNotifyWithMultipleObservers(t *testing.T) {
	observer1 := &MockObserver{}
	observer2 := &MockObserver{}
	p := New(collection.Fixed(10), collection.Fixed(10), WithObservers(observer1), WithObservers(observer2))

	if _, err := p.Plan(spec.Atomic("jaro(x.a,y.a)", 0.5)); err != nil {
		t.Fatal(err)
	}

	if len(observer1.Events) != 4 {
		t.Errorf("Observer1: Expected 4 events, got %d", len(observer1.Events))
	}
	if len(observer2.Events) != 4 {
		t.Errorf("Observer2: Expected 4 events, got %d", len(observer2.Events))
	}
	if observer1.Events[0].Type != EventPlanStart {
		t.Errorf("Observer1: Expected EventPlanStart, got %v", observer1.Events[0].Type)
	}
}

func TestLoggingObserverLevels(t *testing.T) {
	buf := captureDefaultLogger(t, slog.LevelInfo)
	lo := NewLoggingObserver()

	lo.OnEvent(Event{Type: EventRuntimeEstimate, RunID: "run-1", Data: EstimateData{Measure: "jaro", Family: measure.FamilyJaro, Value: 3}})
	if buf.Len() != 0 {
		t.Errorf("estimates should be logged at debug level, got %q", buf.String())
	}

	lo.OnEvent(Event{Type: EventPlanEnd, RunID: "run-1", Data: PlanData{Specification: "jaro(x.a,y.a)", RuntimeCost: 3, Nodes: 1}})
	out := buf.String()
	for _, want := range []string{"planner_lifecycle", "event=plan_end", "run_id=run-1", "cost=3", "nodes=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output should contain %q: %s", want, out)
		}
	}
}

func TestLoggingObserverDebugFields(t *testing.T) {
	buf := captureDefaultLogger(t, slog.LevelDebug)
	lo := NewLoggingObserver()

	lo.OnEvent(Event{Type: EventRuntimeEstimate, Data: EstimateData{Measure: "jaro", Family: measure.FamilyJaro, Threshold: 0.9, Value: 3}})
	lo.OnEvent(Event{Type: EventStrategyChosen, Data: StrategyData{Strategy: StrategyDualRun, Costs: [3]float64{1, 2, 3}}})
	lo.OnEvent(Event{Type: EventFilterCost, Data: FilterCostData{Measures: []string{"jaro"}, Candidates: 100, Cost: 0.1}})

	out := buf.String()
	for _, want := range []string{"family=jaro", "threshold=0.9", "strategy=dual_run", "candidates=100"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output should contain %q: %s", want, out)
		}
	}
}
