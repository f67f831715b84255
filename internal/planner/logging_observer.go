package planner

import (
	"context"
	"log/slog"
)

// LoggingObserver logs every planning event using structured logging
type LoggingObserver struct {
	logger *slog.Logger
	level  slog.Level
}

// NewLoggingObserver creates a logging observer on the default logger.
// Estimates are chatty, so they are logged at debug level; run start/end at info.
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{
		logger: slog.Default(),
		level:  slog.LevelDebug,
	}
}

// OnEvent implements the Observer interface
func (lo *LoggingObserver) OnEvent(event Event) {
	level := lo.level
	if event.Type == EventPlanStart || event.Type == EventPlanEnd {
		level = slog.LevelInfo
	}

	attrs := []any{
		"event", event.Type,
		"run_id", event.RunID,
	}
	switch d := event.Data.(type) {
	case EstimateData:
		attrs = append(attrs,
			"measure", d.Measure,
			"family", d.Family.String(),
			"threshold", d.Threshold,
			"value", d.Value,
		)
	case FilterCostData:
		attrs = append(attrs,
			"measures", d.Measures,
			"candidates", d.Candidates,
			"cost", d.Cost,
		)
	case StrategyData:
		attrs = append(attrs,
			"strategy", d.Strategy,
			"costs", d.Costs[:],
		)
	case PlanData:
		attrs = append(attrs,
			"spec", d.Specification,
			"cost", d.RuntimeCost,
			"size", d.MappingSize,
			"selectivity", d.Selectivity,
			"nodes", d.Nodes,
		)
	default:
		attrs = append(attrs, "data", event.Data)
	}

	lo.logger.Log(context.Background(), level, "planner_lifecycle", attrs...)
}
