package planner

// Strategy is how a pair of conjuncts is executed
type Strategy string

const (
	// StrategyDualRun runs both sides and intersects the results
	StrategyDualRun Strategy = "dual_run"
	// StrategyRightAsFilter runs the left side and filters it with the right
	StrategyRightAsFilter Strategy = "left_run_right_filter"
	// StrategyLeftAsFilter runs the right side and filters it with the left
	StrategyLeftAsFilter Strategy = "right_run_left_filter"
)

// selectStrategy picks the cheapest of the candidate costs, indexed as in
// StrategyData.Costs. Ties go to the earlier candidate, so a dual run wins
// any tie it is part of.
func selectStrategy(costs [3]float64) (Strategy, float64) {
	switch {
	case costs[0] <= costs[1] && costs[0] <= costs[2]:
		return StrategyDualRun, costs[0]
	case costs[1] <= costs[2]:
		return StrategyRightAsFilter, costs[1]
	default:
		return StrategyLeftAsFilter, costs[2]
	}
}
