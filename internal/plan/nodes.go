package plan

import (
	"fmt"
	"strings"

	"github.com/leengari/linkplanner/internal/domain/spec"
)

// Command is what an Instruction does
type Command int

const (
	Run    Command = iota // execute a measure as a standalone join
	Filter                // apply a measure to an existing candidate set
)

func (c Command) String() string {
	switch c {
	case Run:
		return "RUN"
	case Filter:
		return "FILTER"
	default:
		return fmt.Sprintf("Command(%d)", int(c))
	}
}

// Operator combines the results of a plan's sub-plans
type Operator int

const (
	NoOperator Operator = iota // single sub-plan, possibly filtered
	Union
	Difference
	Xor
	Intersection
)

func (o Operator) String() string {
	switch o {
	case NoOperator:
		return ""
	case Union:
		return "UNION"
	case Difference:
		return "DIFFERENCE"
	case Xor:
		return "XOR"
	case Intersection:
		return "INTERSECTION"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// specKeyword is the link specification operator an Operator implements
func (o Operator) specKeyword() string {
	switch o {
	case Union:
		return "OR"
	case Difference:
		return "MINUS"
	case Xor:
		return "XOR"
	case Intersection:
		return "AND"
	default:
		return ""
	}
}

// Instruction is one atomic execution step
type Instruction struct {
	Command   Command
	Measure   string  // measure expression, e.g. trigrams(x.name,y.name)
	Threshold float64 // similarity threshold in [0,1]

	// Positions in a flattened instruction sequence. The planner leaves
	// SourceIndex and TargetIndex at -1 and ResultIndex at 0; a downstream
	// compiler assigns them.
	SourceIndex int
	TargetIndex int
	ResultIndex int
}

// NewInstruction creates an unchained instruction
func NewInstruction(cmd Command, measure string, threshold float64) Instruction {
	return Instruction{
		Command:     cmd,
		Measure:     measure,
		Threshold:   threshold,
		SourceIndex: -1,
		TargetIndex: -1,
		ResultIndex: 0,
	}
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s %s|%s", i.Command, i.Measure, spec.FormatThreshold(i.Threshold))
}

// NestedPlan is one node of an execution plan tree
type NestedPlan struct {
	Instructions []Instruction
	Operator     Operator
	// Filter is applied to the combined result of SubPlans; nil if none
	Filter   *Instruction
	SubPlans []*NestedPlan

	RuntimeCost float64 // estimated runtime, same unit across the tree
	MappingSize float64 // estimated number of links produced
	Selectivity float64 // MappingSize / (|source|·|target|)

	metadata map[string]any
}

// New returns the empty plan: no work, no cost, neutral selectivity
func New() *NestedPlan {
	return &NestedPlan{Selectivity: 1}
}

// Children returns sub-plans for tree walking
func (p *NestedPlan) Children() []*NestedPlan {
	return p.SubPlans
}

// Metadata returns attached planner annotations (never nil)
func (p *NestedPlan) Metadata() map[string]any {
	if p.metadata == nil {
		p.metadata = make(map[string]any)
	}
	return p.metadata
}

// NodeType returns a short label (for debugging/logging)
func (p *NestedPlan) NodeType() string {
	switch {
	case p.IsEmpty():
		return "EMPTY"
	case p.IsFlat():
		return p.Instructions[0].Command.String()
	case p.Operator != NoOperator:
		return p.Operator.String()
	case p.Filter != nil:
		return "FILTERED"
	default:
		return "NESTED"
	}
}

// AddInstruction appends an instruction to the plan
func (p *NestedPlan) AddInstruction(i Instruction) {
	p.Instructions = append(p.Instructions, i)
}

// IsEmpty reports whether the plan does nothing at all
func (p *NestedPlan) IsEmpty() bool {
	return len(p.Instructions) == 0 && len(p.SubPlans) == 0 && p.Filter == nil
}

// IsFlat reports whether the plan is a single atomic measure application
func (p *NestedPlan) IsFlat() bool {
	return len(p.Instructions) == 1 && len(p.SubPlans) == 0
}

// Threshold is the threshold an enclosing plan should use when it absorbs
// this plan as a filter
func (p *NestedPlan) Threshold() float64 {
	if p.IsFlat() {
		return p.Instructions[0].Threshold
	}
	if p.Filter != nil {
		return p.Filter.Threshold
	}
	return 0
}

// EquivalentMeasure renders the plan as a single measure expression, e.g.
// AND(jaro(x.a,y.a)|0.9,trigrams(x.b,y.b)|0.5). Filters become an extra
// conjunct.
func (p *NestedPlan) EquivalentMeasure() string {
	if p.IsEmpty() {
		return ""
	}
	if p.IsFlat() {
		return p.Instructions[0].Measure
	}

	var base string
	var baseThreshold float64
	switch {
	case p.Operator != NoOperator && len(p.SubPlans) > 0:
		parts := make([]string, 0, len(p.SubPlans))
		for _, sub := range p.SubPlans {
			parts = append(parts, sub.EquivalentMeasure()+"|"+spec.FormatThreshold(sub.Threshold()))
		}
		base = p.Operator.specKeyword() + "(" + strings.Join(parts, ",") + ")"
	case len(p.SubPlans) == 1:
		base = p.SubPlans[0].EquivalentMeasure()
		baseThreshold = p.SubPlans[0].Threshold()
	case len(p.Instructions) > 0:
		base = p.Instructions[0].Measure
		baseThreshold = p.Instructions[0].Threshold
	}

	if p.Filter == nil || p.Filter.Measure == "" {
		return base
	}
	if base == "" {
		return p.Filter.Measure
	}
	return fmt.Sprintf("AND(%s|%s,%s|%s)", base, spec.FormatThreshold(baseThreshold), p.Filter.Measure, spec.FormatThreshold(p.Filter.Threshold))
}

func (p *NestedPlan) String() string {
	return fmt.Sprintf("%s cost=%.4g size=%.4g selectivity=%.4g", p.NodeType(), p.RuntimeCost, p.MappingSize, p.Selectivity)
}
