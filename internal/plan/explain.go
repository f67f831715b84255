package plan

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Metadata keys the planner attaches to conjunctive plans
const (
	MetaStrategy       = "strategy"        // string, see planner strategies
	MetaCandidateCosts = "candidate_costs" // []float64{dual, leftFilter, rightFilter}
)

// Strategy reads the strategy annotation, "" if none
func (p *NestedPlan) Strategy() string {
	s, _ := p.metadata[MetaStrategy].(string)
	return s
}

// RenderTable writes an EXPLAIN-style table of the plan, one row per node
func RenderTable(w io.Writer, root *NestedPlan) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"node", "instruction", "filter", "cost", "size", "selectivity", "strategy"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	var add func(n *NestedPlan, depth int)
	add = func(n *NestedPlan, depth int) {
		instructions := make([]string, 0, len(n.Instructions))
		for _, ins := range n.Instructions {
			instructions = append(instructions, ins.String())
		}
		filter := ""
		if n.Filter != nil && n.Filter.Measure != "" {
			filter = n.Filter.String()
		}
		table.Append([]string{
			strings.Repeat("  ", depth) + n.NodeType(),
			strings.Join(instructions, "; "),
			filter,
			fmt.Sprintf("%.4g", n.RuntimeCost),
			fmt.Sprintf("%.4g", n.MappingSize),
			fmt.Sprintf("%.4g", n.Selectivity),
			n.Strategy(),
		})
		for _, child := range n.Children() {
			add(child, depth+1)
		}
	}
	if root != nil {
		add(root, 0)
	}
	table.Render()
}

// view is the serialized shape of a plan (YAML output of the CLI)
type view struct {
	Type         string   `yaml:"type"`
	Instructions []string `yaml:"instructions,omitempty"`
	Filter       string   `yaml:"filter,omitempty"`
	RuntimeCost  float64  `yaml:"runtime_cost"`
	MappingSize  float64  `yaml:"mapping_size"`
	Selectivity  float64  `yaml:"selectivity"`
	Strategy     string   `yaml:"strategy,omitempty"`
	SubPlans     []*view  `yaml:"sub_plans,omitempty"`
}

func toView(p *NestedPlan) *view {
	v := &view{
		Type:        p.NodeType(),
		RuntimeCost: p.RuntimeCost,
		MappingSize: p.MappingSize,
		Selectivity: p.Selectivity,
		Strategy:    p.Strategy(),
	}
	for _, ins := range p.Instructions {
		v.Instructions = append(v.Instructions, ins.String())
	}
	if p.Filter != nil && p.Filter.Measure != "" {
		v.Filter = p.Filter.String()
	}
	for _, sub := range p.SubPlans {
		v.SubPlans = append(v.SubPlans, toView(sub))
	}
	return v
}

// MarshalYAML implements yaml.Marshaler
func (p *NestedPlan) MarshalYAML() (interface{}, error) {
	return toView(p), nil
}
