package spec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
)

// Operator is the boolean operator of a composite specification node
type Operator int

const (
	None Operator = iota // atomic leaf
	And
	Or
	Xor
	Minus
)

var operatorNames = map[string]Operator{
	"AND":   And,
	"OR":    Or,
	"XOR":   Xor,
	"MINUS": Minus,
}

// String returns the keyword used in textual link specifications
func (o Operator) String() string {
	switch o {
	case None:
		return ""
	case And:
		return "AND"
	case Or:
		return "OR"
	case Xor:
		return "XOR"
	case Minus:
		return "MINUS"
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// LookupOperator resolves a case-insensitive operator keyword
func LookupOperator(name string) (Operator, bool) {
	op, ok := operatorNames[strings.ToUpper(strings.TrimSpace(name))]
	return op, ok
}

// Node is one node of a link specification tree.
// Atomic nodes carry a filter expression such as levenshtein(x.name,y.name);
// composite nodes carry an operator and at least one child.
type Node struct {
	Operator  Operator
	Children  []*Node
	Filter    string
	Threshold float64
}

// Atomic creates a leaf node
func Atomic(filter string, threshold float64) *Node {
	return &Node{Filter: filter, Threshold: threshold}
}

// Composite creates an operator node over children
func Composite(op Operator, threshold float64, children ...*Node) *Node {
	return &Node{Operator: op, Threshold: threshold, Children: children}
}

// IsAtomic reports whether the node is a leaf condition
func (n *Node) IsAtomic() bool {
	return len(n.Children) == 0 && strings.TrimSpace(n.Filter) != ""
}

// Validate checks this node (not its children) against the tree invariants
func (n *Node) Validate() error {
	if n == nil {
		return domainerrors.InvalidInputf("nil specification node")
	}
	if math.IsNaN(n.Threshold) || n.Threshold < 0 || n.Threshold > 1 {
		return domainerrors.InvalidInputf("threshold %v outside [0,1]", n.Threshold)
	}
	if len(n.Children) == 0 {
		if strings.TrimSpace(n.Filter) == "" {
			return domainerrors.InvalidInputf("atomic specification has an empty filter expression")
		}
		if n.Operator != None {
			return domainerrors.InvalidInputf("operator %s has no children", n.Operator)
		}
		return nil
	}
	if n.Operator == None {
		return domainerrors.InvalidInputf("composite specification with %d children has no operator", len(n.Children))
	}
	for i, child := range n.Children {
		if child == nil {
			return domainerrors.InvalidInputf("child %d of %s is nil", i, n.Operator)
		}
	}
	return nil
}

// ValidateTree validates every node of the tree depth-first
func (n *Node) ValidateTree() error {
	if err := n.Validate(); err != nil {
		return err
	}
	for _, child := range n.Children {
		if err := child.ValidateTree(); err != nil {
			return err
		}
	}
	return nil
}

// String renders the node in link specification syntax, e.g.
// AND(levenshtein(x.name,y.name)|0.8,jaro(x.a,y.a)|0.9)
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	if len(n.Children) == 0 {
		return n.Filter
	}
	var sb strings.Builder
	sb.WriteString(n.Operator.String())
	sb.WriteString("(")
	for i, child := range n.Children {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(child.String())
		sb.WriteString("|")
		sb.WriteString(FormatThreshold(child.Threshold))
	}
	sb.WriteString(")")
	return sb.String()
}

// FormatThreshold renders a threshold the way specifications write it, in
// plain decimal notation
func FormatThreshold(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}
