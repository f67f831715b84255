package spec

import (
	"os"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	domainerrors "github.com/leengari/linkplanner/internal/domain/errors"
)

// yamlNode is the on-disk shape of a specification tree:
//
//	operator: AND
//	threshold: 0.5
//	children:
//	  - filter: levenshtein(x.name, y.name)
//	    threshold: 0.8
type yamlNode struct {
	Operator  string      `yaml:"operator,omitempty"`
	Filter    string      `yaml:"filter,omitempty"`
	Threshold float64     `yaml:"threshold"`
	Children  []*yamlNode `yaml:"children,omitempty"`
}

// MarshalYAML implements yaml.Marshaler
func (n *Node) MarshalYAML() (interface{}, error) {
	return toYAML(n), nil
}

// UnmarshalYAML implements yaml.Unmarshaler
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var raw yamlNode
	if err := value.Decode(&raw); err != nil {
		return err
	}
	decoded, err := fromYAML(&raw)
	if err != nil {
		return err
	}
	*n = *decoded
	return nil
}

func toYAML(n *Node) *yamlNode {
	out := &yamlNode{
		Operator:  n.Operator.String(),
		Filter:    n.Filter,
		Threshold: n.Threshold,
	}
	for _, child := range n.Children {
		out.Children = append(out.Children, toYAML(child))
	}
	return out
}

func fromYAML(raw *yamlNode) (*Node, error) {
	n := &Node{Filter: raw.Filter, Threshold: raw.Threshold}
	if raw.Operator != "" {
		op, ok := LookupOperator(raw.Operator)
		if !ok {
			return nil, domainerrors.InvalidInputf("unknown operator %q", raw.Operator)
		}
		n.Operator = op
	}
	for i, child := range raw.Children {
		if child == nil {
			return nil, domainerrors.InvalidInputf("child %d of %s is empty", i, raw.Operator)
		}
		c, err := fromYAML(child)
		if err != nil {
			return nil, err
		}
		n.Children = append(n.Children, c)
	}
	return n, nil
}

// DecodeYAML reads a specification tree from YAML and validates it
func DecodeYAML(data []byte) (*Node, error) {
	var n Node
	if err := yaml.Unmarshal(data, &n); err != nil {
		return nil, errors.Wrap(err, "decoding specification")
	}
	if err := n.ValidateTree(); err != nil {
		return nil, err
	}
	return &n, nil
}

// LoadFile reads a YAML specification file
func LoadFile(path string) (*Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading specification %s", path)
	}
	return DecodeYAML(data)
}
