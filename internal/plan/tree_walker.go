package plan

import (
	"fmt"
	"strings"
)

// WalkTree recursively walks the plan tree, calling visitor for each node
func WalkTree(node *NestedPlan, visitor func(*NestedPlan) error) error {
	if node == nil {
		return nil
	}

	// Visit current node
	if err := visitor(node); err != nil {
		return err
	}

	// Recursively visit children
	for _, child := range node.Children() {
		if err := WalkTree(child, visitor); err != nil {
			return err
		}
	}

	return nil
}

// PrintTree prints the plan tree with indentation
func PrintTree(node *NestedPlan) string {
	var sb strings.Builder
	printTreeHelper(node, 0, &sb)
	return sb.String()
}

func printTreeHelper(node *NestedPlan, depth int, sb *strings.Builder) {
	if node == nil {
		return
	}

	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(sb, "%s%s\n", indent, node)
	for _, ins := range node.Instructions {
		fmt.Fprintf(sb, "%s  > %s\n", indent, ins)
	}
	if node.Filter != nil && node.Filter.Measure != "" {
		fmt.Fprintf(sb, "%s  > %s\n", indent, node.Filter)
	}

	// Recursively print children
	for _, child := range node.Children() {
		printTreeHelper(child, depth+1, sb)
	}
}

// CountNodes counts the total number of nodes in the tree
func CountNodes(node *NestedPlan) int {
	if node == nil {
		return 0
	}

	count := 1 // Count current node
	for _, child := range node.Children() {
		count += CountNodes(child)
	}

	return count
}
