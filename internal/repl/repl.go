package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/leengari/linkplanner/internal/measure"
	"github.com/leengari/linkplanner/internal/parser"
	"github.com/leengari/linkplanner/internal/plan"
	"github.com/leengari/linkplanner/internal/planner"
)

// Start reads one link specification per line from in and writes its plan to
// out until input ends or the user types exit. Planning errors are reported
// and the loop continues.
func Start(in io.Reader, out io.Writer, p *planner.Planner, catalog *measure.Catalog) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprintln(out, "linkplan interactive planner")
	fmt.Fprintln(out, "Type 'exit' or '\\q' to quit, 'ls' to list measures, 'table' to toggle table output.")

	tableOutput := false
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "exit", "\\q":
			return nil
		case "ls", "list":
			fmt.Fprintln(out, "Known measures:")
			for _, name := range catalog.Names() {
				m := catalog.Lookup(name)
				fmt.Fprintf(out, "  - %s (%s)\n", m.Name, m.Family)
			}
			continue
		case "table":
			tableOutput = !tableOutput
			continue
		}

		node, err := parser.ParseSpecification(line)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		result, err := p.Plan(node)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}

		PrintResult(out, result, tableOutput)
	}
}

// PrintResult writes a plan either as an indented tree or as a table
func PrintResult(w io.Writer, result *plan.NestedPlan, table bool) {
	if table {
		plan.RenderTable(w, result)
		return
	}
	fmt.Fprint(w, plan.PrintTree(result))
}
