package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/leengari/linkplanner/internal/collection"
	"github.com/leengari/linkplanner/internal/config"
	"github.com/leengari/linkplanner/internal/domain/spec"
	"github.com/leengari/linkplanner/internal/logging"
	"github.com/leengari/linkplanner/internal/metrics"
	"github.com/leengari/linkplanner/internal/parser"
	"github.com/leengari/linkplanner/internal/plan"
	"github.com/leengari/linkplanner/internal/planner"
)

type planOptions struct {
	file        string
	sourceSize  int
	targetSize  int
	language    string
	format      string
	showMetrics bool
}

func newPlanCmd() *cobra.Command {
	var opts planOptions
	cmd := &cobra.Command{
		Use:   "plan [specification]",
		Short: "plans a link specification",
		Long: `
Plans a link specification given inline, e.g.

	linkplan plan 'AND(levenshtein(x.name,y.name)|0.8,jaro(x.title,y.title)|0.9)'

or read from a YAML file with --file.
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, args, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.file, "file", "f", "", "YAML specification file")
	flags.IntVar(&opts.sourceSize, "source-size", 1000, "number of source records")
	flags.IntVar(&opts.targetSize, "target-size", 1000, "number of target records")
	flags.StringVar(&opts.language, "language", "", "language hint (null, en, de, fr); overrides the config")
	flags.StringVar(&opts.format, "format", "tree", "output format: tree, table or yaml")
	flags.BoolVar(&opts.showMetrics, "metrics", false, "print planner metrics after the plan")
	return cmd
}

func runPlan(cmd *cobra.Command, args []string, opts planOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if opts.language != "" {
		cfg.Language = opts.language
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, cleanup, err := logging.SetupLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer cleanup()
	slog.SetDefault(logger)

	node, err := readSpecification(args, opts.file)
	if err != nil {
		return err
	}

	plannerOpts, err := cfg.PlannerOptions()
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	plannerOpts = append(plannerOpts, planner.WithObservers(
		planner.NewLoggingObserver(),
		metrics.NewObserver(reg),
	))

	p := planner.New(collection.Fixed(opts.sourceSize), collection.Fixed(opts.targetSize), plannerOpts...)
	result, err := p.PlanContext(cmd.Context(), node)
	if err != nil {
		slog.Error("planning failed", "error", err)
		return err
	}

	out := cmd.OutOrStdout()
	if err := render(out, result, opts.format); err != nil {
		return err
	}
	if opts.showMetrics {
		return printMetrics(out, reg)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func readSpecification(args []string, file string) (*spec.Node, error) {
	switch {
	case file != "" && len(args) > 0:
		return nil, errors.New("give either a specification or --file, not both")
	case file != "":
		return spec.LoadFile(file)
	case len(args) == 1:
		return parser.ParseSpecification(args[0])
	default:
		return nil, errors.New("no specification given")
	}
}

func render(w io.Writer, result *plan.NestedPlan, format string) error {
	switch strings.ToLower(format) {
	case "tree":
		_, err := io.WriteString(w, plan.PrintTree(result))
		return err
	case "table":
		plan.RenderTable(w, result)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return errors.Wrap(err, "encoding plan")
		}
		return enc.Close()
	default:
		return errors.Newf("unknown format %q", format)
	}
}

// printMetrics writes counters and histogram counts in name{labels} value form
func printMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gathering metrics")
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			switch {
			case m.GetCounter() != nil:
				fmt.Fprintf(w, "%s %g\n", name, m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Fprintf(w, "%s_count %d\n", name, m.GetHistogram().GetSampleCount())
				fmt.Fprintf(w, "%s_sum %g\n", name, m.GetHistogram().GetSampleSum())
			}
		}
	}
	return nil
}

