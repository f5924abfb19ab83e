package cmd

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/strata/internal/counter"
	"github.com/zjrosen/strata/internal/domain"
	"github.com/zjrosen/strata/internal/tracing"
	"github.com/zjrosen/strata/internal/ui/markdown"
)

var (
	inspectIncrements int
	inspectLabel      string
	inspectRaw        bool
	inspectTrace      bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Run a scripted session against the counter domain and report on it",
	Long: `Build the counter domain, drive it with a fixed script of commands and
queries, then print the domain dump, dispatch statistics and metrics.

Examples:
  # Ten increments, rendered report
  strata inspect

  # Plain markdown, suitable for piping
  strata inspect --raw -n 25

  # Print a span per command and query to stdout
  strata inspect --trace`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().IntVarP(&inspectIncrements, "increments", "n", 10, "number of increment commands to send")
	inspectCmd.Flags().StringVarP(&inspectLabel, "label", "l", "", "relabel the counter before reporting")
	inspectCmd.Flags().BoolVar(&inspectRaw, "raw", false, "print markdown without rendering")
	inspectCmd.Flags().BoolVar(&inspectTrace, "trace", false, "export spans to stdout")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	if inspectTrace {
		cfg.Tracing.Enabled = true
		cfg.Tracing.Exporter = tracing.ExporterStdout
	}
	cleanup, err := initLogging(false)
	if err != nil {
		return err
	}
	defer cleanup()

	rt, err := buildDomain()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	scriptErr := runScript(cmd.Context(), rt.domain, out)
	if scriptErr == nil {
		scriptErr = printReport(out, rt)
	}
	if err := rt.shutdown(); err != nil && scriptErr == nil {
		return err
	}
	return scriptErr
}

// runScript drives d through increments, an optional relabel and a few
// queries, the second count query answered from the cache when enabled.
func runScript(ctx context.Context, d *domain.Domain, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for range inspectIncrements {
		if _, err := domain.SendCommandResult[int](ctx, d, &counter.IncrementCommand{}); err != nil {
			return err
		}
	}
	if inspectLabel != "" {
		if err := d.SendCommand(ctx, &counter.SetLabelCommand{Label: inspectLabel}); err != nil {
			return err
		}
	}

	for range 2 {
		if _, err := domain.SendQuery[int](ctx, d, &counter.CurrentCountQuery{}); err != nil {
			return err
		}
	}
	snap, err := domain.SendQuery[counter.Snapshot](ctx, d, &counter.SnapshotQuery{})
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %d (step %d, %d history entries)\n\n", snap.Label, snap.Count, snap.Step, len(snap.History))
	return nil
}

func printReport(out io.Writer, rt *services) error {
	var sb strings.Builder
	sb.WriteString(markdown.DomainReport(rt.domain))
	sb.WriteString("\n")
	if err := writeMetrics(&sb, rt); err != nil {
		return err
	}

	report := sb.String()
	if !inspectRaw {
		r, err := markdown.New(80, cfg.UI.MarkdownStyle)
		if err != nil {
			return err
		}
		if report, err = r.Render(report); err != nil {
			return err
		}
	}
	_, err := io.WriteString(out, report)
	return err
}

// writeMetrics renders the dispatch counter as a markdown table.
func writeMetrics(sb *strings.Builder, rt *services) error {
	families, err := rt.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}

	var rows []string
	for _, mf := range families {
		if mf.GetName() != "strata_dispatch_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			rows = append(rows, fmt.Sprintf("| %s | %s | %s | %.0f |",
				labels["kind"], labels["name"], labels["outcome"], m.GetCounter().GetValue()))
		}
	}
	if len(rows) == 0 {
		return nil
	}
	sort.Strings(rows)
	sb.WriteString("### Dispatches\n\n| kind | name | outcome | total |\n|---|---|---|---|\n")
	sb.WriteString(strings.Join(rows, "\n"))
	sb.WriteString("\n")
	return nil
}
