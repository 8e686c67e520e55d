package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"deadline-notify/internal/infra/worker"
	"deadline-notify/internal/observability/logging"
	"deadline-notify/internal/usecase/announce"
)

// workerMetrics is created once per process because the metrics register
// with the default Prometheus registry.
var workerMetrics = sync.OnceValue(worker.NewWorkerMetrics)

type runOptions struct {
	dryRun      bool
	now         string
	sources     []string
	sourcesFile string
}

func runCmd(outputFmt *string) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one announcement pass now",
		Long: `Read every configured source, keep the entries whose deadline is one
of the ALERT_DAYS away, and post one message per deadline date.

Examples:
  # Print the messages instead of posting them
  deadlinectl run --dry-run

  # Pretend today is 2025-01-10, only for the store source
  deadlinectl run --dry-run --now 2025-01-10 --sources アソビストア

  # Use a custom sources file and print the run report as JSON
  deadlinectl run --config configs/sources.yaml -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(*outputFmt); err != nil {
				return err
			}
			return runAnnounce(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), *outputFmt, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Print messages instead of posting them (also DRY_RUN=true)")
	cmd.Flags().StringVar(&opts.now, "now", "", "Reference time, RFC 3339 or YYYY-MM-DD in the worker timezone (default: current time)")
	cmd.Flags().StringSliceVar(&opts.sources, "sources", nil, "Only run these sources (comma separated names)")
	cmd.Flags().StringVarP(&opts.sourcesFile, "config", "c", "", "Sources file (default: SOURCES_FILE or built-in sources)")

	return cmd
}

func runAnnounce(ctx context.Context, stdout, stderr io.Writer, outputFmt string, opts *runOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.NewTextLogger(stderr)

	cfg, err := worker.LoadConfigFromEnv(logger, workerMetrics())
	if err != nil {
		return err
	}
	if opts.dryRun {
		cfg.DryRun = true
	}
	if opts.sourcesFile != "" {
		cfg.SourcesFile = opts.sourcesFile
	}

	now, err := parseNow(opts.now, cfg.Location())
	if err != nil {
		return err
	}

	pipeline, err := worker.BuildPipeline(cfg, worker.PipelineOptions{
		SourceNames:  opts.sources,
		DryRunOutput: stdout,
	}, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()
	ctx = logging.ContextWithRunID(ctx, logging.NewRunID())

	report, runErr := pipeline.Announcer.Run(ctx, now)

	if outputFmt == "text" {
		printReport(stdout, report)
	} else if err := printStructured(stdout, outputFmt, report); err != nil {
		return err
	}
	return runErr
}

// parseNow accepts RFC 3339 or a bare date, which is read as midnight in loc.
// An empty value means the current time.
func parseNow(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: use RFC 3339 or YYYY-MM-DD", value)
	}
	return t, nil
}

func printReport(w io.Writer, report announce.Report) {
	fmt.Fprintf(w, "run %s\n", report.RunID)
	for _, s := range report.Sources {
		fmt.Fprintf(w, "  %s: fetched=%d matched=%d groups=%d sent=%d", s.Name, s.Fetched, s.Matched, s.Groups, s.Sent)
		if s.FetchError != nil {
			fmt.Fprintf(w, " fetch_error=%q", logging.SanitizeError(s.FetchError))
		}
		if s.DeliveryError != nil {
			fmt.Fprintf(w, " delivery_error=%q", logging.SanitizeError(s.DeliveryError))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "sent %d message(s)", report.Sent)
	if report.NothingFound {
		fmt.Fprint(w, " (nothing found)")
	}
	fmt.Fprintln(w)
}
