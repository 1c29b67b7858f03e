package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"tagmetry/core"
	"tagmetry/logging"
	"tagmetry/progress"
	"tagmetry/signalhandler"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		outputDir    string
		rulesPath    string
		excludeGlobs []string
		noDuplicates bool
		noMetrics    bool
		noRecommend  bool
		debug        bool
		logPath      string
	)

	cmd := &cobra.Command{
		Use:   "tagmetry [dataset-dir]",
		Short: "Analyze an image-plus-caption dataset for tag health and duplicates",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return argError{err}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if logPath == "" {
					logPath = "tagmetry.log"
				}
				if err := logging.SetupLogger(logPath, true); err != nil {
					fmt.Fprintf(os.Stderr, "warning: failed to set up logging: %v\n", err)
				}
				defer logging.CloseLogger()
			}

			runtime.GOMAXPROCS(signalhandler.GetOptimalProcs())

			ctx, stop := signalhandler.SetupCancelContext(context.Background())
			defer stop()

			request := core.Request{
				InputDir:                 args[0],
				OutputDir:                outputDir,
				RulesPath:                rulesPath,
				EnableDuplicateDetection: !noDuplicates,
				EnableTagMetrics:         !noMetrics,
				EnableRecommendations:    !noRecommend,
				ExcludeGlobs:             excludeGlobs,
			}

			sink := progress.SinkFunc(func(u progress.Update) {
				fmt.Fprintf(os.Stderr, "[%5.1f%%] %-10s %s\n", u.Percent, u.Stage, u.Message)
				logging.SinkWriter(string(u.Stage), u.Percent, u.Message)
			})

			result := core.RunAnalysis(ctx, request, sink, core.DefaultMetricsOptions())

			switch result.State {
			case core.StateCompleted:
				fmt.Printf("analysis complete: job %s\n", result.JobID)
				for name, path := range result.Outputs {
					fmt.Printf("  %-16s %s\n", name, path)
				}
				cmd.SilenceUsage = true
				return nil
			case core.StateCancelled:
				cmd.SilenceUsage = true
				return cancelledError{}
			default:
				cmd.SilenceUsage = true
				return fmt.Errorf("%s", result.Error)
			}
		},
	}

	cmd.Flags().StringVar(&outputDir, "output", "", "output directory for artifacts (default: <dataset-dir>/.tagmetry-output)")
	cmd.Flags().StringVar(&rulesPath, "rules", "", "path to a recommendation ruleset (JSON or YAML)")
	cmd.Flags().StringSliceVar(&excludeGlobs, "exclude", nil, "glob pattern(s) to exclude, relative to dataset-dir")
	cmd.Flags().BoolVar(&noDuplicates, "no-duplicates", false, "skip duplicate detection")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "skip tag-health metrics (also skips recommendations)")
	cmd.Flags().BoolVar(&noRecommend, "no-recommendations", false, "skip the recommendation engine")
	cmd.Flags().BoolVar(&debug, "debug", false, "enable structured debug logging")
	cmd.Flags().StringVar(&logPath, "logfile", "", "debug log file path (default: tagmetry.log)")

	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return argError{err}
	})

	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	if err := cmd.Execute(); err != nil {
		if _, ok := err.(cancelledError); ok {
			fmt.Fprintln(os.Stderr, "analysis cancelled")
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		if _, ok := err.(argError); ok {
			return 2
		}
		return 1
	}
	return 0
}

type cancelledError struct{}

func (cancelledError) Error() string { return "Cancelled" }

type argError struct{ error }
