package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dshills/nsevent/internal/event"
	"github.com/dshills/nsevent/internal/scenario"
)

// ErrScenarioFailed is returned when a scenario step misses an expectation.
var ErrScenarioFailed = errors.New("scenario failed")

func newRunCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "run <scenario.yaml>...",
		Short: "Run scenarios and report the results",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd.OutOrStdout(), args, c.registryOptions())
		},
	}
}

// runScenarios runs every file in order and renders a report for each.
// All files run even when an earlier one fails or cannot be loaded; load
// errors are printed in place and returned together at the end.
func runScenarios(w io.Writer, paths []string, opts []event.Option) error {
	var errs []error
	failed := 0
	for _, path := range paths {
		ok, err := runScenario(w, path, opts)
		if err != nil {
			fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			errs = append(errs, err)
			continue
		}
		if !ok {
			failed++
		}
	}
	if failed > 0 {
		errs = append(errs, fmt.Errorf("%w: %d of %d", ErrScenarioFailed, failed, len(paths)))
	}
	return errors.Join(errs...)
}

// runScenario loads, runs and renders one scenario file.
func runScenario(w io.Writer, path string, opts []event.Option) (bool, error) {
	s, err := scenario.Load(path)
	if err != nil {
		return false, err
	}
	report, err := scenario.Run(s, opts...)
	if err != nil {
		return false, fmt.Errorf("%s: %w", path, err)
	}
	renderReport(w, path, report)
	return report.OK(), nil
}
