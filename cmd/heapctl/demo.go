package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/scenario"
)

func init() {
	rootCmd.AddCommand(newDemoCmd())
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo [first-fit|next-fit|best-fit]",
		Short: "Replay a built-in search-mode walkthrough",
		Long: `The demo command replays the built-in walkthroughs, printing the chain
as [[size, used], ...] after every step. Without an argument every demo runs.

Example:
  heapctl demo
  heapctl demo next-fit`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: scenario.DemoNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(args)
		},
	}
	return cmd
}

func runDemo(args []string) error {
	names := scenario.DemoNames()
	if len(args) == 1 {
		m, err := alloc.ParseSearchMode(args[0])
		if err != nil {
			return err
		}
		names = []string{m.String()}
	}

	var reports []*scenario.Report
	for _, name := range names {
		s, err := scenario.Demo(name)
		if err != nil {
			return err
		}

		if !jsonOut {
			printInfo("\n== %s ==\n", s.Name)
			printInfo("%s\n\n", s.Description)
		}
		rep, err := runScenario(s, func(res scenario.StepResult) {
			if !jsonOut {
				printStep(res)
			}
		})
		if err != nil {
			return fmt.Errorf("demo %s: %w", name, err)
		}
		reports = append(reports, rep)
	}

	if jsonOut {
		return printJSON(reports)
	}
	printInfo("\nAll assertions passed!\n")
	return nil
}
