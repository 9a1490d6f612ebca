package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/config"
	"github.com/joshuapare/heapkit/internal/scenario"
)

var (
	runMode    string
	runRegion  string
	runLimit   uint64
	runReserve int
)

func init() {
	cmd := newRunCmd()
	addRegionFlags(cmd)
	rootCmd.AddCommand(cmd)
}

// addRegionFlags registers the allocator overrides shared by run and stats.
func addRegionFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&runMode, "mode", "", "Search mode: first-fit, next-fit or best-fit (overrides the scenario)")
	cmd.Flags().StringVar(&runRegion, "region", "", "Region kind: memory or mapped")
	cmd.Flags().Uint64Var(&runLimit, "limit", 0, "Deny growth past this many bytes")
	cmd.Flags().IntVar(&runReserve, "reserve", 0, "Bytes reserved for the region")
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Run an allocation scenario",
		Long: `The run command executes a YAML scenario step by step and checks every
expectation it declares. The chain is printed after each step.

Example:
  heapctl run reuse.yaml
  heapctl run reuse.yaml --mode best-fit --limit 4096
  heapctl run reuse.yaml --region mapped --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	s, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	rep, err := runScenario(s, func(res scenario.StepResult) {
		if !jsonOut {
			printStep(res)
		}
	})
	if rep != nil && jsonOut {
		if jerr := printJSON(rep); jerr != nil {
			return jerr
		}
		return err
	}
	if err != nil {
		return err
	}

	printInfo("\n%s: all %d steps passed (%s)\n", displayName(s, args[0]), len(rep.Steps), rep.Mode)
	return nil
}

// runScenario opens a session sized for s and runs it.
// A failure to release the region or log is returned when the run itself
// succeeded.
func runScenario(s *scenario.Scenario, onStep func(scenario.StepResult)) (rep *scenario.Report, err error) {
	if runMode != "" {
		m, err := alloc.ParseSearchMode(runMode)
		if err != nil {
			return nil, err
		}
		s.Mode = &m
	}

	sess, err := openSession(func(c *config.Config) error {
		if s.Reserve > 0 {
			c.Reserve = s.Reserve
		}
		if s.Limit > 0 {
			c.Limit = s.Limit
		}
		if runRegion != "" {
			c.Region = runRegion
		}
		if runReserve > 0 {
			c.Reserve = runReserve
		}
		if runLimit > 0 {
			c.Limit = runLimit
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer closeSession(sess, &err)

	printVerbose("Running %q: %d steps\n", s.Name, len(s.Steps))
	r := &scenario.Runner{Alloc: sess.alloc, Log: logger.L, OnStep: onStep}
	return r.Run(s)
}

func printStep(res scenario.StepResult) {
	var what strings.Builder
	switch res.Op {
	case scenario.OpAlloc:
		fmt.Fprintf(&what, "alloc(%d)", res.Size)
	case scenario.OpFree:
		fmt.Fprintf(&what, "free(%s)", res.Label)
	case scenario.OpInit:
		fmt.Fprintf(&what, "init(%s)", res.Mode)
	case scenario.OpCheck:
		what.WriteString("check")
		if res.Label != "" {
			fmt.Fprintf(&what, "(%s)", res.Label)
		}
	}
	if res.Op == scenario.OpAlloc && res.Label != "" {
		fmt.Fprintf(&what, " as %s", res.Label)
	}

	var outcome string
	switch {
	case res.Error != "":
		outcome = res.Error
	case res.Op == scenario.OpAlloc && res.Grew:
		outcome = fmt.Sprintf("@%d size %d, grew", res.Offset, res.Block)
	case res.Op == scenario.OpAlloc:
		outcome = fmt.Sprintf("@%d size %d, reused", res.Offset, res.Block)
	default:
		outcome = "ok"
	}

	printInfo("%3d  %-22s %-24s %s\n", res.Index, what.String(), outcome, res.Chain)
}

func displayName(s *scenario.Scenario, fallback string) string {
	if s.Name != "" {
		return s.Name
	}
	return fallback
}
