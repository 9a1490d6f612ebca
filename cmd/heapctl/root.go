package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/cmd/heapctl/logger"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/config"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string
	logFile    string
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Drive and inspect the heapkit free-list allocator",
	Long: `heapctl runs scripted allocation scenarios against the heapkit
free-list allocator, replays the first-fit, next-fit and best-fit
walkthroughs, and reports allocator statistics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVar(&configPath, "config", "", "Config file (default $HEAPCTL_CONFIG_FILE or <user config>/heapctl/config.yaml)")
	rootCmd.PersistentFlags().
		StringVar(&logFile, "log-file", "", "Write allocator debug logs as JSON to this file")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// session is a configured allocator ready to run scenarios.
type session struct {
	cfg   *config.Config
	alloc *alloc.Allocator
	close func() error
}

// openSession loads configuration, applies per-command overrides and
// builds the allocator.
func openSession(override func(*config.Config) error) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if override != nil {
		if err := override(cfg); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	closeLog, err := logger.Init(logger.Options{
		Enabled: verbose || cfg.LogAlloc || logFile != "",
		File:    logFile,
		Level:   slog.LevelDebug,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open log: %w", err)
	}

	r, closeRegion, err := cfg.OpenRegion()
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to open %s region: %w", cfg.Region, err)
	}
	printVerbose("Region: %s, reserve %d bytes, limit %d\n", cfg.Region, cfg.Reserve, cfg.Limit)

	a, err := alloc.New(r, append(cfg.Options(), alloc.WithLogger(logger.L))...)
	if err != nil {
		closeRegion()
		closeLog()
		return nil, err
	}
	return &session{
		cfg:   cfg,
		alloc: a,
		close: func() error {
			err := closeRegion()
			if lerr := closeLog(); err == nil {
				err = lerr
			}
			return err
		},
	}, nil
}

// closeSession releases sess and stores the close error in *errp unless an
// earlier error is already there.
func closeSession(sess *session, errp *error) {
	cerr := sess.close()
	if cerr == nil {
		return
	}
	printVerbose("Closing session: %v\n", cerr)
	if *errp == nil {
		*errp = fmt.Errorf("failed to close session: %w", cerr)
	}
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
