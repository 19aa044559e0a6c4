package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	watchSettle      time.Duration
	watchDryRun      bool
	watchDiagnostics bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Scan pages as they are dropped into a folder",
	Long: `Watch a folder and scan every page written into it, one at a time.

Pages already in the folder are scanned first. A page is picked up once it
has not been written to for the settle time. Stop with Ctrl+C; the run
report is written on exit.

Examples:
  tilecode watch ./inbox
  tilecode watch --settle 5s ./inbox`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("settle") {
			cfg.Watch.Settle = watchSettle
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.Rename.DryRun = watchDryRun
		}
		if cmd.Flags().Changed("diagnostics") {
			cfg.Diagnostics.Enabled = watchDiagnostics
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}

		run := a.NewRun()
		watchErr := a.Runner.Watch(cmd.Context(), dir, cfg.Watch.Settle, run)
		if err := a.FinishRun(run, dir); err != nil {
			return err
		}
		return watchErr
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 0, "quiet time before a new file is scanned (default from watch.settle)")
	watchCmd.Flags().BoolVar(&watchDryRun, "dry-run", false, "report the new names without renaming")
	watchCmd.Flags().BoolVar(&watchDiagnostics, "diagnostics", false, "write per-tile artifacts under results/")
}
