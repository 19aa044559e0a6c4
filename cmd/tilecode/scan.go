package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	scanDryRun      bool
	scanDiagnostics bool
	scanNoReport    bool
	scanWorkers     int
)

var scanCmd = &cobra.Command{
	Use:   "scan <file|dir>...",
	Short: "Scan pages and rename them by their document code",
	Long: `Scan every page given, or every page with a configured extension in the
given directories, one document at a time in sorted order.

Pages whose code is found are renamed to <code>_verified; the rest are
renamed to <name>_needs-review. Existing files are never overwritten. A run
report (tilecode-report.yaml) is written next to the first argument.

Examples:
  tilecode scan ./inbox
  tilecode scan --dry-run ./inbox/Scan_0001.tif
  tilecode scan --diagnostics --workers 4 ./inbox`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("dry-run") {
			cfg.Rename.DryRun = scanDryRun
		}
		if cmd.Flags().Changed("diagnostics") {
			cfg.Diagnostics.Enabled = scanDiagnostics
		}
		if cmd.Flags().Changed("workers") {
			cfg.Tiling.Workers = scanWorkers
		}
		if scanNoReport {
			cfg.Batch.Report = false
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		a, err := buildApp(cfg)
		if err != nil {
			return err
		}

		run := a.NewRun()
		runErr := a.Runner.Run(cmd.Context(), args, run)
		if err := a.FinishRun(run, reportDir(args[0])); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, d := range run.Documents {
			target := d.NewPath
			if target == "" {
				target = "(unchanged)"
			}
			fmt.Fprintf(out, "%-18s %s -> %s\n", d.Status, filepath.Base(d.Path), filepath.Base(target))
		}
		fmt.Fprintf(out, "\n%d documents: %d verified, %d need review, %d already processed, %d errors\n",
			run.Summary.Total, run.Summary.Success, run.Summary.NoMatch, run.Summary.AlreadyProcessed, run.Summary.Errors)
		if cfg.Rename.DryRun {
			fmt.Fprintln(out, "dry run: no files were renamed")
		}
		return runErr
	},
}

// reportDir is the directory itself for a directory argument, else the
// file's parent.
func reportDir(arg string) string {
	if info, err := os.Stat(arg); err == nil && info.IsDir() {
		return arg
	}
	return filepath.Dir(arg)
}

func init() {
	scanCmd.Flags().BoolVar(&scanDryRun, "dry-run", false, "report the new names without renaming")
	scanCmd.Flags().BoolVar(&scanDiagnostics, "diagnostics", false, "write per-tile artifacts under results/")
	scanCmd.Flags().BoolVar(&scanNoReport, "no-report", false, "do not write the run report")
	scanCmd.Flags().IntVar(&scanWorkers, "workers", 0, "tiles recognized in parallel (0 = all CPUs)")
}
