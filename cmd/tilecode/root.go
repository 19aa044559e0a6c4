package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tilecode/internal/app"
	"github.com/ironsheep/tilecode/internal/config"
	"github.com/ironsheep/tilecode/internal/ocr"
)

var (
	cfgFile  string
	envFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "tilecode",
	Short: "Find document codes on scanned pages and rename the files",
	Long: `tilecode reads a document code such as 12-345678-90-1 from scanned pages.

Each page is split into overlapping tiles that are recognized in parallel.
The code seen on the most tiles wins; when no tile yields one, the page is
enhanced and scanned once more. Recognized pages are renamed to
<code>_verified, the rest to <name>_needs-review.

Configuration is read from ./tilecode.yaml or ~/.tilecode/tilecode.yaml and
TILECODE_* environment variables (e.g. TILECODE_TILING_OVERLAP_PERCENT=15).`,
	Version:      Version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./tilecode.yaml or ~/.tilecode/tilecode.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&envFile, "env-file", ".env", "file of KEY=value pairs loaded into the environment when present",
	)
	rootCmd.PersistentFlags().StringVar(
		&logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)",
	)

	rootCmd.AddCommand(scanCmd, watchCmd, planCmd, extractCmd, serveCmd, initConfigCmd, versionCmd)
}

// loadConfig reads the configuration and applies the global flags.
func loadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

// buildApp assembles the scanner from cfg around the Tesseract engine.
// Logs go to stderr so stdout stays usable for results and the MCP protocol.
func buildApp(cfg *config.Config) (*app.App, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logger := app.NewLogger(os.Stderr, level)

	engine := ocr.NewTesseract(cfg.Recognition.TessdataPrefix)
	a, err := app.New(cfg, engine, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build scanner: %w", err)
	}
	logger.Debug("scanner ready", "engine", engine.Name(), "version", Version)
	return a, nil
}
