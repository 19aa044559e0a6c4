package main

import (
	"github.com/spf13/cobra"

	"github.com/ironsheep/tilecode/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	Long: `Serve the scanner to MCP clients over stdio (JSON-RPC 2.0, one message per
line). Logs go to stderr.

Tools: scan_document, plan_tiles, extract_code, image_info.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := buildApp(cfg)
		if err != nil {
			return err
		}

		srv := server.New(server.Config{
			Scanner:       a.Pipeline,
			Extractor:     a.Extractor,
			Renamer:       a.Renamer,
			Tiling:        cfg.TilingParams(),
			DirectoryHint: cfg.Aggregation.DirectoryHint,
			Version:       Version,
			Logger:        a.Logger,
		})
		a.Logger.Info("MCP server started", "version", Version, "commit", GitCommit)
		return srv.Run(cmd.Context())
	},
}
