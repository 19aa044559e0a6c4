package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tilecode/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <text>...",
	Short: "Extract a document code from recognized text",
	Long: `Apply the confusable-character mapping and the configured code patterns to
a piece of text, the way each tile's recognized text is handled.

Example:
  tilecode extract "Ref: 12-345678|9O|1"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ext, err := extract.New(cfg.Extraction.Patterns, cfg.Extraction.StripSpaces)
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "cleaned: %s\n", ext.Clean(text))
		c, ok := ext.Extract(text)
		if !ok {
			fmt.Fprintln(out, "no code found")
			return nil
		}
		fmt.Fprintf(out, "code:    %s (pattern %d: %s)\n", c.Code, c.Pattern, cfg.Extraction.Patterns[c.Pattern])
		return nil
	},
}
