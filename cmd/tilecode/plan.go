package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ironsheep/tilecode/internal/imaging"
)

var (
	planSection int
	planOverlap int
	planOverlay string
)

var planCmd = &cobra.Command{
	Use:   "plan <file>",
	Short: "Print the tile grid for a page",
	Long: `Print the tiles a page would be split into with the configured (or given)
section size and overlap, and optionally save the page with the tiles drawn
on it.

Examples:
  tilecode plan Scan_0001.tif
  tilecode plan --section 30 --overlap 5 --overlay grid.png Scan_0001.tif`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		params := cfg.TilingParams()
		if cmd.Flags().Changed("section") {
			params.SectionSizePercent = planSection
		}
		if cmd.Flags().Changed("overlap") {
			params.OverlapPercent = planOverlap
		}

		img, err := imaging.Load(args[0])
		if err != nil {
			return err
		}
		plan, err := imaging.PlanImage(img, params)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "page %dx%d, section %dx%d, step %dx%d, %d tiles\n",
			plan.ImageWidth, plan.ImageHeight, plan.SectionWidth, plan.SectionHeight,
			plan.ShiftWidth, plan.ShiftHeight, plan.Len())
		for i, t := range plan.Tiles {
			fmt.Fprintf(out, "%4d  %-20s x=%d y=%d %dx%d\n", i, t.Name(), t.X, t.Y, t.Width, t.Height)
		}

		if planOverlay != "" {
			if err := imaging.SavePNG(imaging.PlanOverlay(img, plan, "#FF0000"), planOverlay); err != nil {
				return err
			}
			fmt.Fprintf(out, "overlay written to %s\n", planOverlay)
		}
		return nil
	},
}

func init() {
	planCmd.Flags().IntVar(&planSection, "section", 0, "section size in percent of each dimension")
	planCmd.Flags().IntVar(&planOverlap, "overlap", 0, "overlap in percent of each dimension")
	planCmd.Flags().StringVar(&planOverlay, "overlay", "", "write the page with the tile grid to this PNG")
}
