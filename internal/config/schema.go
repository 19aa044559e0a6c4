package config

import (
	"time"

	"github.com/ironsheep/tilecode/internal/extract"
	"github.com/ironsheep/tilecode/internal/imaging"
	"github.com/ironsheep/tilecode/internal/ocr"
)

// Config is the complete scanner configuration.
// Stored at: ./tilecode.yaml or $HOME/.tilecode/tilecode.yaml
type Config struct {
	LogLevel    string            `mapstructure:"log_level" yaml:"log_level"`
	Tiling      TilingConfig      `mapstructure:"tiling" yaml:"tiling"`
	Recognition RecognitionConfig `mapstructure:"recognition" yaml:"recognition"`
	Extraction  ExtractionConfig  `mapstructure:"extraction" yaml:"extraction"`
	Aggregation AggregationConfig `mapstructure:"aggregation" yaml:"aggregation"`
	Escalation  EscalationConfig  `mapstructure:"escalation" yaml:"escalation"`
	Rename      RenameConfig      `mapstructure:"rename" yaml:"rename"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics" yaml:"diagnostics"`
	Batch       BatchConfig       `mapstructure:"batch" yaml:"batch"`
	Watch       WatchConfig       `mapstructure:"watch" yaml:"watch"`
}

// TilingConfig controls the tile grid.
type TilingConfig struct {
	SectionSizePercent int `mapstructure:"section_size_percent" yaml:"section_size_percent"` // Tile size, % of each dimension
	OverlapPercent     int `mapstructure:"overlap_percent" yaml:"overlap_percent"`           // Overlap, % of each dimension
	Workers            int `mapstructure:"workers" yaml:"workers"`                           // Parallel tiles, 0 = all CPUs
}

// RecognitionConfig configures the Tesseract engine and the per-tile calls.
type RecognitionConfig struct {
	Whitelist      string        `mapstructure:"whitelist" yaml:"whitelist"`
	Languages      []string      `mapstructure:"languages" yaml:"languages"`
	PageSegMode    int           `mapstructure:"page_seg_mode" yaml:"page_seg_mode"`
	Grayscale      bool          `mapstructure:"grayscale" yaml:"grayscale"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Attempts       uint          `mapstructure:"attempts" yaml:"attempts"`
	RetryDelay     time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
	TessdataPrefix string        `mapstructure:"tessdata_prefix" yaml:"tessdata_prefix"`
}

// ExtractionConfig holds the code patterns, highest priority first.
type ExtractionConfig struct {
	Patterns    []string `mapstructure:"patterns" yaml:"patterns"`
	StripSpaces bool     `mapstructure:"strip_spaces" yaml:"strip_spaces"`
}

// AggregationConfig controls voting.
type AggregationConfig struct {
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold" yaml:"confidence_threshold"` // 0-100
	DirectoryHint       bool    `mapstructure:"directory_hint" yaml:"directory_hint"`             // Require the NN-NN prefix of the grandparent directory
}

// EscalationConfig controls the enhanced second pass.
type EscalationConfig struct {
	Enabled       bool    `mapstructure:"enabled" yaml:"enabled"`
	UpscaleFactor float64 `mapstructure:"upscale_factor" yaml:"upscale_factor"`
	Sharpen       bool    `mapstructure:"sharpen" yaml:"sharpen"`
	ClipPercent   float64 `mapstructure:"clip_percent" yaml:"clip_percent"`
}

// RenameConfig controls how documents are renamed.
type RenameConfig struct {
	VerifiedSuffix string `mapstructure:"verified_suffix" yaml:"verified_suffix"`
	ReviewSuffix   string `mapstructure:"review_suffix" yaml:"review_suffix"`
	DryRun         bool   `mapstructure:"dry_run" yaml:"dry_run"`
}

// DiagnosticsConfig controls the per-pass artifacts.
type DiagnosticsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Tiles   bool   `mapstructure:"tiles" yaml:"tiles"`
	Overlay bool   `mapstructure:"overlay" yaml:"overlay"`
	Root    string `mapstructure:"root" yaml:"root"` // Empty = next to each document
}

// BatchConfig controls directory scans.
type BatchConfig struct {
	Extensions []string `mapstructure:"extensions" yaml:"extensions"`
	Report     bool     `mapstructure:"report" yaml:"report"`
	ReportName string   `mapstructure:"report_name" yaml:"report_name"`
}

// WatchConfig controls drop-folder mode.
type WatchConfig struct {
	Settle time.Duration `mapstructure:"settle" yaml:"settle"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	opts := ocr.DefaultOptions()
	enh := imaging.DefaultEnhanceOptions()

	return &Config{
		LogLevel: "info",
		Tiling: TilingConfig{
			SectionSizePercent: 50,
			OverlapPercent:     10,
		},
		Recognition: RecognitionConfig{
			Whitelist:   opts.Whitelist,
			Languages:   opts.Languages,
			PageSegMode: opts.PageSegMode,
			Grayscale:   true,
			Timeout:     30 * time.Second,
			Attempts:    2,
			RetryDelay:  500 * time.Millisecond,
		},
		Extraction: ExtractionConfig{
			Patterns: append([]string(nil), extract.DefaultPatterns...),
		},
		Aggregation: AggregationConfig{
			ConfidenceThreshold: 50,
			DirectoryHint:       true,
		},
		Escalation: EscalationConfig{
			Enabled:       true,
			UpscaleFactor: enh.UpscaleFactor,
			Sharpen:       enh.Sharpen,
			ClipPercent:   enh.ClipPercent,
		},
		Rename: RenameConfig{
			VerifiedSuffix: "_verified",
			ReviewSuffix:   "_needs-review",
		},
		Diagnostics: DiagnosticsConfig{
			Enabled: false,
			Tiles:   true,
			Overlay: true,
		},
		Batch: BatchConfig{
			Extensions: []string{".tif", ".tiff"},
			Report:     true,
			ReportName: "tilecode-report.yaml",
		},
		Watch: WatchConfig{
			Settle: 2 * time.Second,
		},
	}
}

// TilingParams returns the tiling parameters.
func (c *Config) TilingParams() imaging.TilingParams {
	return imaging.TilingParams{
		SectionSizePercent: c.Tiling.SectionSizePercent,
		OverlapPercent:     c.Tiling.OverlapPercent,
	}
}

// OCROptions returns the engine options.
func (c *Config) OCROptions() ocr.Options {
	return ocr.Options{
		Whitelist:   c.Recognition.Whitelist,
		Languages:   c.Recognition.Languages,
		PageSegMode: c.Recognition.PageSegMode,
	}
}

// EnhanceOptions returns the enhancement settings of the escalation pass.
func (c *Config) EnhanceOptions() imaging.EnhanceOptions {
	return imaging.EnhanceOptions{
		UpscaleFactor: c.Escalation.UpscaleFactor,
		Sharpen:       c.Escalation.Sharpen,
		ClipPercent:   c.Escalation.ClipPercent,
	}
}
