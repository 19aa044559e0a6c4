package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g.
// TILECODE_TILING_SECTION_SIZE_PERCENT=25.
const EnvPrefix = "TILECODE"

// Load reads the configuration: defaults, then the config file, then
// TILECODE_* environment variables. cfgFile may be empty, in which case
// tilecode.yaml is looked up in the working directory and $HOME/.tilecode;
// a missing file is not an error. The result is validated.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tilecode")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.tilecode")
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every leaf key so environment variables can
// override nested settings.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log_level", d.LogLevel)

	v.SetDefault("tiling.section_size_percent", d.Tiling.SectionSizePercent)
	v.SetDefault("tiling.overlap_percent", d.Tiling.OverlapPercent)
	v.SetDefault("tiling.workers", d.Tiling.Workers)

	v.SetDefault("recognition.whitelist", d.Recognition.Whitelist)
	v.SetDefault("recognition.languages", d.Recognition.Languages)
	v.SetDefault("recognition.page_seg_mode", d.Recognition.PageSegMode)
	v.SetDefault("recognition.grayscale", d.Recognition.Grayscale)
	v.SetDefault("recognition.timeout", d.Recognition.Timeout)
	v.SetDefault("recognition.attempts", d.Recognition.Attempts)
	v.SetDefault("recognition.retry_delay", d.Recognition.RetryDelay)
	v.SetDefault("recognition.tessdata_prefix", d.Recognition.TessdataPrefix)

	v.SetDefault("extraction.patterns", d.Extraction.Patterns)
	v.SetDefault("extraction.strip_spaces", d.Extraction.StripSpaces)

	v.SetDefault("aggregation.confidence_threshold", d.Aggregation.ConfidenceThreshold)
	v.SetDefault("aggregation.directory_hint", d.Aggregation.DirectoryHint)

	v.SetDefault("escalation.enabled", d.Escalation.Enabled)
	v.SetDefault("escalation.upscale_factor", d.Escalation.UpscaleFactor)
	v.SetDefault("escalation.sharpen", d.Escalation.Sharpen)
	v.SetDefault("escalation.clip_percent", d.Escalation.ClipPercent)

	v.SetDefault("rename.verified_suffix", d.Rename.VerifiedSuffix)
	v.SetDefault("rename.review_suffix", d.Rename.ReviewSuffix)
	v.SetDefault("rename.dry_run", d.Rename.DryRun)

	v.SetDefault("diagnostics.enabled", d.Diagnostics.Enabled)
	v.SetDefault("diagnostics.tiles", d.Diagnostics.Tiles)
	v.SetDefault("diagnostics.overlay", d.Diagnostics.Overlay)
	v.SetDefault("diagnostics.root", d.Diagnostics.Root)

	v.SetDefault("batch.extensions", d.Batch.Extensions)
	v.SetDefault("batch.report", d.Batch.Report)
	v.SetDefault("batch.report_name", d.Batch.ReportName)

	v.SetDefault("watch.settle", d.Watch.Settle)
}

// LoadEnvFile loads KEY=value pairs from path into the environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%w: log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return level, nil
}

// WriteDefault writes the default configuration to the specified path.
func WriteDefault(path string) error {
	cfg := DefaultConfig()
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# tilecode configuration
# Every key can be overridden from the environment with the TILECODE_ prefix,
# e.g. TILECODE_TILING_SECTION_SIZE_PERCENT=25 or TILECODE_RENAME_DRY_RUN=true.

`)
	return os.WriteFile(path, append(header, data...), 0o644)
}
