package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ironsheep/tilecode/internal/extract"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks every setting and returns the first problem found.
func (c *Config) Validate() error {
	if _, err := c.SlogLevel(); err != nil {
		return err
	}

	if err := c.TilingParams().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Tiling.Workers < 0 || c.Tiling.Workers > 256 {
		return invalid("tiling.workers must be between 0 and 256, got %d", c.Tiling.Workers)
	}

	if strings.TrimSpace(c.Recognition.Whitelist) == "" {
		return invalid("recognition.whitelist is required")
	}
	if len(c.Recognition.Languages) == 0 {
		return invalid("recognition.languages is required")
	}
	if c.Recognition.PageSegMode < 0 || c.Recognition.PageSegMode > 13 {
		return invalid("recognition.page_seg_mode must be between 0 and 13, got %d", c.Recognition.PageSegMode)
	}
	if c.Recognition.Timeout <= 0 {
		return invalid("recognition.timeout must be greater than 0, got %s", c.Recognition.Timeout)
	}
	if c.Recognition.Attempts < 1 || c.Recognition.Attempts > 10 {
		return invalid("recognition.attempts must be between 1 and 10, got %d", c.Recognition.Attempts)
	}
	if c.Recognition.RetryDelay < 0 {
		return invalid("recognition.retry_delay must not be negative, got %s", c.Recognition.RetryDelay)
	}

	if _, err := extract.New(c.Extraction.Patterns, c.Extraction.StripSpaces); err != nil {
		return fmt.Errorf("%w: extraction.patterns: %v", ErrInvalidConfig, err)
	}

	if t := c.Aggregation.ConfidenceThreshold; t < 0 || t > 100 {
		return invalid("aggregation.confidence_threshold must be between 0 and 100, got %g", t)
	}

	if f := c.Escalation.UpscaleFactor; f < 1 || f > 8 {
		return invalid("escalation.upscale_factor must be between 1 and 8, got %g", f)
	}
	if p := c.Escalation.ClipPercent; p < 0 || p > 49 {
		return invalid("escalation.clip_percent must be between 0 and 49, got %g", p)
	}

	if c.Rename.VerifiedSuffix == "" || c.Rename.ReviewSuffix == "" {
		return invalid("rename suffixes are required")
	}
	if c.Rename.VerifiedSuffix == c.Rename.ReviewSuffix {
		return invalid("rename.verified_suffix and rename.review_suffix must differ")
	}
	if strings.ContainsAny(c.Rename.VerifiedSuffix+c.Rename.ReviewSuffix, `/\`) {
		return invalid("rename suffixes must not contain path separators")
	}

	if len(c.Batch.Extensions) == 0 {
		return invalid("batch.extensions is required")
	}
	if c.Batch.Report && c.Batch.ReportName == "" {
		return invalid("batch.report_name is required when batch.report is enabled")
	}

	if c.Watch.Settle < 0 {
		return invalid("watch.settle must not be negative, got %s", c.Watch.Settle)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
