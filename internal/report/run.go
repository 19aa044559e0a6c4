package report

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/tilecode/internal/pipeline"
)

// DefaultRunReportName is the run report file written into the scanned
// directory.
const DefaultRunReportName = "tilecode-report.yaml"

// DocumentEntry is one document in a run report.
type DocumentEntry struct {
	ID          string `yaml:"id,omitempty" json:"id,omitempty"`
	Path        string `yaml:"path" json:"path"`
	NewPath     string `yaml:"new_path,omitempty" json:"new_path,omitempty"`
	Status      string `yaml:"status" json:"status"`
	Code        string `yaml:"code,omitempty" json:"code,omitempty"`
	Occurrences int    `yaml:"occurrences,omitempty" json:"occurrences,omitempty"`
	Pass        int    `yaml:"pass,omitempty" json:"pass,omitempty"`
	Prefix      string `yaml:"expected_prefix,omitempty" json:"expected_prefix,omitempty"`
	Error       string `yaml:"error,omitempty" json:"error,omitempty"`
	DurationMS  int64  `yaml:"duration_ms" json:"duration_ms"`
}

// Summary counts documents by status.
type Summary struct {
	Total            int `yaml:"total" json:"total"`
	Success          int `yaml:"success" json:"success"`
	NoMatch          int `yaml:"no_match" json:"no_match"`
	AlreadyProcessed int `yaml:"already_processed" json:"already_processed"`
	Errors           int `yaml:"errors" json:"errors"`
}

// Run accumulates the results of a batch. It is safe for concurrent use.
type Run struct {
	mu         sync.Mutex
	ID         string          `yaml:"run_id" json:"run_id"`
	StartedAt  time.Time       `yaml:"started_at" json:"started_at"`
	FinishedAt time.Time       `yaml:"finished_at,omitempty" json:"finished_at,omitempty"`
	DryRun     bool            `yaml:"dry_run" json:"dry_run"`
	Summary    Summary         `yaml:"summary" json:"summary"`
	Documents  []DocumentEntry `yaml:"documents" json:"documents"`
}

// NewRun starts a run report with a fresh run ID.
func NewRun(dryRun bool) *Run {
	return &Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
	}
}

// Add records one document. res may be nil when the document failed before
// scanning; docErr is the failure, if any.
func (r *Run) Add(path, newPath, prefix string, res *pipeline.Result, docErr error, elapsed time.Duration) DocumentEntry {
	entry := DocumentEntry{
		Path:       path,
		NewPath:    newPath,
		Prefix:     prefix,
		Status:     pipeline.NoMatch.String(),
		DurationMS: elapsed.Milliseconds(),
	}
	if res != nil {
		entry.ID = res.ID
		entry.Status = res.Outcome.Status.String()
		entry.Code = res.Outcome.Code
		entry.Occurrences = res.Outcome.Occurrences
		entry.Pass = res.Outcome.Pass
	}
	if docErr != nil {
		entry.Error = docErr.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Documents = append(r.Documents, entry)
	r.Summary.Total++
	switch {
	case docErr != nil:
		r.Summary.Errors++
	case entry.Status == pipeline.Success.String():
		r.Summary.Success++
	case entry.Status == pipeline.AlreadyProcessed.String():
		r.Summary.AlreadyProcessed++
	default:
		r.Summary.NoMatch++
	}
	return entry
}

// Finish stamps the end time.
func (r *Run) Finish() {
	r.mu.Lock()
	r.FinishedAt = time.Now().UTC()
	r.mu.Unlock()
}

// Marshal renders the report as YAML.
func (r *Run) Marshal() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return yaml.Marshal(r)
}

// Write saves the report to path.
func (r *Run) Write(path string) error {
	data, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}

// ReadRun loads a run report written by Write.
func ReadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run report: %w", err)
	}
	var r Run
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}
	return &r, nil
}
