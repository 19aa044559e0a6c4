package pipeline

import "fmt"

// Status is the kind of Outcome.
type Status int

const (
	// NoMatch means no pass produced a surviving candidate.
	NoMatch Status = iota
	// Success means a code was selected.
	Success
	// AlreadyProcessed means the document name already carries a code and
	// recognition was skipped.
	AlreadyProcessed
)

func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case AlreadyProcessed:
		return "already_processed"
	default:
		return "no_match"
	}
}

// MarshalText encodes the status by name in logs and reports.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Outcome is the terminal result for one document.
type Outcome struct {
	Status Status `json:"status" yaml:"status"`
	Code   string `json:"code,omitempty" yaml:"code,omitempty"`

	// Occurrences is the number of tiles that voted for Code.
	Occurrences int `json:"occurrences,omitempty" yaml:"occurrences,omitempty"`

	// Pass is the pass that produced the outcome; 0 when none ran.
	Pass int `json:"pass" yaml:"pass"`
}

func (o Outcome) String() string {
	if o.Status == Success {
		return fmt.Sprintf("%s(%s)", o.Status, o.Code)
	}
	return o.Status.String()
}

// State is a step of the document state machine.
type State int

const (
	Pending State = iota
	Planned
	Recognizing
	Aggregated
	Escalating
	Done
)

func (s State) String() string {
	switch s {
	case Pending:
		return "PENDING"
	case Planned:
		return "PLANNED"
	case Recognizing:
		return "RECOGNIZING"
	case Aggregated:
		return "AGGREGATED"
	case Escalating:
		return "ESCALATING"
	case Done:
		return "DONE"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
