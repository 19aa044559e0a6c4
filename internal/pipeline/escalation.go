package pipeline

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/ironsheep/tilecode/internal/imaging"
)

// Enhancer produces an enhanced copy of a page for the escalation pass.
// *imaging.Enhancer implements it.
type Enhancer interface {
	Enhance(ctx context.Context, img image.Image) (image.Image, error)
}

// Pass is one recognition pass over a page.
type Pass struct {
	Number   int           `json:"number"`
	Enhanced bool          `json:"enhanced"`
	Plan     *imaging.Plan `json:"plan"`
	Results  []TileResult  `json:"results"`
	Outcome  Outcome       `json:"outcome"`
	Duration time.Duration `json:"duration"`
	Image    image.Image   `json:"-"`
}

// Scanner runs the plain pass and, when it finds nothing, exactly one pass
// over the enhanced page.
type Scanner struct {
	pool      *SectionPool
	enhancer  Enhancer
	params    imaging.TilingParams
	threshold float64
	escalate  bool
	logger    *slog.Logger
}

// Run scans img using plan for the first pass. track is called on every
// state transition and may be nil.
//
// The returned passes are in execution order. An error is returned only when
// the enhanced page cannot be produced or planned; the outcome is NoMatch in
// that case.
func (s *Scanner) Run(ctx context.Context, img image.Image, plan *imaging.Plan, expectedPrefix string, track func(State)) (Outcome, []Pass, error) {
	if track == nil {
		track = func(State) {}
	}

	first := s.pass(ctx, 1, false, img, plan, expectedPrefix, track)
	passes := []Pass{first}
	if first.Outcome.Status == Success || !s.escalate {
		return first.Outcome, passes, nil
	}

	track(Escalating)
	s.logger.Info("no code found, escalating to enhanced page")

	enhanced, err := s.enhancer.Enhance(ctx, img)
	if err != nil {
		return first.Outcome, passes, fmt.Errorf("failed to enhance page: %w", err)
	}

	enhancedPlan, err := imaging.PlanImage(enhanced, s.params)
	if err != nil {
		return first.Outcome, passes, err
	}
	track(Planned)

	second := s.pass(ctx, 2, true, enhanced, enhancedPlan, expectedPrefix, track)
	passes = append(passes, second)
	return second.Outcome, passes, nil
}

func (s *Scanner) pass(ctx context.Context, number int, enhanced bool, img image.Image, plan *imaging.Plan, expectedPrefix string, track func(State)) Pass {
	logger := s.logger.With("pass", number)
	start := time.Now()

	track(Recognizing)
	results := s.pool.ProcessTiles(ctx, img, plan)

	outcome := Outcome{Status: NoMatch, Pass: number}
	if agg, ok := Aggregate(results, s.threshold, expectedPrefix); ok {
		outcome = Outcome{Status: Success, Code: agg.Code, Occurrences: agg.Occurrences, Pass: number}
	}
	track(Aggregated)

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	p := Pass{
		Number:   number,
		Enhanced: enhanced,
		Plan:     plan,
		Results:  results,
		Outcome:  outcome,
		Duration: time.Since(start),
		Image:    img,
	}
	logger.Info("pass complete",
		"tiles", plan.Len(),
		"failed", failed,
		"outcome", outcome.String(),
		"occurrences", outcome.Occurrences,
		"duration", p.Duration)
	return p
}
