package pipeline

import "strings"

// Aggregation is the winning code of a pass.
type Aggregation struct {
	Code        string `json:"code"`
	Occurrences int    `json:"occurrences"`

	// FirstIndex is the plan position of the first tile that voted for Code.
	FirstIndex int `json:"first_index"`
}

// Aggregate selects the code reported by the most tiles.
//
// Tiles below threshold or without a candidate do not vote. When
// expectedPrefix is not empty, candidates that do not contain it are
// discarded. Ties go to the code seen first in plan order.
func Aggregate(results []TileResult, threshold float64, expectedPrefix string) (Aggregation, bool) {
	counts := make(map[string]*Aggregation)
	var order []*Aggregation

	for _, r := range results {
		if r.Candidate == nil || r.MeanConfidence < threshold {
			continue
		}
		code := r.Candidate.Code
		if expectedPrefix != "" && !strings.Contains(code, expectedPrefix) {
			continue
		}
		a, ok := counts[code]
		if !ok {
			a = &Aggregation{Code: code, FirstIndex: r.Index}
			counts[code] = a
			order = append(order, a)
		}
		a.Occurrences++
	}

	var best *Aggregation
	for _, a := range order {
		if best == nil || a.Occurrences > best.Occurrences {
			best = a
		}
	}
	if best == nil {
		return Aggregation{}, false
	}
	return *best, true
}
