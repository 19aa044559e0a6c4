// Package pipeline turns one scanned page into a code.
//
// A document moves through a fixed sequence of states:
//
//	PENDING -> PLANNED -> RECOGNIZING -> AGGREGATED -> DONE
//
// When the plain pass finds nothing and escalation is enabled, the page is
// enhanced, re-planned and recognized once more before DONE:
//
//	AGGREGATED -> ESCALATING -> PLANNED -> RECOGNIZING -> AGGREGATED -> DONE
//
// Within a pass, SectionPool recognizes every tile on a bounded set of
// goroutines and waits for all of them. Aggregate then votes: tiles below
// the confidence threshold are ignored, candidates without the expected
// directory prefix are dropped, and the most frequent code wins with ties
// going to the earliest tile.
//
// Engine failures only affect their own tile. Invalid tiling parameters fail
// the whole document before any recognition and are reported as a
// *DocumentError.
package pipeline
