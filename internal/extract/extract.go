package extract

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidPattern is returned when a code pattern does not compile.
var ErrInvalidPattern = errors.New("invalid code pattern")

// Separator is the canonical separator the code patterns are written against.
const Separator = "-"

// DefaultPatterns are the code patterns in priority order.
var DefaultPatterns = []string{
	`\d{2}-\w{10}`,
	`\d{2}-\d+-\d{2}-\d`,
}

// groupedLength is the separator-free length regrouped as 2/6/2/rest.
const groupedLength = 13

// regrouped matches a name that starts with a code in FormatCode's
// AA-BBBBBB-CC-D form.
var regrouped = regexp.MustCompile(`^[^\W_]{2}-[^\W_]{6}-[^\W_]{2}-[^\W_]+(?:_|$)`)

// confusables collapses glyphs the engine commonly misreads. Letter O
// becomes a zero; bar and bracket shapes become the separator.
var confusables = strings.NewReplacer(
	"O", "0",
	"o", "0",
	"l", Separator,
	"L", Separator,
	"I", Separator,
	"|", Separator,
	"{", Separator,
	"}", Separator,
	"!", Separator,
	"[", Separator,
	"]", Separator,
	"(", Separator,
	")", Separator,
	"<", Separator,
	">", Separator,
	"/", Separator,
	`\`, Separator,
)

// Candidate is a code found in one tile's text.
type Candidate struct {
	Code string `json:"code"`

	// Pattern is the index of the pattern that matched.
	Pattern int `json:"pattern"`
}

// Normalize applies the confusable-character substitution.
func Normalize(text string) string {
	return confusables.Replace(text)
}

// FormatCode regroups a code whose raw match is exactly 13 characters long
// into AA-BBBBBB-CC-D form. Other codes are returned unchanged.
//
// The length is measured on the match as found, separators included, and the
// groups are cut from the separator-free string, so a 13 character match
// with two separators yields groups of 2, 6, 2 and 1. FormatCode is
// idempotent on the codes it produces.
func FormatCode(code string) string {
	if len(code) != groupedLength {
		return code
	}
	s := strings.ReplaceAll(code, Separator, "")
	if len(s) < 11 {
		return code
	}
	return s[:2] + Separator + s[2:8] + Separator + s[8:10] + Separator + s[10:]
}

// Extractor finds codes in recognized text. It is immutable and safe for
// concurrent use.
type Extractor struct {
	patterns    []*regexp.Regexp
	anchored    []*regexp.Regexp
	stripSpaces bool
}

// New compiles patterns, in priority order. With stripSpaces set, all
// whitespace is removed from the text before matching.
func New(patterns []string, stripSpaces bool) (*Extractor, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("%w: no patterns", ErrInvalidPattern)
	}
	e := &Extractor{stripSpaces: stripSpaces}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, p, err)
		}
		e.patterns = append(e.patterns, re)
		e.anchored = append(e.anchored, regexp.MustCompile(`^(?:`+p+`)`))
	}
	return e, nil
}

// Default returns an Extractor for DefaultPatterns.
func Default() *Extractor {
	e, err := New(DefaultPatterns, false)
	if err != nil {
		panic(err)
	}
	return e
}

// Clean returns text as it is presented to the patterns.
func (e *Extractor) Clean(text string) string {
	text = Normalize(text)
	if e.stripSpaces {
		text = strings.Join(strings.Fields(text), "")
	}
	return text
}

// Extract returns the candidate in text, if any.
//
// The first pattern with any match wins, and its leftmost match is taken.
// Later patterns are not consulted once an earlier one has matched.
func (e *Extractor) Extract(text string) (Candidate, bool) {
	cleaned := e.Clean(text)
	for i, re := range e.patterns {
		if m := re.FindString(cleaned); m != "" {
			return Candidate{Code: FormatCode(m), Pattern: i}, true
		}
	}
	return Candidate{}, false
}

// MatchesPrefix reports whether name starts with a code. It is used to
// recognize files that were already renamed. Codes regrouped by FormatCode
// are recognized as well, but only when the name has the regrouped shape.
func (e *Extractor) MatchesPrefix(name string) bool {
	forms := []string{name}
	if regrouped.MatchString(name) {
		i := strings.Index(name, Separator)
		forms = append(forms, name[:i+1]+strings.ReplaceAll(name[i+1:], Separator, ""))
	}
	for _, form := range forms {
		for _, re := range e.anchored {
			if re.MatchString(form) {
				return true
			}
		}
	}
	return false
}
