package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ironsheep/tilecode/internal/pipeline"
)

// Default suffixes appended to renamed documents.
const (
	DefaultVerifiedSuffix = "_verified"
	DefaultReviewSuffix   = "_needs-review"
)

// maxDisambiguator bounds the search for a free file name.
const maxDisambiguator = 10000

// Renamer renames documents according to their outcome.
type Renamer struct {
	VerifiedSuffix string
	ReviewSuffix   string

	// DryRun computes target names without touching the file system.
	DryRun bool

	// claimed holds dry-run targets so later documents do not reuse them.
	claimed *claimSet
}

// DefaultRenamer returns a Renamer with the default suffixes.
func DefaultRenamer() Renamer {
	return Renamer{
		VerifiedSuffix: DefaultVerifiedSuffix,
		ReviewSuffix:   DefaultReviewSuffix,
		claimed:        newClaimSet(),
	}
}

type claimSet struct {
	mu    sync.Mutex
	paths map[string]bool
}

func newClaimSet() *claimSet {
	return &claimSet{paths: make(map[string]bool)}
}

// IsReview reports whether name was produced by a NoMatch rename.
func (r Renamer) IsReview(name string) bool {
	return r.reviewPattern().MatchString(stem(name))
}

func (r Renamer) reviewPattern() *regexp.Regexp {
	return regexp.MustCompile(regexp.QuoteMeta(r.ReviewSuffix) + `(_\d+)?$`)
}

// Target returns the base name a document should get for outcome, without
// disambiguation. The second result is false when the document keeps its
// name.
func (r Renamer) Target(path string, outcome pipeline.Outcome) (string, bool) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	switch outcome.Status {
	case pipeline.Success:
		return outcome.Code + r.VerifiedSuffix + ext, true
	case pipeline.NoMatch:
		s := r.reviewPattern().ReplaceAllString(stem(base), "")
		return s + r.ReviewSuffix + ext, true
	}
	return base, false
}

// Rename moves the document to its target name in the same directory and
// returns the new path. An existing file is never overwritten: "_1", "_2"
// and so on are appended to the stem until a free name is found. Documents
// that keep their name return their own path.
func (r Renamer) Rename(path string, outcome pipeline.Outcome) (string, error) {
	name, ok := r.Target(path, outcome)
	if !ok || name == filepath.Base(path) {
		return path, nil
	}

	want := filepath.Join(filepath.Dir(path), name)
	if r.DryRun {
		return r.claim(want, path)
	}
	dest, err := UniquePath(want, path)
	if err != nil {
		return "", err
	}
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("failed to rename %s: %w", filepath.Base(path), err)
	}
	return dest, nil
}

// claim picks a free name for a dry run, also skipping names handed out to
// earlier documents since nothing was actually moved.
func (r Renamer) claim(want, self string) (string, error) {
	if r.claimed == nil {
		return UniquePath(want, self)
	}
	c := r.claimed
	c.mu.Lock()
	defer c.mu.Unlock()
	dest, err := uniquePath(want, self, func(p string) bool { return c.paths[p] })
	if err != nil {
		return "", err
	}
	c.paths[dest] = true
	return dest, nil
}

// UniquePath returns want if nothing exists there, or the first free
// want-with-"_N" variant. self is treated as free so a document can keep a
// name it already owns.
func UniquePath(want, self string) (string, error) {
	return uniquePath(want, self, nil)
}

func uniquePath(want, self string, taken func(string) bool) (string, error) {
	dir := filepath.Dir(want)
	ext := filepath.Ext(want)
	s := strings.TrimSuffix(filepath.Base(want), ext)

	candidate := want
	for n := 1; n <= maxDisambiguator; n++ {
		if taken != nil && taken(candidate) {
			candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", s, n, ext))
			continue
		}
		if candidate == self {
			return candidate, nil
		}
		_, err := os.Lstat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s_%d%s", s, n, ext))
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", filepath.Base(want), maxDisambiguator)
}

func stem(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
