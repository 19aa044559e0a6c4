package batch

import (
	"path/filepath"
	"regexp"
)

var prefixPattern = regexp.MustCompile(`\d{2}-\d{2}`)

// ExpectedPrefix derives the code prefix from the directory two levels above
// the document, e.g. "25-01" for /archive/box 25-01/scans/Scan_0001.tif.
// The first "NN-NN" in that directory name is used.
func ExpectedPrefix(documentPath string) (string, bool) {
	dir := filepath.Base(filepath.Dir(filepath.Dir(documentPath)))
	m := prefixPattern.FindString(dir)
	return m, m != ""
}
