package extract

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"12-345678|90|1", "12-345678-90-1"},
		{"1O-oO", "10-00"},
		{"12[34]56{7}8", "12-34-56-7-8"},
		{`a/b\c!d<e>f(g)h`, "a-b-c-d-e-f-g-h"},
		{"lLI", "---"},
		{"0123456789A-", "0123456789A-"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"13 chars one separator", "12-3456789A01", "12-345678-9A-01"},
		{"13 chars two separators", "12-345678-901", "12-345678-90-1"},
		{"13 chars no separator", "1234567890123", "12-345678-90-123"},
		{"14 chars kept", "12-345678-90-1", "12-345678-90-1"},
		{"short kept", "12-3-45-6", "12-3-45-6"},
		{"13 chars too many separators", "12-34567-90-1", "12-34567-90-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCode(tt.in); got != tt.want {
				t.Errorf("FormatCode(%q): got %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatCode_Idempotent(t *testing.T) {
	inputs := []string{
		"12-3456789A01",
		"12-345678-901",
		"1234567890123",
		"12-345678-90-1",
		"99-AAAAAAAAAA",
	}
	for _, in := range inputs {
		once := FormatCode(in)
		if twice := FormatCode(once); twice != once {
			t.Errorf("FormatCode not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestExtract(t *testing.T) {
	e := Default()

	tests := []struct {
		name    string
		text    string
		want    string
		pattern int
		found   bool
	}{
		{"grouped code via confusables", "12-345678|90|1", "12-345678-90-1", 1, true},
		{"first pattern regrouped", "xx 12-3456789A01 yy", "12-345678-9A-01", 0, true},
		{"letter O read as zero", "12-345678-9O-1", "12-345678-90-1", 1, true},
		{"no code", "hello world", "", 0, false},
		{"empty", "", "", 0, false},
		{"digits only", "1234567890", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Extract(tt.text)
			if ok != tt.found {
				t.Fatalf("found: got %v, want %v (candidate %+v)", ok, tt.found, got)
			}
			if !ok {
				return
			}
			if got.Code != tt.want {
				t.Errorf("Code: got %q, want %q", got.Code, tt.want)
			}
			if got.Pattern != tt.pattern {
				t.Errorf("Pattern: got %d, want %d", got.Pattern, tt.pattern)
			}
		})
	}
}

func TestExtract_PatternPriority(t *testing.T) {
	// The text contains a match for the second pattern before a match for the
	// first; the first pattern still wins.
	e, err := New([]string{`B\d+`, `A\d+`}, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, ok := e.Extract("A1 B2 A3 B4")
	if !ok {
		t.Fatal("expected a candidate")
	}
	if got.Code != "B2" {
		t.Errorf("Code: got %q, want B2", got.Code)
	}
}

func TestExtract_FirstOccurrence(t *testing.T) {
	e := Default()

	got, ok := e.Extract("11-222222-33-4\n55-666666-77-8")
	if !ok {
		t.Fatal("expected a candidate")
	}
	if got.Code != "11-222222-33-4" {
		t.Errorf("Code: got %q, want 11-222222-33-4", got.Code)
	}
}

func TestExtract_Deterministic(t *testing.T) {
	e := Default()
	text := "noise 12-345678|90|1 more 98-765432-10-9 noise"

	first, ok := e.Extract(text)
	for i := 0; i < 50; i++ {
		got, gotOK := e.Extract(text)
		if got != first || gotOK != ok {
			t.Fatalf("run %d: got %+v/%v, want %+v/%v", i, got, gotOK, first, ok)
		}
	}
}

func TestExtract_StripSpaces(t *testing.T) {
	text := "12 - 345678 - 90 - 1"

	plain := Default()
	if _, ok := plain.Extract(text); ok {
		t.Error("expected no candidate without space stripping")
	}

	stripping, err := New(DefaultPatterns, true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got, ok := stripping.Extract(text)
	if !ok || got.Code != "12-345678-90-1" {
		t.Errorf("got %+v/%v, want 12-345678-90-1", got, ok)
	}
}

func TestNew_InvalidPattern(t *testing.T) {
	if _, err := New([]string{`\d{2}-(`}, false); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("got %v, want ErrInvalidPattern", err)
	}
	if _, err := New(nil, false); !errors.Is(err, ErrInvalidPattern) {
		t.Errorf("got %v, want ErrInvalidPattern for empty list", err)
	}
}

func TestMatchesPrefix(t *testing.T) {
	e := Default()

	tests := []struct {
		name string
		want bool
	}{
		{"12-345678-90-1_verified", true},
		{"12-345678-9A-01", true},
		{"12-345678-9A-01_verified_1", true},
		{"Scan_0001", false},
		{"Scan_0001_needs-review", false},
		{"x12-345678-90-1", false},
		{"20-01-2024_scan", false},
		{"20-01-2024", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.MatchesPrefix(tt.name); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
