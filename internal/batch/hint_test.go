package batch

import "testing"

func TestExpectedPrefix(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"/archive/25-01/scans/Scan_0001.tif", "25-01", true},
		{"/archive/Box 12-34 (spring)/day1/Scan_0001.tif", "12-34", true},
		{"/archive/25-01/Scan_0001.tif", "", false},
		{"/archive/misc/scans/Scan_0001.tif", "", false},
		{"Scan_0001.tif", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := ExpectedPrefix(tt.path)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("got %q/%v, want %q/%v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
