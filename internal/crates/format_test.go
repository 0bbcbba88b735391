package crates

import "testing"

func TestFormatDiff(t *testing.T) {
	testCases := map[int]string{
		3:   "-3",
		-3:  "+3",
		0:   "0",
		1:   "-1",
		-12: "+12",
	}

	for diff, want := range testCases {
		if got := FormatDiff(diff); got != want {
			t.Errorf("FormatDiff(%d) = %q, want %q", diff, got, want)
		}
	}
}
