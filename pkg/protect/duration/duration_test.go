package duration

import (
	"errors"
	"fmt"
	"testing"
)

func TestParse_Integers(t *testing.T) {
	tests := []struct {
		input any
		want  uint32
	}{
		{0, 0},
		{1, 1},
		{3600, 3600},
		{int64(86400), 86400},
		{uint32(60), 60},
		{int32(90), 90},
	}

	for _, tt := range tests {
		got, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%v) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Parse(%v) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParse_Strings(t *testing.T) {
	tests := []struct {
		input string
		want  uint32
	}{
		{"45s", 45},
		{"1m", 60},
		{"1h", 3600},
		{"1d", 86400},
		{"1h30m", 5400},
		{"30m1h", 5400},
		{"90 min", 5400},
		{"1 h 30 m", 5400},
		{"2sec", 2},
		{"3hour", 10800},
		{"1day", 86400},
		{"1H30M", 5400},
		{"500ms", 1},
		{"499ms", 0},
		{"1s500ms", 2},
		{"1s499ms", 1},
	}

	for _, tt := range tests {
		got, err := ParseString(tt.input)
		if err != nil {
			t.Errorf("ParseString(%q) failed: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseString(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

func TestParse_Errors(t *testing.T) {
	inputs := []any{
		"",
		"   ",
		"10",
		"h",
		"10w",
		"10 fortnights",
		"-5s",
		-1,
		int64(1) << 32,
		"3000000000s",
		3.5,
		nil,
	}

	for _, input := range inputs {
		if _, err := Parse(input); err == nil {
			t.Errorf("Parse(%v) should fail", input)
		} else {
			var invalid *InvalidDurationError
			if !errors.As(err, &invalid) {
				t.Errorf("Parse(%v) returned %T, want *InvalidDurationError", input, err)
			}
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	for _, n := range []uint32{0, 1, 59, 60, 3600, 86400, 1<<31 - 1} {
		got, err := Parse(int64(n))
		if err != nil {
			t.Fatalf("Parse(%d) failed: %v", n, err)
		}
		if got != n {
			t.Errorf("Parse(%d) = %d", n, got)
		}

		formatted := fmt.Sprintf("%ds", n)
		got, err = ParseString(formatted)
		if err != nil {
			t.Fatalf("ParseString(%q) failed: %v", formatted, err)
		}
		if got != n {
			t.Errorf("ParseString(%q) = %d", formatted, got)
		}
	}
}

func TestParse_OverflowBoundary(t *testing.T) {
	if _, err := Parse(int64(1<<31 - 1)); err != nil {
		t.Errorf("2^31-1 seconds should parse: %v", err)
	}
	if _, err := Parse(int64(1 << 31)); err == nil {
		t.Error("2^31 seconds should overflow")
	}
	// 24855d = 2147472000s, just under the cap; 24856d overflows.
	if _, err := ParseString("24855d"); err != nil {
		t.Errorf("24855d should parse: %v", err)
	}
	if _, err := ParseString("24856d"); err == nil {
		t.Error("24856d should overflow")
	}
}
