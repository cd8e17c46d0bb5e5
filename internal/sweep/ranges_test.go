package sweep

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseRangeSpec(t *testing.T) {
	testCases := []struct {
		name      string
		input     string
		expected  RangeSpec
		expectErr bool
	}{
		{"valid_range", "1.0:5.0:0.5", RangeSpec{Min: 1.0, Max: 5.0, Step: 0.5}, false},
		{"with_spaces", " 0 : 2 : 0.25 ", RangeSpec{Min: 0, Max: 2, Step: 0.25}, false},
		{"negative_values", "-5.0:5.0:1.0", RangeSpec{Min: -5.0, Max: 5.0, Step: 1.0}, false},
		{"missing_parts", "1.0:5.0", RangeSpec{}, true},
		{"too_many_parts", "1.0:5.0:0.5:2.0", RangeSpec{}, true},
		{"invalid_min", "abc:5.0:0.5", RangeSpec{}, true},
		{"invalid_max", "1.0:abc:0.5", RangeSpec{}, true},
		{"invalid_step", "1.0:5.0:abc", RangeSpec{}, true},
		{"zero_step", "1.0:5.0:0", RangeSpec{}, true},
		{"negative_step", "1.0:5.0:-0.5", RangeSpec{}, true},
		{"inverted", "5:1:1", RangeSpec{}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := ParseRangeSpec(tc.input)
			if tc.expectErr {
				if err == nil {
					t.Errorf("Expected error for input %q, got nil", tc.input)
				}
				return
			}
			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}
			if result != tc.expected {
				t.Errorf("Expected %+v, got %+v", tc.expected, result)
			}
		})
	}
}

func TestGenerateRange(t *testing.T) {
	testCases := []struct {
		name     string
		min      float64
		max      float64
		step     float64
		expected []float64
	}{
		{"unit_steps", -2, 2, 1, []float64{-2, -1, 0, 1, 2}},
		{"tenths", 0, 0.5, 0.1, []float64{0, 0.1, 0.2, 0.3, 0.4, 0.5}},
		{"non_dividing_step", 0, 1, 0.3, []float64{0, 0.3, 0.6, 0.9}},
		{"single", 1, 1, 0.5, []float64{1}},
		{"inverted", 2, 1, 0.5, nil},
		{"zero_step", 0, 1, 0, nil},
		{"too_many", 0, 1, 1e-6, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateRange(tc.min, tc.max, tc.step)
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("GenerateRange(%g, %g, %g) mismatch (-want +got):\n%s", tc.min, tc.max, tc.step, diff)
			}
		})
	}
}

func TestParseParamList(t *testing.T) {
	got, err := ParseParamList("0:1:0.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{0, 0.5, 1}, got); diff != "" {
		t.Errorf("range mismatch (-want +got):\n%s", diff)
	}

	got, err = ParseParamList("0.1, 0.4,,2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]float64{0.1, 0.4, 2}, got); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	if got, err := ParseParamList(""); err != nil || got != nil {
		t.Errorf("empty input: got %v, %v", got, err)
	}
	if _, err := ParseParamList("1,x"); err == nil {
		t.Error("expected error for bad float")
	}
	if _, err := ParseParamList("1:x:1"); err == nil {
		t.Error("expected error for bad range")
	}
}

func TestRangeSpecString(t *testing.T) {
	r := RangeSpec{Min: -5, Max: 5, Step: 0.25}
	if r.String() != "-5:5:0.25" {
		t.Errorf("String() = %q", r.String())
	}
	back, err := ParseRangeSpec(r.String())
	if err != nil || back != r {
		t.Errorf("round trip: %+v, %v", back, err)
	}
}
