package service

import (
	"math"
	"testing"
)

func TestWeightedAverage(t *testing.T) {
	tests := []struct {
		name        string
		entries     []AssessmentEntry
		scale       float64
		want        *float64
		wantSkipped int
	}{
		{
			name:  "no graded assignments yields nil",
			scale: 20,
			want:  nil,
		},
		{
			name: "single full-score entry hits the scale",
			entries: []AssessmentEntry{
				{Score: 50, MaxPoints: 50, Coefficient: 2},
			},
			scale: 20,
			want:  floatPtr(20),
		},
		{
			name: "coefficients weight the mix",
			// 10/10 (coef 1) and 0/10 (coef 3): (1*20 + 3*0) / 4 = 5
			entries: []AssessmentEntry{
				{Score: 10, MaxPoints: 10, Coefficient: 1},
				{Score: 0, MaxPoints: 10, Coefficient: 3},
			},
			scale: 20,
			want:  floatPtr(5),
		},
		{
			name: "different max points normalize before weighting",
			// 15/20 = 0.75 and 30/40 = 0.75 -> 15 on scale 20 regardless of coef
			entries: []AssessmentEntry{
				{Score: 15, MaxPoints: 20, Coefficient: 1},
				{Score: 30, MaxPoints: 40, Coefficient: 5},
			},
			scale: 20,
			want:  floatPtr(15),
		},
		{
			name: "zero-point assessment is skipped",
			entries: []AssessmentEntry{
				{Score: 0, MaxPoints: 0, Coefficient: 1},
				{Score: 8, MaxPoints: 10, Coefficient: 1},
			},
			scale:       20,
			want:        floatPtr(16),
			wantSkipped: 1,
		},
		{
			name: "only zero-point assessments yields nil",
			entries: []AssessmentEntry{
				{Score: 0, MaxPoints: 0, Coefficient: 1},
			},
			scale:       20,
			want:        nil,
			wantSkipped: 1,
		},
		{
			name: "non-positive coefficient falls back to 1",
			entries: []AssessmentEntry{
				{Score: 10, MaxPoints: 10, Coefficient: 0},
				{Score: 0, MaxPoints: 10, Coefficient: 1},
			},
			scale: 20,
			want:  floatPtr(10),
		},
		{
			name: "alternate scale",
			entries: []AssessmentEntry{
				{Score: 5, MaxPoints: 10, Coefficient: 1},
			},
			scale: 100,
			want:  floatPtr(50),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, skipped := WeightedAverage(tc.entries, tc.scale)
			if skipped != tc.wantSkipped {
				t.Errorf("skipped = %d, want %d", skipped, tc.wantSkipped)
			}
			if tc.want == nil {
				if got != nil {
					t.Fatalf("average = %v, want nil", *got)
				}
				return
			}
			if got == nil {
				t.Fatalf("average = nil, want %v", *tc.want)
			}
			if math.Abs(*got-*tc.want) > 1e-9 {
				t.Errorf("average = %v, want %v", *got, *tc.want)
			}
		})
	}
}

func TestScoreSummary(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		want   [3]float64 // avg, min, max
		empty  bool
	}{
		{name: "no graded scores", empty: true},
		{name: "single score", scores: []float64{12.5}, want: [3]float64{12.5, 12.5, 12.5}},
		{name: "spread", scores: []float64{4, 18, 11}, want: [3]float64{11, 4, 18}},
		{name: "rounds to two decimals", scores: []float64{10.006, 9.994}, want: [3]float64{10, 9.99, 10.01}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			avg, min, max := scoreSummary(tc.scores)
			if tc.empty {
				if avg != nil || min != nil || max != nil {
					t.Fatalf("scoreSummary() = %v %v %v, want all nil", avg, min, max)
				}
				return
			}
			for i, got := range []*float64{avg, min, max} {
				if got == nil {
					t.Fatalf("value %d = nil, want %v", i, tc.want[i])
				}
				if math.Abs(*got-tc.want[i]) > 1e-9 {
					t.Errorf("value %d = %v, want %v", i, *got, tc.want[i])
				}
			}
		})
	}
}
