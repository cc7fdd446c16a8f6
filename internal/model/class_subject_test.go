package model

import (
	"testing"
	"time"
)

func TestClassSubjectCovers(t *testing.T) {
	from := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	closed := ClassSubject{ValidFrom: from, ValidTo: &to}
	open := ClassSubject{ValidFrom: from}

	tests := []struct {
		name   string
		period *ClassSubject
		at     time.Time
		want   bool
	}{
		{name: "before start", period: &closed, at: from.Add(-time.Second), want: false},
		{name: "start is inclusive", period: &closed, at: from, want: true},
		{name: "middle of period", period: &closed, at: from.AddDate(0, 2, 0), want: true},
		{name: "end is exclusive", period: &closed, at: to, want: false},
		{name: "after end", period: &closed, at: to.Add(time.Hour), want: false},
		{name: "open period covers far future", period: &open, at: from.AddDate(10, 0, 0), want: true},
		{name: "open period excludes past", period: &open, at: from.Add(-time.Hour), want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.period.Covers(tc.at); got != tc.want {
				t.Errorf("Covers(%v) = %v, want %v", tc.at, got, tc.want)
			}
		})
	}
}

func TestClassSubjectOpen(t *testing.T) {
	to := time.Now()
	if (&ClassSubject{ValidTo: &to}).Open() {
		t.Error("period with ValidTo should not be open")
	}
	if !(&ClassSubject{}).Open() {
		t.Error("period without ValidTo should be open")
	}
}
