package service

import (
	"errors"
	"testing"
	"time"

	"school_assess_backend/internal/model"
	"school_assess_backend/internal/util"
)

func TestValidateHandover(t *testing.T) {
	openFrom := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	open := &model.ClassSubject{ValidFrom: openFrom}

	tests := []struct {
		name      string
		effective time.Time
		allowed   bool
	}{
		{name: "strictly after is fine", effective: openFrom.Add(24 * time.Hour), allowed: true},
		{name: "one instant after is fine", effective: openFrom.Add(time.Nanosecond), allowed: true},
		{name: "equal to open start rejected", effective: openFrom, allowed: false},
		{name: "before open start rejected", effective: openFrom.Add(-24 * time.Hour), allowed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := validateHandover(open, tc.effective)
			if tc.allowed {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var dateErr *util.EffectiveDateError
			if !errors.As(err, &dateErr) {
				t.Fatalf("expected EffectiveDateError, got %v", err)
			}
			if !dateErr.OpenFrom.Equal(openFrom) {
				t.Errorf("OpenFrom = %v, want %v", dateErr.OpenFrom, openFrom)
			}
		})
	}
}
