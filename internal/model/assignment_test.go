package model

import (
	"testing"
	"time"
)

func TestAssignmentStatus(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		started   bool
		submitted bool
		graded    bool
		want      AssignmentStatus
	}{
		{name: "no timestamps", want: StatusNotStarted},
		{name: "started only", started: true, want: StatusInProgress},
		{name: "submitted", started: true, submitted: true, want: StatusSubmitted},
		{name: "graded", started: true, submitted: true, graded: true, want: StatusGraded},
		// graded wins even if earlier timestamps are missing
		{name: "graded without submitted", graded: true, want: StatusGraded},
		{name: "submitted without started", submitted: true, want: StatusSubmitted},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := Assignment{AssignedAt: now}
			if tc.started {
				a.StartedAt = &now
			}
			if tc.submitted {
				a.SubmittedAt = &now
			}
			if tc.graded {
				a.GradedAt = &now
			}
			if got := a.Status(); got != tc.want {
				t.Errorf("Status() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestValidViolationTag(t *testing.T) {
	for _, tag := range []ViolationTag{
		ViolationTabSwitch, ViolationFullscreenExit, ViolationWindowBlur,
		ViolationCopyPaste, ViolationDeadlineExpired,
	} {
		if !ValidViolationTag(tag) {
			t.Errorf("ValidViolationTag(%s) = false, want true", tag)
		}
	}
	for _, tag := range []ViolationTag{"", "phone_detected", "TAB_SWITCH"} {
		if ValidViolationTag(tag) {
			t.Errorf("ValidViolationTag(%q) = true, want false", tag)
		}
	}
}
