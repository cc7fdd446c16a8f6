package service

import (
	"errors"
	"testing"
	"time"

	"school_assess_backend/internal/model"
	"school_assess_backend/internal/util"
)

func assignmentIn(status model.AssignmentStatus) *model.Assignment {
	now := time.Now()
	a := &model.Assignment{AssignedAt: now}
	switch status {
	case model.StatusGraded:
		a.GradedAt = &now
		fallthrough
	case model.StatusSubmitted:
		a.SubmittedAt = &now
		fallthrough
	case model.StatusInProgress:
		a.StartedAt = &now
	}
	return a
}

func wantTransitionError(t *testing.T, err error, from model.AssignmentStatus) {
	t.Helper()
	var te *util.TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransitionError, got %v", err)
	}
	if te.From != from {
		t.Errorf("TransitionError.From = %s, want %s", te.From, from)
	}
}

func TestSubmitGuard(t *testing.T) {
	tests := []struct {
		status  model.AssignmentStatus
		allowed bool
	}{
		{model.StatusNotStarted, false},
		{model.StatusInProgress, true},
		{model.StatusSubmitted, false},
		{model.StatusGraded, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			err := submitGuard(assignmentIn(tc.status))
			if tc.allowed && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.allowed {
				wantTransitionError(t, err, tc.status)
			}
		})
	}
}

func TestRecordAnswerGuard(t *testing.T) {
	tests := []struct {
		status  model.AssignmentStatus
		allowed bool
	}{
		{model.StatusNotStarted, true},
		{model.StatusInProgress, true},
		{model.StatusSubmitted, false},
		{model.StatusGraded, false},
	}

	for _, tc := range tests {
		t.Run(string(tc.status), func(t *testing.T) {
			err := recordAnswerGuard(assignmentIn(tc.status))
			if tc.allowed && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.allowed {
				wantTransitionError(t, err, tc.status)
			}
		})
	}
}

func TestGradeGuard(t *testing.T) {
	for _, status := range []model.AssignmentStatus{model.StatusNotStarted, model.StatusInProgress, model.StatusGraded} {
		wantTransitionError(t, gradeGuard(assignmentIn(status)), status)
	}
	if err := gradeGuard(assignmentIn(model.StatusSubmitted)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestReopenGuard(t *testing.T) {
	tests := []struct {
		name    string
		status  model.AssignmentStatus
		forced  bool
		mode    model.DeliveryMode
		allowed bool
	}{
		{name: "forced supervised submitted", status: model.StatusSubmitted, forced: true, mode: model.DeliverySupervised, allowed: true},
		{name: "forced supervised graded", status: model.StatusGraded, forced: true, mode: model.DeliverySupervised, allowed: true},
		{name: "voluntary submission stays closed", status: model.StatusSubmitted, forced: false, mode: model.DeliverySupervised, allowed: false},
		{name: "homework never reopens", status: model.StatusSubmitted, forced: true, mode: model.DeliveryHomework, allowed: false},
		{name: "in progress cannot reopen", status: model.StatusInProgress, forced: true, mode: model.DeliverySupervised, allowed: false},
		{name: "not started cannot reopen", status: model.StatusNotStarted, forced: false, mode: model.DeliverySupervised, allowed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			a := assignmentIn(tc.status)
			a.ForcedSubmission = tc.forced
			err := reopenGuard(a, tc.mode)
			if tc.allowed && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.allowed && err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestReassignGuard(t *testing.T) {
	tests := []struct {
		name    string
		status  model.AssignmentStatus
		answers int64
		allowed bool
	}{
		{name: "no answers not started", status: model.StatusNotStarted, answers: 0, allowed: true},
		{name: "no answers forced submit", status: model.StatusSubmitted, answers: 0, allowed: true},
		{name: "any answer blocks", status: model.StatusInProgress, answers: 1, allowed: false},
		{name: "answers on submitted block", status: model.StatusSubmitted, answers: 3, allowed: false},
		{name: "graded never reassigns", status: model.StatusGraded, answers: 0, allowed: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := reassignGuard(assignmentIn(tc.status), tc.answers)
			if tc.allowed && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.allowed && err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
