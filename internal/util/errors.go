package util

import (
	"errors"
	"fmt"
	"time"

	"school_assess_backend/internal/model"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrAssessmentNotFound = errors.New("assessment not found or not published")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrClassNotFound      = errors.New("class not found")
	ErrSubjectNotFound    = errors.New("subject not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
	ErrAnswerNotFound     = errors.New("answer not found")
	ErrUnknownViolation   = errors.New("unknown security violation tag")
	ErrReasonRequired     = errors.New("a reason is required for this action")
	ErrNoTeacherAssigned  = errors.New("no teacher assigned for this period")
	ErrNoQuestions        = errors.New("an assessment needs at least one question before publishing")
	ErrAlreadyPublished   = errors.New("a published assessment can no longer be edited")
	ErrBadDeliveryMode    = errors.New("delivery mode must be supervised or homework")
)

// AnswerShapeError reports a submitted answer that does not match its
// question's type contract. Never silently coerced.
type AnswerShapeError struct {
	QuestionID uint
	Type       model.QuestionType
	Reason     string
}

func (e *AnswerShapeError) Error() string {
	return fmt.Sprintf("invalid answer shape for question %d (%s): %s", e.QuestionID, e.Type, e.Reason)
}

// TransitionError reports an illegal lifecycle transition attempt, naming the
// current state and what was attempted.
type TransitionError struct {
	From      model.AssignmentStatus
	Attempted string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s an assignment in state %s", e.Attempted, e.From)
}

// EffectiveDateError reports a teacher replacement date that conflicts with
// the existing history. History is never auto-repaired.
type EffectiveDateError struct {
	Effective time.Time
	OpenFrom  time.Time
}

func (e *EffectiveDateError) Error() string {
	return fmt.Sprintf("effective date %s does not move history forward (open period starts %s)",
		e.Effective.Format(DateFormat), e.OpenFrom.Format(DateFormat))
}

// IncompleteGradingError is the guard raised when finalization is attempted
// while manual questions remain unscored. Saving partial progress is fine;
// advancing to graded is not.
type IncompleteGradingError struct {
	Remaining int
}

func (e *IncompleteGradingError) Error() string {
	return fmt.Sprintf("%d manually graded question(s) still unscored", e.Remaining)
}
