package model

import "time"

type AssignmentStatus string

const (
	StatusNotStarted AssignmentStatus = "not_started"
	StatusInProgress AssignmentStatus = "in_progress"
	StatusSubmitted  AssignmentStatus = "submitted"
	StatusGraded     AssignmentStatus = "graded"
)

// ViolationTag identifies the kind of integrity violation that forced a
// submission during a supervised delivery.
type ViolationTag string

const (
	ViolationTabSwitch      ViolationTag = "tab_switch"
	ViolationFullscreenExit ViolationTag = "fullscreen_exit"
	ViolationWindowBlur     ViolationTag = "window_blur"
	ViolationCopyPaste      ViolationTag = "copy_paste"
	// ViolationDeadlineExpired is raised by the deadline enforcer rather than
	// the proctoring client.
	ViolationDeadlineExpired ViolationTag = "deadline_expired"
)

func ValidViolationTag(t ViolationTag) bool {
	switch t {
	case ViolationTabSwitch, ViolationFullscreenExit, ViolationWindowBlur,
		ViolationCopyPaste, ViolationDeadlineExpired:
		return true
	}
	return false
}

// Assignment binds one enrollment (student in a class) to one assessment and
// carries its lifecycle timestamps. The logical state is always derived from
// the timestamps via Status(); no separate status column exists, so no two
// code paths can disagree about it.
// swagger:model Assignment
type Assignment struct {
	BaseModel
	AssessmentID      uint         `gorm:"uniqueIndex:idx_assignment_assessment_enrollment;type:bigint unsigned" json:"assessmentId"`
	EnrollmentID      uint         `gorm:"uniqueIndex:idx_assignment_assessment_enrollment;type:bigint unsigned" json:"enrollmentId"`
	AssignedAt        time.Time    `json:"assignedAt"`
	StartedAt         *time.Time   `json:"startedAt,omitempty"`
	SubmittedAt       *time.Time   `json:"submittedAt,omitempty"`
	GradedAt          *time.Time   `json:"gradedAt,omitempty"`
	Score             *float64     `json:"score,omitempty"` // aggregate, null until first scoring
	SecurityViolation ViolationTag `gorm:"size:50" json:"securityViolation,omitempty"`
	ForcedSubmission  bool         `gorm:"default:false" json:"forcedSubmission"`
	TeacherNotes      string       `gorm:"type:text" json:"teacherNotes,omitempty"`
	Enrollment        *Enrollment  `gorm:"foreignKey:EnrollmentID" json:"enrollment,omitempty"`
	Assessment        *Assessment  `gorm:"foreignKey:AssessmentID" json:"assessment,omitempty"`
}

func (Assignment) TableName() string {
	return "assignments"
}

// Status derives the lifecycle state from the timestamps.
func (a *Assignment) Status() AssignmentStatus {
	switch {
	case a.GradedAt != nil:
		return StatusGraded
	case a.SubmittedAt != nil:
		return StatusSubmitted
	case a.StartedAt != nil:
		return StatusInProgress
	default:
		return StatusNotStarted
	}
}
