package model

import "time"

// ClassSubject is one period of a teaching assignment: which teacher owns a
// class-subject pairing between ValidFrom (inclusive) and ValidTo (exclusive).
// An open period has ValidTo = nil. Replacing a teacher closes the open period
// and appends a new one; closed periods are never edited.
// swagger:model ClassSubject
type ClassSubject struct {
	BaseModel
	ClassID     uint       `gorm:"index:idx_class_subject_pair;type:bigint unsigned" json:"classId"`
	SubjectID   uint       `gorm:"index:idx_class_subject_pair;type:bigint unsigned" json:"subjectId"`
	TeacherID   uint       `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Coefficient float64    `gorm:"default:1" json:"coefficient"` // weight of the subject in broader averages
	ValidFrom   time.Time  `gorm:"index" json:"validFrom"`
	ValidTo     *time.Time `json:"validTo,omitempty"`
	Teacher     *User      `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Class       *Class     `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Subject     *Subject   `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

func (ClassSubject) TableName() string {
	return "class_subjects"
}

// Covers reports whether t falls inside the period, half-open [ValidFrom, ValidTo).
func (cs *ClassSubject) Covers(t time.Time) bool {
	if t.Before(cs.ValidFrom) {
		return false
	}
	return cs.ValidTo == nil || t.Before(*cs.ValidTo)
}

// Open reports whether the period is still the active one.
func (cs *ClassSubject) Open() bool {
	return cs.ValidTo == nil
}
