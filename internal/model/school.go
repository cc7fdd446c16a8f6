package model

import "time"

// swagger:model Class
type Class struct {
	BaseModel
	Name         string `gorm:"size:100;not null" json:"name"`
	AcademicYear string `gorm:"size:20;index" json:"academicYear"` // e.g. 2025-2026
	Description  string `gorm:"type:text" json:"description"`
}

func (Class) TableName() string {
	return "classes"
}

// swagger:model Subject
type Subject struct {
	BaseModel
	Name string `gorm:"size:100;not null" json:"name"`
	Code string `gorm:"size:20;unique;not null" json:"code"`
}

func (Subject) TableName() string {
	return "subjects"
}

// Enrollment binds a student to a class for an academic year.
// swagger:model Enrollment
type Enrollment struct {
	BaseModel
	StudentID  uint      `gorm:"uniqueIndex:idx_enrollment_student_class;type:bigint unsigned" json:"studentId"`
	ClassID    uint      `gorm:"uniqueIndex:idx_enrollment_student_class;type:bigint unsigned" json:"classId"`
	EnrolledAt time.Time `json:"enrolledAt"`
	Student    *User     `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Class      *Class    `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

func (Enrollment) TableName() string {
	return "enrollments"
}
