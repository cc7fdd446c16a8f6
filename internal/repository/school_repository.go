package repository

import (
	"school_assess_backend/internal/model"

	"gorm.io/gorm"
)

// SchoolRepository covers the conventional school entities the grading engine
// references: classes, subjects and enrollments.
type SchoolRepository struct {
	DB *gorm.DB
}

func NewSchoolRepository(db *gorm.DB) *SchoolRepository {
	return &SchoolRepository{DB: db}
}

func (r *SchoolRepository) CreateClass(c *model.Class) error {
	return r.DB.Create(c).Error
}

func (r *SchoolRepository) FindClassByID(id uint) (*model.Class, error) {
	var c model.Class
	err := r.DB.First(&c, id).Error
	return &c, err
}

func (r *SchoolRepository) ListClasses(page, limit int) ([]model.Class, int64, error) {
	var cs []model.Class
	var total int64
	query := r.DB.Model(&model.Class{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("academic_year desc, name asc").Offset(offset).Limit(limit).Find(&cs).Error
	return cs, total, err
}

func (r *SchoolRepository) CreateSubject(s *model.Subject) error {
	return r.DB.Create(s).Error
}

func (r *SchoolRepository) FindSubjectByID(id uint) (*model.Subject, error) {
	var s model.Subject
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *SchoolRepository) ListSubjects() ([]model.Subject, error) {
	var ss []model.Subject
	err := r.DB.Order("name asc").Find(&ss).Error
	return ss, err
}

func (r *SchoolRepository) CreateEnrollment(e *model.Enrollment) error {
	return r.DB.Create(e).Error
}

func (r *SchoolRepository) FindEnrollmentByID(id uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Preload("Student").First(&e, id).Error
	return &e, err
}

func (r *SchoolRepository) FindEnrollment(studentID, classID uint) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.DB.Where("student_id = ? AND class_id = ?", studentID, classID).First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *SchoolRepository) ListEnrollmentsByClass(classID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Preload("Student").Where("class_id = ?", classID).Find(&es).Error
	return es, err
}

func (r *SchoolRepository) ListEnrollmentsByStudent(studentID uint) ([]model.Enrollment, error) {
	var es []model.Enrollment
	err := r.DB.Preload("Class").Where("student_id = ?", studentID).Find(&es).Error
	return es, err
}

func (r *SchoolRepository) DeleteEnrollment(id uint) error {
	return r.DB.Delete(&model.Enrollment{}, id).Error
}
