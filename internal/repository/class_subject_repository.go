package repository

import (
	"time"

	"school_assess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ClassSubjectRepository struct {
	DB *gorm.DB
}

func NewClassSubjectRepository(db *gorm.DB) *ClassSubjectRepository {
	return &ClassSubjectRepository{DB: db}
}

func (r *ClassSubjectRepository) FindByID(id uint) (*model.ClassSubject, error) {
	var cs model.ClassSubject
	err := r.DB.Preload("Teacher").Preload("Class").Preload("Subject").First(&cs, id).Error
	return &cs, err
}

// OpenPeriodForUpdate loads the currently open period for a class-subject
// pairing inside tx, taking a row lock so concurrent replacements serialize.
func (r *ClassSubjectRepository) OpenPeriodForUpdate(tx *gorm.DB, classID, subjectID uint) (*model.ClassSubject, error) {
	var cs model.ClassSubject
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("class_id = ? AND subject_id = ? AND valid_to IS NULL", classID, subjectID).
		First(&cs).Error
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// ClosePeriod sets valid_to on an open period. Once set the row is immutable.
func (r *ClassSubjectRepository) ClosePeriod(tx *gorm.DB, id uint, validTo time.Time) error {
	return tx.Model(&model.ClassSubject{}).
		Where("id = ? AND valid_to IS NULL", id).
		Update("valid_to", validTo).Error
}

// History returns all periods of a pairing ordered by valid_from.
func (r *ClassSubjectRepository) History(classID, subjectID uint) ([]model.ClassSubject, error) {
	var periods []model.ClassSubject
	err := r.DB.Preload("Teacher").
		Where("class_id = ? AND subject_id = ?", classID, subjectID).
		Order("valid_from asc").
		Find(&periods).Error
	return periods, err
}

// CoveringPeriod resolves the single period covering asOf, if any.
func (r *ClassSubjectRepository) CoveringPeriod(classID, subjectID uint, asOf time.Time) (*model.ClassSubject, error) {
	var cs model.ClassSubject
	err := r.DB.Preload("Teacher").
		Where("class_id = ? AND subject_id = ? AND valid_from <= ? AND (valid_to IS NULL OR valid_to > ?)",
			classID, subjectID, asOf, asOf).
		First(&cs).Error
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// ListOpenByTeacher returns the open periods a teacher currently owns.
func (r *ClassSubjectRepository) ListOpenByTeacher(teacherID uint) ([]model.ClassSubject, error) {
	var periods []model.ClassSubject
	err := r.DB.Preload("Class").Preload("Subject").
		Where("teacher_id = ? AND valid_to IS NULL", teacherID).
		Find(&periods).Error
	return periods, err
}

// ListOpenByClass returns the open periods of every subject taught to a class.
func (r *ClassSubjectRepository) ListOpenByClass(classID uint) ([]model.ClassSubject, error) {
	var periods []model.ClassSubject
	err := r.DB.Preload("Teacher").Preload("Subject").
		Where("class_id = ? AND valid_to IS NULL", classID).
		Find(&periods).Error
	return periods, err
}

// PairIDs returns the ids of every period of a class-subject pairing; the
// aggregator uses them to find assessments across teacher changes.
func (r *ClassSubjectRepository) PairIDs(classID, subjectID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.ClassSubject{}).
		Where("class_id = ? AND subject_id = ?", classID, subjectID).
		Pluck("id", &ids).Error
	return ids, err
}
