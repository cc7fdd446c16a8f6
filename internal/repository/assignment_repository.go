package repository

import (
	"time"

	"school_assess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AssignmentRepository struct {
	DB *gorm.DB
}

func NewAssignmentRepository(db *gorm.DB) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

// Create inserts an assignment row, tolerating a concurrent materialization
// of the same (assessment, enrollment) pair: the unique index wins and the
// caller refetches.
func (r *AssignmentRepository) Create(a *model.Assignment) error {
	return r.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(a).Error
}

func (r *AssignmentRepository) FindByID(id uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.Preload("Enrollment").Preload("Assessment").First(&a, id).Error
	return &a, err
}

func (r *AssignmentRepository) FindByEnrollmentAndAssessment(enrollmentID, assessmentID uint) (*model.Assignment, error) {
	var a model.Assignment
	err := r.DB.Where("enrollment_id = ? AND assessment_id = ?", enrollmentID, assessmentID).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentRepository) ListByAssessment(assessmentID uint) ([]model.Assignment, error) {
	var as []model.Assignment
	err := r.DB.Preload("Enrollment.Student").
		Where("assessment_id = ?", assessmentID).
		Find(&as).Error
	return as, err
}

func (r *AssignmentRepository) ListByEnrollment(enrollmentID uint) ([]model.Assignment, error) {
	var as []model.Assignment
	err := r.DB.Where("enrollment_id = ?", enrollmentID).Find(&as).Error
	return as, err
}

// ListGradedForAssessments returns the graded assignments of one enrollment
// across a set of assessments. Used by subject-average aggregation.
func (r *AssignmentRepository) ListGradedForAssessments(enrollmentID uint, assessmentIDs []uint) ([]model.Assignment, error) {
	var as []model.Assignment
	err := r.DB.
		Where("enrollment_id = ? AND assessment_id IN ? AND graded_at IS NOT NULL", enrollmentID, assessmentIDs).
		Find(&as).Error
	return as, err
}

// ListExpiredSupervised returns in-progress assignments of supervised
// assessments whose time budget (duration + grace) ran out before cutoff.
func (r *AssignmentRepository) ListExpiredSupervised(grace time.Duration) ([]model.Assignment, error) {
	var as []model.Assignment
	err := r.DB.Preload("Assessment").
		Joins("JOIN assessments ON assessments.id = assignments.assessment_id").
		Where("assignments.started_at IS NOT NULL AND assignments.submitted_at IS NULL").
		Where("assessments.delivery_mode = ? AND assessments.duration_minutes > 0", model.DeliverySupervised).
		Where("assignments.started_at < DATE_SUB(NOW(3), INTERVAL assessments.duration_minutes + ? MINUTE)",
			int(grace.Minutes())).
		Find(&as).Error
	return as, err
}

// MarkStarted records the first interaction. Guarded so a concurrent start
// or a submit racing in keeps exactly one started_at value.
func (r *AssignmentRepository) MarkStarted(id uint, now time.Time) (bool, error) {
	res := r.DB.Model(&model.Assignment{}).
		Where("id = ? AND started_at IS NULL AND submitted_at IS NULL", id).
		Update("started_at", now)
	return res.RowsAffected > 0, res.Error
}

// MarkSubmitted performs the one-way in_progress -> submitted gate as a
// single conditional update; the loser of a double-submission race sees
// RowsAffected == 0.
func (r *AssignmentRepository) MarkSubmitted(tx *gorm.DB, id uint, now time.Time, score *float64, forced bool, tag model.ViolationTag) (bool, error) {
	res := tx.Model(&model.Assignment{}).
		Where("id = ? AND started_at IS NOT NULL AND submitted_at IS NULL", id).
		Updates(map[string]interface{}{
			"submitted_at":       now,
			"score":              score,
			"forced_submission":  forced,
			"security_violation": string(tag),
		})
	return res.RowsAffected > 0, res.Error
}

// MarkGraded advances submitted -> graded, recording the final aggregate.
func (r *AssignmentRepository) MarkGraded(tx *gorm.DB, id uint, now time.Time, score float64) (bool, error) {
	res := tx.Model(&model.Assignment{}).
		Where("id = ? AND submitted_at IS NOT NULL AND graded_at IS NULL", id).
		Updates(map[string]interface{}{
			"graded_at": now,
			"score":     score,
		})
	return res.RowsAffected > 0, res.Error
}

// UpdateAggregate refreshes the provisional aggregate without touching the
// lifecycle timestamps (partial manual grading).
func (r *AssignmentRepository) UpdateAggregate(tx *gorm.DB, id uint, score float64) error {
	return tx.Model(&model.Assignment{}).Where("id = ?", id).Update("score", score).Error
}

// Reopen returns a forced submission to in_progress, clearing the submission
// marks but preserving answers. Guarded on forced_submission so a voluntary
// submission can never slip through at the persistence layer either.
func (r *AssignmentRepository) Reopen(tx *gorm.DB, id uint, notes string) (bool, error) {
	res := tx.Model(&model.Assignment{}).
		Where("id = ? AND submitted_at IS NOT NULL AND forced_submission = ?", id, true).
		Updates(map[string]interface{}{
			"submitted_at":       nil,
			"graded_at":          nil,
			"score":              nil,
			"forced_submission":  false,
			"security_violation": "",
			"teacher_notes":      notes,
		})
	return res.RowsAffected > 0, res.Error
}

// ResetAssigned gives a fresh attempt on the same row: new assigned_at,
// cleared start and violation metadata.
func (r *AssignmentRepository) ResetAssigned(tx *gorm.DB, id uint, now time.Time, notes string) error {
	return tx.Model(&model.Assignment{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"assigned_at":        now,
			"started_at":         nil,
			"submitted_at":       nil,
			"graded_at":          nil,
			"score":              nil,
			"forced_submission":  false,
			"security_violation": "",
			"teacher_notes":      notes,
		}).Error
}
