package repository

import (
	"time"

	"school_assess_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

// Upsert enforces at-most-one-answer-per-question through the unique
// (assignment_id, question_id) index. Replacing the content resets score,
// correctness and feedback: a changed answer invalidates any prior grade.
func (r *AnswerRepository) Upsert(ans *model.Answer) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "assignment_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"choice_id":        ans.ChoiceID,
			"selected_choices": ans.SelectedChoices,
			"text":             ans.Text,
			"file_url":         ans.FileURL,
			"score":            nil,
			"is_correct":       nil,
			"feedback":         "",
			"grader_id":        nil,
			"graded_at":        nil,
			"updated_at":       time.Now(),
		}),
	}).Create(ans).Error
}

func (r *AnswerRepository) FindByAssignmentAndQuestion(assignmentID, questionID uint) (*model.Answer, error) {
	var ans model.Answer
	err := r.DB.Where("assignment_id = ? AND question_id = ?", assignmentID, questionID).First(&ans).Error
	if err != nil {
		return nil, err
	}
	return &ans, nil
}

func (r *AnswerRepository) ListByAssignment(assignmentID uint) ([]model.Answer, error) {
	var answers []model.Answer
	err := r.DB.Where("assignment_id = ?", assignmentID).Find(&answers).Error
	return answers, err
}

func (r *AnswerRepository) CountByAssignment(assignmentID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Answer{}).Where("assignment_id = ?", assignmentID).Count(&count).Error
	return count, err
}

// SaveScore writes the grading half of an answer without touching content.
func (r *AnswerRepository) SaveScore(tx *gorm.DB, id uint, score *float64, isCorrect *bool, feedback string, graderID uint, gradedAt time.Time) error {
	return tx.Model(&model.Answer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"score":      score,
			"is_correct": isCorrect,
			"feedback":   feedback,
			"grader_id":  graderID,
			"graded_at":  gradedAt,
		}).Error
}

// SaveAutoScores persists scorer results for a submission snapshot.
func (r *AnswerRepository) SaveAutoScores(tx *gorm.DB, answers []model.Answer) error {
	for i := range answers {
		if err := tx.Model(&model.Answer{}).
			Where("id = ?", answers[i].ID).
			Updates(map[string]interface{}{
				"score":      answers[i].Score,
				"is_correct": answers[i].IsCorrect,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}
