package repository

import (
	"school_assess_backend/internal/model"

	"gorm.io/gorm"
)

type AssessmentRepository struct {
	DB *gorm.DB
}

func NewAssessmentRepository(db *gorm.DB) *AssessmentRepository {
	return &AssessmentRepository{DB: db}
}

func (r *AssessmentRepository) Create(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) FindByID(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.First(&a, id).Error
	return &a, err
}

// FindWithQuestions loads an assessment with its ordered questions and their
// choices, which is what scoring and total-points computation need.
func (r *AssessmentRepository) FindWithQuestions(id uint) (*model.Assessment, error) {
	var a model.Assessment
	err := r.DB.
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order` asc, id asc")
		}).
		Preload("Questions.Choices", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index asc, id asc")
		}).
		First(&a, id).Error
	return &a, err
}

func (r *AssessmentRepository) Update(a *model.Assessment) error {
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Assessment{}, id).Error
}

func (r *AssessmentRepository) ListByClassSubject(classSubjectIDs []uint, publishedOnly bool) ([]model.Assessment, error) {
	var as []model.Assessment
	query := r.DB.Where("class_subject_id IN ?", classSubjectIDs)
	if publishedOnly {
		query = query.Where("is_published = ?", true)
	}
	err := query.Order("created_at desc").Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.Preload("Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc, id asc")
	}).First(&q, id).Error
	return &q, err
}

func (r *AssessmentRepository) ListQuestions(assessmentID uint) ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Preload("Choices", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_index asc, id asc")
	}).
		Where("assessment_id = ?", assessmentID).
		Order("`order` asc, id asc").
		Find(&qs).Error
	return qs, err
}

func (r *AssessmentRepository) UpdateQuestion(q *model.Question) error {
	return r.DB.Save(q).Error
}

func (r *AssessmentRepository) DeleteQuestion(tx *gorm.DB, id uint) error {
	if err := tx.Where("question_id = ?", id).Delete(&model.Choice{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Question{}, id).Error
}

func (r *AssessmentRepository) ReplaceChoices(tx *gorm.DB, questionID uint, choices []model.Choice) error {
	if err := tx.Where("question_id = ?", questionID).Delete(&model.Choice{}).Error; err != nil {
		return err
	}
	if len(choices) == 0 {
		return nil
	}
	for i := range choices {
		choices[i].QuestionID = questionID
	}
	return tx.Create(&choices).Error
}

// TotalPoints computes the sum of points for an assessment's questions.
func (r *AssessmentRepository) TotalPoints(assessmentID uint) (float64, error) {
	var total float64
	err := r.DB.Model(&model.Question{}).
		Where("assessment_id = ?", assessmentID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}
