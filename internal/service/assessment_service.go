package service

import (
	"time"

	"school_assess_backend/internal/model"
	"school_assess_backend/internal/repository"
	"school_assess_backend/internal/util"
	"school_assess_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssessmentService covers teacher-side authoring: assessments, questions and
// choices, plus the student-facing sanitized view.
type AssessmentService struct {
	Assessments   *repository.AssessmentRepository
	ClassSubjects *repository.ClassSubjectRepository
	School        *repository.SchoolRepository
	DB            *gorm.DB
}

func NewAssessmentService(
	assessments *repository.AssessmentRepository,
	classSubjects *repository.ClassSubjectRepository,
	school *repository.SchoolRepository,
	db *gorm.DB,
) *AssessmentService {
	return &AssessmentService{
		Assessments:   assessments,
		ClassSubjects: classSubjects,
		School:        school,
		DB:            db,
	}
}

// ChoiceInput is the authoring form of one choice.
type ChoiceInput struct {
	Content    string `json:"content" binding:"required"`
	IsCorrect  bool   `json:"isCorrect"`
	OrderIndex int    `json:"orderIndex"`
}

// QuestionInput is the authoring form of one question.
type QuestionInput struct {
	QuestionType model.QuestionType `json:"questionType" binding:"required"`
	Content      string             `json:"content" binding:"required"`
	Points       float64            `json:"points"`
	Order        int                `json:"order"`
	Explanation  string             `json:"explanation"`
	Choices      []ChoiceInput      `json:"choices"`
}

// validateQuestion enforces the per-type authoring contract: choice-bearing
// types need a plausible answer key, manual types carry no choices at all.
func validateQuestion(in QuestionInput) error {
	if !model.ValidQuestionType(in.QuestionType) {
		return &util.AnswerShapeError{Type: in.QuestionType, Reason: "unknown question type"}
	}
	if in.Points < 0 {
		return &util.AnswerShapeError{Type: in.QuestionType, Reason: "points must not be negative"}
	}

	correct := 0
	for _, c := range in.Choices {
		if c.IsCorrect {
			correct++
		}
	}
	switch in.QuestionType {
	case model.SingleChoice:
		if len(in.Choices) < 2 || correct != 1 {
			return &util.AnswerShapeError{Type: in.QuestionType, Reason: "needs at least two choices with exactly one correct"}
		}
	case model.TrueFalse:
		if len(in.Choices) != 2 || correct != 1 {
			return &util.AnswerShapeError{Type: in.QuestionType, Reason: "needs exactly two choices with exactly one correct"}
		}
	case model.MultipleChoice:
		if len(in.Choices) < 2 || correct < 2 {
			return &util.AnswerShapeError{Type: in.QuestionType, Reason: "needs at least two choices with at least two correct"}
		}
	default:
		if len(in.Choices) > 0 {
			return &util.AnswerShapeError{Type: in.QuestionType, Reason: "manually graded types carry no choices"}
		}
	}
	return nil
}

// AssessmentInput is the authoring form of an assessment.
type AssessmentInput struct {
	ClassSubjectID  uint               `json:"classSubjectId" binding:"required"`
	Title           string             `json:"title" binding:"required"`
	Description     string             `json:"description"`
	Coefficient     float64            `json:"coefficient"`
	DeliveryMode    model.DeliveryMode `json:"deliveryMode"`
	DurationMinutes int                `json:"durationMinutes"`
}

func (s *AssessmentService) Create(creatorID uint, in AssessmentInput) (*model.Assessment, error) {
	period, err := s.ClassSubjects.FindByID(in.ClassSubjectID)
	if err != nil {
		return nil, util.ErrClassNotFound
	}
	if err := s.authorize(creatorID, period); err != nil {
		return nil, err
	}
	if in.Coefficient <= 0 {
		in.Coefficient = 1
	}
	if in.DeliveryMode == "" {
		in.DeliveryMode = model.DeliveryHomework
	}
	if in.DeliveryMode != model.DeliverySupervised && in.DeliveryMode != model.DeliveryHomework {
		return nil, util.ErrBadDeliveryMode
	}

	a := &model.Assessment{
		ClassSubjectID:  in.ClassSubjectID,
		Title:           in.Title,
		Description:     in.Description,
		Coefficient:     in.Coefficient,
		DeliveryMode:    in.DeliveryMode,
		DurationMinutes: in.DurationMinutes,
		CreatorID:       creatorID,
	}
	if err := s.Assessments.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Update(teacherID, assessmentID uint, in AssessmentInput) (*model.Assessment, error) {
	a, err := s.lockedForAuthoring(teacherID, assessmentID)
	if err != nil {
		return nil, err
	}
	a.Title = in.Title
	a.Description = in.Description
	if in.Coefficient > 0 {
		a.Coefficient = in.Coefficient
	}
	if in.DeliveryMode != "" {
		a.DeliveryMode = in.DeliveryMode
	}
	a.DurationMinutes = in.DurationMinutes
	if err := s.Assessments.Update(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *AssessmentService) Delete(teacherID, assessmentID uint) error {
	if _, err := s.lockedForAuthoring(teacherID, assessmentID); err != nil {
		return err
	}
	return s.Assessments.Delete(assessmentID)
}

// Publish makes the assessment visible to students and freezes authoring.
func (s *AssessmentService) Publish(teacherID, assessmentID uint) (*model.Assessment, error) {
	a, err := s.lockedForAuthoring(teacherID, assessmentID)
	if err != nil {
		return nil, err
	}
	full, err := s.Assessments.FindWithQuestions(assessmentID)
	if err != nil {
		return nil, err
	}
	if len(full.Questions) == 0 {
		return nil, util.ErrNoQuestions
	}
	now := time.Now()
	a.IsPublished = true
	a.PublishedAt = &now
	if err := s.Assessments.Update(a); err != nil {
		return nil, err
	}
	logger.Log.Info("assessment published",
		zap.Uint("assessmentId", a.ID),
		zap.Uint("teacherId", teacherID),
	)
	return a, nil
}

func (s *AssessmentService) AddQuestion(teacherID, assessmentID uint, in QuestionInput) (*model.Question, error) {
	if _, err := s.lockedForAuthoring(teacherID, assessmentID); err != nil {
		return nil, err
	}
	if err := validateQuestion(in); err != nil {
		return nil, err
	}

	q := &model.Question{
		AssessmentID: assessmentID,
		QuestionType: in.QuestionType,
		Content:      in.Content,
		Points:       in.Points,
		Order:        in.Order,
		Explanation:  in.Explanation,
	}
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(q).Error; err != nil {
			return err
		}
		return s.Assessments.ReplaceChoices(tx, q.ID, choicesFromInput(q.ID, in.Choices))
	})
	if err != nil {
		return nil, err
	}
	return s.Assessments.FindQuestionByID(q.ID)
}

func (s *AssessmentService) UpdateQuestion(teacherID, assessmentID, questionID uint, in QuestionInput) (*model.Question, error) {
	if _, err := s.lockedForAuthoring(teacherID, assessmentID); err != nil {
		return nil, err
	}
	q, err := s.Assessments.FindQuestionByID(questionID)
	if err != nil || q.AssessmentID != assessmentID {
		return nil, util.ErrQuestionNotFound
	}
	if err := validateQuestion(in); err != nil {
		return nil, err
	}

	q.QuestionType = in.QuestionType
	q.Content = in.Content
	q.Points = in.Points
	q.Order = in.Order
	q.Explanation = in.Explanation
	q.Choices = nil
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(q).Error; err != nil {
			return err
		}
		return s.Assessments.ReplaceChoices(tx, q.ID, choicesFromInput(q.ID, in.Choices))
	})
	if err != nil {
		return nil, err
	}
	return s.Assessments.FindQuestionByID(q.ID)
}

func (s *AssessmentService) DeleteQuestion(teacherID, assessmentID, questionID uint) error {
	if _, err := s.lockedForAuthoring(teacherID, assessmentID); err != nil {
		return err
	}
	q, err := s.Assessments.FindQuestionByID(questionID)
	if err != nil || q.AssessmentID != assessmentID {
		return util.ErrQuestionNotFound
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.Assessments.DeleteQuestion(tx, questionID)
	})
}

func choicesFromInput(questionID uint, in []ChoiceInput) []model.Choice {
	out := make([]model.Choice, 0, len(in))
	for _, c := range in {
		out = append(out, model.Choice{
			QuestionID: questionID,
			Content:    c.Content,
			IsCorrect:  c.IsCorrect,
			OrderIndex: c.OrderIndex,
		})
	}
	return out
}

// GetForTeacher returns the full assessment including the answer key.
func (s *AssessmentService) GetForTeacher(teacherID, assessmentID uint) (*model.Assessment, error) {
	a, err := s.Assessments.FindWithQuestions(assessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	period, err := s.ClassSubjects.FindByID(a.ClassSubjectID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if err := s.authorize(teacherID, period); err != nil {
		return nil, err
	}
	return a, nil
}

// StudentQuestion is a question with the answer key stripped.
type StudentQuestion struct {
	ID           uint               `json:"id"`
	QuestionType model.QuestionType `json:"questionType"`
	Content      string             `json:"content"`
	Points       float64            `json:"points"`
	Order        int                `json:"order"`
	Choices      []StudentChoice    `json:"choices,omitempty"`
}

type StudentChoice struct {
	ID         uint   `json:"id"`
	Content    string `json:"content"`
	OrderIndex int    `json:"orderIndex"`
}

// StudentAssessmentView is what a taking student may see: no is_correct
// flags, no explanations.
type StudentAssessmentView struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description"`
	DeliveryMode    model.DeliveryMode `json:"deliveryMode"`
	DurationMinutes int                `json:"durationMinutes"`
	TotalPoints     float64            `json:"totalPoints"`
	Questions       []StudentQuestion  `json:"questions"`
}

// GetForStudent sanitizes a published assessment for taking.
func (s *AssessmentService) GetForStudent(studentID, assessmentID uint) (*StudentAssessmentView, error) {
	a, err := s.Assessments.FindWithQuestions(assessmentID)
	if err != nil || !a.IsPublished {
		return nil, util.ErrAssessmentNotFound
	}
	period, err := s.ClassSubjects.FindByID(a.ClassSubjectID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if _, err := s.School.FindEnrollment(studentID, period.ClassID); err != nil {
		return nil, util.ErrPermissionDenied
	}

	view := &StudentAssessmentView{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		DeliveryMode:    a.DeliveryMode,
		DurationMinutes: a.DurationMinutes,
		TotalPoints:     a.TotalPoints(),
	}
	for _, q := range a.Questions {
		sq := StudentQuestion{
			ID:           q.ID,
			QuestionType: q.QuestionType,
			Content:      q.Content,
			Points:       q.Points,
			Order:        q.Order,
		}
		for _, c := range q.Choices {
			sq.Choices = append(sq.Choices, StudentChoice{ID: c.ID, Content: c.Content, OrderIndex: c.OrderIndex})
		}
		view.Questions = append(view.Questions, sq)
	}
	return view, nil
}

// ListForTeacher returns the assessments of every pairing the teacher
// currently holds.
func (s *AssessmentService) ListForTeacher(teacherID uint) ([]model.Assessment, error) {
	periods, err := s.ClassSubjects.ListOpenByTeacher(teacherID)
	if err != nil {
		return nil, err
	}
	var all []model.Assessment
	for _, p := range periods {
		ids, err := s.ClassSubjects.PairIDs(p.ClassID, p.SubjectID)
		if err != nil {
			return nil, err
		}
		batch, err := s.Assessments.ListByClassSubject(ids, false)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
	}
	return all, nil
}

// lockedForAuthoring loads the assessment and checks both authorship rights
// and that it has not been published yet.
func (s *AssessmentService) lockedForAuthoring(teacherID, assessmentID uint) (*model.Assessment, error) {
	a, err := s.Assessments.FindByID(assessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	period, err := s.ClassSubjects.FindByID(a.ClassSubjectID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	if err := s.authorize(teacherID, period); err != nil {
		return nil, err
	}
	if a.IsPublished {
		return nil, util.ErrAlreadyPublished
	}
	return a, nil
}

// authorize requires the actor to currently hold the pairing the assessment
// lives under.
func (s *AssessmentService) authorize(teacherID uint, period *model.ClassSubject) error {
	current, err := s.ClassSubjects.CoveringPeriod(period.ClassID, period.SubjectID, time.Now())
	if err != nil {
		return util.ErrPermissionDenied
	}
	if current.TeacherID != teacherID {
		return util.ErrPermissionDenied
	}
	return nil
}
