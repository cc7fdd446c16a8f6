package model

type QuestionType string

const (
	SingleChoice   QuestionType = "single_choice"
	MultipleChoice QuestionType = "multiple_choice"
	TrueFalse      QuestionType = "true_false"
	Text           QuestionType = "text"
	FileUpload     QuestionType = "file_upload"
)

// AutoGradable reports whether the type can be scored without human judgment.
func (t QuestionType) AutoGradable() bool {
	switch t {
	case SingleChoice, MultipleChoice, TrueFalse:
		return true
	}
	return false
}

func ValidQuestionType(t QuestionType) bool {
	switch t {
	case SingleChoice, MultipleChoice, TrueFalse, Text, FileUpload:
		return true
	}
	return false
}

// swagger:model Question
type Question struct {
	BaseModel
	AssessmentID uint         `gorm:"index;type:bigint unsigned" json:"assessmentId"`
	QuestionType QuestionType `gorm:"size:50;not null" json:"questionType"`
	Content      string       `gorm:"type:text;not null" json:"content"` // stem
	Points       float64      `gorm:"default:0" json:"points"`
	Order        int          `gorm:"default:0" json:"order"`
	Explanation  string       `gorm:"type:text" json:"explanation"`
	Choices      []Choice     `gorm:"foreignKey:QuestionID" json:"choices,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectChoiceIDs returns the ids of the loaded choices flagged correct.
func (q *Question) CorrectChoiceIDs() []uint {
	var ids []uint
	for _, c := range q.Choices {
		if c.IsCorrect {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// HasChoice reports whether id belongs to the loaded choices of the question.
func (q *Question) HasChoice(id uint) bool {
	for _, c := range q.Choices {
		if c.ID == id {
			return true
		}
	}
	return false
}

// swagger:model Choice
type Choice struct {
	BaseModel
	QuestionID uint   `gorm:"index;type:bigint unsigned" json:"questionId"`
	Content    string `gorm:"type:text;not null" json:"content"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
	OrderIndex int    `gorm:"default:0" json:"orderIndex"`
}

func (Choice) TableName() string {
	return "choices"
}
