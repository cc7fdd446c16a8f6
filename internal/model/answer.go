package model

import (
	"encoding/json"
	"time"
)

// Answer holds a student's response to one question of one assignment.
// At most one row exists per (assignment, question); replacing the content
// resets Score/Feedback since a changed answer invalidates any prior grade.
// swagger:model Answer
type Answer struct {
	BaseModel
	AssignmentID    uint            `gorm:"uniqueIndex:idx_answer_assignment_question;type:bigint unsigned" json:"assignmentId"`
	QuestionID      uint            `gorm:"uniqueIndex:idx_answer_assignment_question;type:bigint unsigned" json:"questionId"`
	ChoiceID        *uint           `gorm:"type:bigint unsigned" json:"choiceId,omitempty"`   // single_choice / true_false
	SelectedChoices json.RawMessage `gorm:"type:json" json:"selectedChoices,omitempty"`       // multiple_choice: JSON []uint
	Text            string          `gorm:"type:text" json:"text,omitempty"`                  // text
	FileURL         string          `gorm:"size:512" json:"fileUrl,omitempty"`                // file_upload
	Score           *float64        `json:"score,omitempty"`    // null = not yet graded
	IsCorrect       *bool           `json:"isCorrect,omitempty"` // null = undetermined (manual types)
	Feedback        string          `gorm:"type:text" json:"feedback,omitempty"`
	GraderID        *uint           `gorm:"type:bigint unsigned" json:"graderId,omitempty"`
	GradedAt        *time.Time      `json:"gradedAt,omitempty"`
}

func (Answer) TableName() string {
	return "answers"
}

// EncodeChoiceIDs is the inverse of SelectedChoiceIDs.
func EncodeChoiceIDs(ids []uint) (json.RawMessage, error) {
	return json.Marshal(ids)
}

// SelectedChoiceIDs decodes the multiple-choice selection set.
func (ans *Answer) SelectedChoiceIDs() ([]uint, error) {
	if len(ans.SelectedChoices) == 0 {
		return nil, nil
	}
	var ids []uint
	if err := json.Unmarshal(ans.SelectedChoices, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}
