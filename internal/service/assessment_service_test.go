package service

import (
	"errors"
	"testing"

	"school_assess_backend/internal/model"
	"school_assess_backend/internal/util"
)

// choices with the first n marked correct
func authoringChoices(total, correct int) []ChoiceInput {
	out := make([]ChoiceInput, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, ChoiceInput{Content: "c", IsCorrect: i < correct, OrderIndex: i})
	}
	return out
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		in      QuestionInput
		wantErr bool
	}{
		{
			name: "single choice with one correct",
			in:   QuestionInput{QuestionType: model.SingleChoice, Content: "q", Points: 2, Choices: authoringChoices(3, 1)},
		},
		{
			name:    "single choice with two correct rejected",
			in:      QuestionInput{QuestionType: model.SingleChoice, Content: "q", Points: 2, Choices: authoringChoices(3, 2)},
			wantErr: true,
		},
		{
			name:    "single choice with one option rejected",
			in:      QuestionInput{QuestionType: model.SingleChoice, Content: "q", Points: 2, Choices: authoringChoices(1, 1)},
			wantErr: true,
		},
		{
			name: "true false",
			in:   QuestionInput{QuestionType: model.TrueFalse, Content: "q", Points: 1, Choices: authoringChoices(2, 1)},
		},
		{
			name:    "true false with three options rejected",
			in:      QuestionInput{QuestionType: model.TrueFalse, Content: "q", Points: 1, Choices: authoringChoices(3, 1)},
			wantErr: true,
		},
		{
			name: "multiple choice with two correct",
			in:   QuestionInput{QuestionType: model.MultipleChoice, Content: "q", Points: 4, Choices: authoringChoices(4, 2)},
		},
		{
			name: "multiple choice all correct",
			in:   QuestionInput{QuestionType: model.MultipleChoice, Content: "q", Points: 4, Choices: authoringChoices(3, 3)},
		},
		{
			name:    "multiple choice with a single correct rejected",
			in:      QuestionInput{QuestionType: model.MultipleChoice, Content: "q", Points: 4, Choices: authoringChoices(3, 1)},
			wantErr: true,
		},
		{
			name:    "multiple choice with no correct rejected",
			in:      QuestionInput{QuestionType: model.MultipleChoice, Content: "q", Points: 4, Choices: authoringChoices(3, 0)},
			wantErr: true,
		},
		{
			name: "text question",
			in:   QuestionInput{QuestionType: model.Text, Content: "q", Points: 5},
		},
		{
			name:    "text question with choices rejected",
			in:      QuestionInput{QuestionType: model.Text, Content: "q", Points: 5, Choices: authoringChoices(2, 1)},
			wantErr: true,
		},
		{
			name: "file upload question",
			in:   QuestionInput{QuestionType: model.FileUpload, Content: "q", Points: 5},
		},
		{
			name:    "negative points rejected",
			in:      QuestionInput{QuestionType: model.SingleChoice, Content: "q", Points: -1, Choices: authoringChoices(3, 1)},
			wantErr: true,
		},
		{
			name:    "unknown type rejected",
			in:      QuestionInput{QuestionType: "essay", Content: "q", Points: 1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQuestion(tt.in)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("validateQuestion() = %v, want nil", err)
				}
				return
			}
			var shapeErr *util.AnswerShapeError
			if !errors.As(err, &shapeErr) {
				t.Fatalf("validateQuestion() = %v, want AnswerShapeError", err)
			}
			if shapeErr.Type != tt.in.QuestionType {
				t.Errorf("error type = %s, want %s", shapeErr.Type, tt.in.QuestionType)
			}
		})
	}
}
