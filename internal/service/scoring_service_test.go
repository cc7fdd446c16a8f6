package service

import (
	"encoding/json"
	"errors"
	"testing"

	"school_assess_backend/internal/model"
	"school_assess_backend/internal/util"
)

func uintPtr(v uint) *uint       { return &v }
func boolPtr(v bool) *bool       { return &v }
func floatPtr(v float64) *float64 { return &v }

func choiceSet(ids ...uint) json.RawMessage {
	raw, _ := model.EncodeChoiceIDs(ids)
	return raw
}

// question with choices 1..n, the listed ids flagged correct
func makeChoiceQuestion(id uint, qt model.QuestionType, points float64, nChoices int, correct ...uint) model.Question {
	q := model.Question{QuestionType: qt, Points: points}
	q.ID = id
	correctSet := make(map[uint]bool, len(correct))
	for _, c := range correct {
		correctSet[c] = true
	}
	for i := 1; i <= nChoices; i++ {
		c := model.Choice{QuestionID: id, IsCorrect: correctSet[uint(i)]}
		c.ID = uint(i)
		q.Choices = append(q.Choices, c)
	}
	return q
}

func assertAutoResult(t *testing.T, got ScoreResult, wantScore float64, wantCorrect bool) {
	t.Helper()
	if got.NeedsManual {
		t.Fatalf("expected auto result, got NeedsManual")
	}
	if got.Score == nil || *got.Score != wantScore {
		t.Errorf("score = %v, want %v", got.Score, wantScore)
	}
	if got.IsCorrect == nil || *got.IsCorrect != wantCorrect {
		t.Errorf("isCorrect = %v, want %v", got.IsCorrect, wantCorrect)
	}
}

func TestScoreAnswer_SingleChoice(t *testing.T) {
	s := NewScoringService()
	q := makeChoiceQuestion(10, model.SingleChoice, 3, 4, 2)

	tests := []struct {
		name        string
		answer      model.Answer
		wantScore   float64
		wantCorrect bool
		wantErr     bool
	}{
		{name: "correct choice", answer: model.Answer{ChoiceID: uintPtr(2)}, wantScore: 3, wantCorrect: true},
		{name: "wrong choice", answer: model.Answer{ChoiceID: uintPtr(1)}, wantScore: 0, wantCorrect: false},
		{name: "foreign choice rejected", answer: model.Answer{ChoiceID: uintPtr(99)}, wantErr: true},
		{name: "no choice rejected", answer: model.Answer{}, wantErr: true},
		{name: "selection set rejected", answer: model.Answer{ChoiceID: uintPtr(2), SelectedChoices: choiceSet(2)}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ScoreAnswer(&q, &tc.answer)
			if tc.wantErr {
				var shapeErr *util.AnswerShapeError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("expected AnswerShapeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertAutoResult(t, got, tc.wantScore, tc.wantCorrect)
		})
	}
}

func TestScoreAnswer_TrueFalse(t *testing.T) {
	s := NewScoringService()
	q := makeChoiceQuestion(11, model.TrueFalse, 1, 2, 1)

	got, err := s.ScoreAnswer(&q, &model.Answer{ChoiceID: uintPtr(1)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAutoResult(t, got, 1, true)

	got, err = s.ScoreAnswer(&q, &model.Answer{ChoiceID: uintPtr(2)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertAutoResult(t, got, 0, false)
}

func TestScoreAnswer_MultipleChoiceExactMatch(t *testing.T) {
	s := NewScoringService()
	q := makeChoiceQuestion(12, model.MultipleChoice, 4, 5, 1, 4)

	tests := []struct {
		name        string
		selected    []uint
		wantScore   float64
		wantCorrect bool
		wantErr     bool
	}{
		{name: "exact match", selected: []uint{1, 4}, wantScore: 4, wantCorrect: true},
		{name: "order irrelevant", selected: []uint{4, 1}, wantScore: 4, wantCorrect: true},
		{name: "missing one gets zero", selected: []uint{1}, wantScore: 0, wantCorrect: false},
		{name: "extra one gets zero", selected: []uint{1, 4, 2}, wantScore: 0, wantCorrect: false},
		{name: "all wrong gets zero", selected: []uint{2, 3}, wantScore: 0, wantCorrect: false},
		{name: "empty set rejected", selected: []uint{}, wantErr: true},
		{name: "duplicate rejected", selected: []uint{1, 1}, wantErr: true},
		{name: "foreign id rejected", selected: []uint{1, 99}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ans := model.Answer{SelectedChoices: choiceSet(tc.selected...)}
			got, err := s.ScoreAnswer(&q, &ans)
			if tc.wantErr {
				var shapeErr *util.AnswerShapeError
				if !errors.As(err, &shapeErr) {
					t.Fatalf("expected AnswerShapeError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			assertAutoResult(t, got, tc.wantScore, tc.wantCorrect)
		})
	}
}

func TestScoreAnswer_ManualTypes(t *testing.T) {
	s := NewScoringService()

	textQ := model.Question{QuestionType: model.Text, Points: 5}
	textQ.ID = 13
	got, err := s.ScoreAnswer(&textQ, &model.Answer{Text: "an essay"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.NeedsManual || got.Score != nil || got.IsCorrect != nil {
		t.Errorf("text answer should stay undetermined, got %+v", got)
	}

	fileQ := model.Question{QuestionType: model.FileUpload, Points: 10}
	fileQ.ID = 14
	got, err = s.ScoreAnswer(&fileQ, &model.Answer{FileURL: "/uploads/a.pdf"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.NeedsManual {
		t.Errorf("file answer should stay undetermined, got %+v", got)
	}
}

func TestValidateShape_ManualTypes(t *testing.T) {
	s := NewScoringService()

	tests := []struct {
		name    string
		qt      model.QuestionType
		answer  model.Answer
		wantErr bool
	}{
		{name: "text ok", qt: model.Text, answer: model.Answer{Text: "hello"}},
		{name: "text with choice rejected", qt: model.Text, answer: model.Answer{Text: "x", ChoiceID: uintPtr(1)}, wantErr: true},
		{name: "text with file rejected", qt: model.Text, answer: model.Answer{Text: "x", FileURL: "/f"}, wantErr: true},
		{name: "file ok", qt: model.FileUpload, answer: model.Answer{FileURL: "/uploads/x.pdf"}},
		{name: "file without url rejected", qt: model.FileUpload, answer: model.Answer{}, wantErr: true},
		{name: "file with text rejected", qt: model.FileUpload, answer: model.Answer{FileURL: "/f", Text: "x"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := model.Question{QuestionType: tc.qt}
			q.ID = 20
			err := s.ValidateShape(&q, &tc.answer)
			if tc.wantErr && err == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestScoreMissing(t *testing.T) {
	s := NewScoringService()

	auto := makeChoiceQuestion(30, model.SingleChoice, 2, 3, 1)
	got := s.ScoreMissing(&auto)
	assertAutoResult(t, got, 0, false)

	manual := model.Question{QuestionType: model.Text, Points: 5}
	if res := s.ScoreMissing(&manual); !res.NeedsManual {
		t.Error("missing manual answer should stay undetermined")
	}
}

func TestScoreSubmission(t *testing.T) {
	s := NewScoringService()

	q1 := makeChoiceQuestion(1, model.SingleChoice, 2, 3, 1)
	q2 := makeChoiceQuestion(2, model.MultipleChoice, 4, 4, 2, 3)
	q3 := model.Question{QuestionType: model.Text, Points: 6}
	q3.ID = 3
	q4 := makeChoiceQuestion(4, model.TrueFalse, 1, 2, 1)
	questions := []model.Question{q1, q2, q3, q4}

	// q1 correct, q2 wrong, q3 answered manual, q4 unanswered
	answers := []model.Answer{
		{QuestionID: 1, ChoiceID: uintPtr(1)},
		{QuestionID: 2, SelectedChoices: choiceSet(2)},
		{QuestionID: 3, Text: "a long answer"},
	}

	scored, total, pendingManual, err := s.ScoreSubmission(questions, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 3 {
		t.Fatalf("scored rows = %d, want 3 (unanswered questions produce no rows)", len(scored))
	}
	if total != 2 {
		t.Errorf("provisional total = %v, want 2", total)
	}
	if pendingManual != 1 {
		t.Errorf("pendingManual = %d, want 1", pendingManual)
	}
	for _, ans := range scored {
		if ans.QuestionID == 3 {
			if ans.Score != nil || ans.IsCorrect != nil {
				t.Errorf("manual answer must stay unscored, got %+v", ans)
			}
		} else if ans.Score == nil {
			t.Errorf("auto answer for question %d must be scored", ans.QuestionID)
		}
	}
}

func TestScoreSubmission_ForeignQuestionRejected(t *testing.T) {
	s := NewScoringService()
	q := makeChoiceQuestion(1, model.SingleChoice, 2, 2, 1)

	_, _, _, err := s.ScoreSubmission([]model.Question{q}, []model.Answer{{QuestionID: 42, ChoiceID: uintPtr(1)}})
	var shapeErr *util.AnswerShapeError
	if !errors.As(err, &shapeErr) {
		t.Fatalf("expected AnswerShapeError, got %v", err)
	}
}
