package service

import (
	"school_assess_backend/internal/model"
	"school_assess_backend/internal/util"
)

// ScoringService scores one answer against one question definition. It holds
// no state and no clock: the result is a function of (question, answer) only,
// so grading is reproducible for audits and appeals. Construct once, share
// across requests.
type ScoringService struct{}

func NewScoringService() *ScoringService {
	return &ScoringService{}
}

// ScoreResult is the outcome of scoring a single answer. Score and IsCorrect
// stay nil for manually graded types until a teacher supplies them.
type ScoreResult struct {
	Score       *float64 `json:"score"`
	IsCorrect   *bool    `json:"isCorrect"`
	NeedsManual bool     `json:"needsManual"`
}

func autoResult(points float64, correct bool) ScoreResult {
	score := 0.0
	if correct {
		score = points
	}
	return ScoreResult{Score: &score, IsCorrect: &correct}
}

// ValidateShape checks that an answer's content matches its question's type
// contract: the right field populated, every referenced choice belonging to
// the question. Mismatches are rejected, never coerced.
func (s *ScoringService) ValidateShape(q *model.Question, ans *model.Answer) error {
	shapeErr := func(reason string) error {
		return &util.AnswerShapeError{QuestionID: q.ID, Type: q.QuestionType, Reason: reason}
	}

	switch q.QuestionType {
	case model.SingleChoice, model.TrueFalse:
		if ans.ChoiceID == nil {
			return shapeErr("exactly one choice must be selected")
		}
		if len(ans.SelectedChoices) > 0 {
			return shapeErr("multiple selections are not allowed")
		}
		if !q.HasChoice(*ans.ChoiceID) {
			return shapeErr("selected choice does not belong to the question")
		}
	case model.MultipleChoice:
		if ans.ChoiceID != nil {
			return shapeErr("use the selection set, not a single choice")
		}
		ids, err := ans.SelectedChoiceIDs()
		if err != nil {
			return shapeErr("malformed selection set")
		}
		if len(ids) == 0 {
			return shapeErr("at least one choice must be selected")
		}
		seen := make(map[uint]bool, len(ids))
		for _, id := range ids {
			if seen[id] {
				return shapeErr("duplicate choice in selection set")
			}
			seen[id] = true
			if !q.HasChoice(id) {
				return shapeErr("selected choice does not belong to the question")
			}
		}
	case model.Text:
		if ans.ChoiceID != nil || len(ans.SelectedChoices) > 0 || ans.FileURL != "" {
			return shapeErr("text questions take free text only")
		}
	case model.FileUpload:
		if ans.ChoiceID != nil || len(ans.SelectedChoices) > 0 || ans.Text != "" {
			return shapeErr("file questions take an uploaded file only")
		}
		if ans.FileURL == "" {
			return shapeErr("a file reference is required")
		}
	default:
		return shapeErr("unknown question type")
	}
	return nil
}

// ScoreAnswer scores a stored answer. Auto-gradable types earn full points or
// zero; manually graded types are a no-op (NeedsManual), not an error, so
// callers can iterate uniformly over all questions of an assessment. The
// answer is assumed shape-validated at write time; a foreign choice id that
// slipped in anyway fails here too.
func (s *ScoringService) ScoreAnswer(q *model.Question, ans *model.Answer) (ScoreResult, error) {
	if err := s.ValidateShape(q, ans); err != nil {
		return ScoreResult{}, err
	}

	switch q.QuestionType {
	case model.SingleChoice, model.TrueFalse:
		correct := false
		for _, c := range q.Choices {
			if c.ID == *ans.ChoiceID {
				correct = c.IsCorrect
				break
			}
		}
		return autoResult(q.Points, correct), nil

	case model.MultipleChoice:
		// exact set match, no partial credit
		ids, _ := ans.SelectedChoiceIDs()
		selected := make(map[uint]bool, len(ids))
		for _, id := range ids {
			selected[id] = true
		}
		correctIDs := q.CorrectChoiceIDs()
		match := len(selected) == len(correctIDs)
		if match {
			for _, id := range correctIDs {
				if !selected[id] {
					match = false
					break
				}
			}
		}
		return autoResult(q.Points, match), nil

	default:
		return ScoreResult{NeedsManual: true}, nil
	}
}

// ScoreMissing is the result for a question the student never answered:
// zero and incorrect for auto-gradable types, undetermined for manual ones.
func (s *ScoringService) ScoreMissing(q *model.Question) ScoreResult {
	if q.QuestionType.AutoGradable() {
		return autoResult(q.Points, false)
	}
	return ScoreResult{NeedsManual: true}
}

// ScoreSubmission runs the scorer over a submission snapshot: whatever answer
// rows exist at that instant. Unanswered questions produce no rows; they
// simply contribute nothing. Returns the answers with auto scores filled in,
// the provisional total over scored answers, and how many answered questions
// await manual grading.
func (s *ScoringService) ScoreSubmission(questions []model.Question, answers []model.Answer) ([]model.Answer, float64, int, error) {
	byQuestion := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byQuestion[questions[i].ID] = &questions[i]
	}

	total := 0.0
	pendingManual := 0
	scored := make([]model.Answer, 0, len(answers))
	for _, ans := range answers {
		q, ok := byQuestion[ans.QuestionID]
		if !ok {
			return nil, 0, 0, &util.AnswerShapeError{
				QuestionID: ans.QuestionID,
				Reason:     "answer references a question outside the assessment",
			}
		}
		res, err := s.ScoreAnswer(q, &ans)
		if err != nil {
			return nil, 0, 0, err
		}
		if res.NeedsManual {
			pendingManual++
		} else {
			ans.Score = res.Score
			ans.IsCorrect = res.IsCorrect
			total += *res.Score
		}
		scored = append(scored, ans)
	}
	return scored, total, pendingManual, nil
}
