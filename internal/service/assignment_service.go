package service

import (
	"errors"
	"time"

	"school_assess_backend/internal/config"
	"school_assess_backend/internal/model"
	"school_assess_backend/internal/repository"
	"school_assess_backend/internal/util"
	"school_assess_backend/pkg/logger"
	"school_assess_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AssignmentService owns the assignment lifecycle: answer recording, the
// submission gate, forced submissions, manual grading and the teacher
// reopen/reassign actions.
type AssignmentService struct {
	Assignments   *repository.AssignmentRepository
	Answers       *repository.AnswerRepository
	Assessments   *repository.AssessmentRepository
	School        *repository.SchoolRepository
	ClassSubjects *repository.ClassSubjectRepository
	Scoring       *ScoringService
	Grades        *GradeService
	Cfg           *config.Config
	DB            *gorm.DB
}

func NewAssignmentService(
	assignments *repository.AssignmentRepository,
	answers *repository.AnswerRepository,
	assessments *repository.AssessmentRepository,
	school *repository.SchoolRepository,
	classSubjects *repository.ClassSubjectRepository,
	scoring *ScoringService,
	grades *GradeService,
	cfg *config.Config,
	db *gorm.DB,
) *AssignmentService {
	return &AssignmentService{
		Assignments:   assignments,
		Answers:       answers,
		Assessments:   assessments,
		School:        school,
		ClassSubjects: classSubjects,
		Scoring:       scoring,
		Grades:        grades,
		Cfg:           cfg,
		DB:            db,
	}
}

// ---- transition guards ----
//
// Pure checks over the derived status. The persistence layer re-checks the
// same conditions inside its conditional updates, so a racing writer loses
// there even after passing here.

func submitGuard(a *model.Assignment) error {
	if a.Status() != model.StatusInProgress {
		return &util.TransitionError{From: a.Status(), Attempted: "submit"}
	}
	return nil
}

func recordAnswerGuard(a *model.Assignment) error {
	switch a.Status() {
	case model.StatusNotStarted, model.StatusInProgress:
		return nil
	}
	return &util.TransitionError{From: a.Status(), Attempted: "record an answer on"}
}

func gradeGuard(a *model.Assignment) error {
	if a.Status() != model.StatusSubmitted {
		return &util.TransitionError{From: a.Status(), Attempted: "grade"}
	}
	return nil
}

// reopenGuard restricts reopening to supervised assignments cut off by a
// forced submission; a clean voluntary submission stays closed.
func reopenGuard(a *model.Assignment, mode model.DeliveryMode) error {
	status := a.Status()
	if status != model.StatusSubmitted && status != model.StatusGraded {
		return &util.TransitionError{From: status, Attempted: "reopen"}
	}
	if !a.ForcedSubmission || mode != model.DeliverySupervised {
		return &util.TransitionError{From: status, Attempted: "reopen"}
	}
	return nil
}

func reassignGuard(a *model.Assignment, answerCount int64) error {
	if answerCount > 0 {
		return &util.TransitionError{From: a.Status(), Attempted: "reassign"}
	}
	if a.Status() == model.StatusGraded {
		return &util.TransitionError{From: a.Status(), Attempted: "reassign"}
	}
	return nil
}

// ---- virtual assignments ----

// StudentAssignmentView is either a persisted assignment or a virtual one
// synthesized from class membership. Virtual entries carry no id; the first
// write interaction materializes the real row.
type StudentAssignmentView struct {
	Assignment    *model.Assignment      `json:"assignment,omitempty"`
	Virtual       bool                   `json:"virtual"`
	AssessmentID  uint                   `json:"assessmentId"`
	EnrollmentID  uint                   `json:"enrollmentId"`
	Status        model.AssignmentStatus `json:"status"`
	AnsweredCount int64                  `json:"answeredCount"`
}

// ListStudentAssignments returns every assignment, persisted or virtual, for
// the published assessments of the student's classes.
func (s *AssignmentService) ListStudentAssignments(studentID uint) ([]StudentAssignmentView, error) {
	enrollments, err := s.School.ListEnrollmentsByStudent(studentID)
	if err != nil {
		return nil, err
	}

	views := []StudentAssignmentView{}
	for _, e := range enrollments {
		periods, err := s.ClassSubjects.ListOpenByClass(e.ClassID)
		if err != nil {
			return nil, err
		}
		var pairIDs []uint
		for _, p := range periods {
			ids, err := s.ClassSubjects.PairIDs(p.ClassID, p.SubjectID)
			if err != nil {
				return nil, err
			}
			pairIDs = append(pairIDs, ids...)
		}
		if len(pairIDs) == 0 {
			continue
		}
		assessments, err := s.Assessments.ListByClassSubject(pairIDs, true)
		if err != nil {
			return nil, err
		}

		existing, err := s.Assignments.ListByEnrollment(e.ID)
		if err != nil {
			return nil, err
		}
		byAssessment := make(map[uint]*model.Assignment, len(existing))
		for i := range existing {
			byAssessment[existing[i].AssessmentID] = &existing[i]
		}

		for _, a := range assessments {
			if row, ok := byAssessment[a.ID]; ok {
				answered, err := s.Answers.CountByAssignment(row.ID)
				if err != nil {
					return nil, err
				}
				views = append(views, StudentAssignmentView{
					Assignment:    row,
					AssessmentID:  a.ID,
					EnrollmentID:  e.ID,
					Status:        row.Status(),
					AnsweredCount: answered,
				})
			} else {
				views = append(views, StudentAssignmentView{
					Virtual:      true,
					AssessmentID: a.ID,
					EnrollmentID: e.ID,
					Status:       model.StatusNotStarted,
				})
			}
		}
	}
	return views, nil
}

// materialize turns a virtual assignment into a persisted row, or returns the
// existing one. Safe to call twice: the unique index absorbs the race and the
// winner's row is refetched.
func (s *AssignmentService) materialize(enrollmentID, assessmentID uint) (*model.Assignment, error) {
	if a, err := s.Assignments.FindByEnrollmentAndAssessment(enrollmentID, assessmentID); err == nil {
		return a, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	row := &model.Assignment{
		AssessmentID: assessmentID,
		EnrollmentID: enrollmentID,
		AssignedAt:   time.Now(),
	}
	if err := s.Assignments.Create(row); err != nil {
		return nil, err
	}
	return s.Assignments.FindByEnrollmentAndAssessment(enrollmentID, assessmentID)
}

// resolveForStudent locates (and if needed materializes) the assignment of a
// student for an assessment, checking the student is actually enrolled in the
// assessment's class.
func (s *AssignmentService) resolveForStudent(studentID, assessmentID uint) (*model.Assignment, *model.Assessment, error) {
	assessment, err := s.Assessments.FindByID(assessmentID)
	if err != nil || !assessment.IsPublished {
		return nil, nil, util.ErrAssessmentNotFound
	}
	period, err := s.ClassSubjects.FindByID(assessment.ClassSubjectID)
	if err != nil {
		return nil, nil, util.ErrAssessmentNotFound
	}
	enrollment, err := s.School.FindEnrollment(studentID, period.ClassID)
	if err != nil {
		return nil, nil, util.ErrPermissionDenied
	}
	a, err := s.materialize(enrollment.ID, assessmentID)
	if err != nil {
		return nil, nil, err
	}
	return a, assessment, nil
}

// ---- lifecycle operations ----

// Start records the student's first interaction. Idempotent: starting an
// already started assignment is a no-op; starting a submitted one fails.
func (s *AssignmentService) Start(studentID, assessmentID uint) (*model.Assignment, error) {
	a, _, err := s.resolveForStudent(studentID, assessmentID)
	if err != nil {
		return nil, err
	}
	switch a.Status() {
	case model.StatusNotStarted:
		if _, err := s.Assignments.MarkStarted(a.ID, time.Now()); err != nil {
			return nil, err
		}
		return s.Assignments.FindByID(a.ID)
	case model.StatusInProgress:
		return a, nil
	default:
		return nil, &util.TransitionError{From: a.Status(), Attempted: "start"}
	}
}

// AnswerPayload is the wire form of one answer.
type AnswerPayload struct {
	ChoiceID  *uint  `json:"choiceId,omitempty"`
	ChoiceIDs []uint `json:"choiceIds,omitempty"`
	Text      string `json:"text,omitempty"`
	FileURL   string `json:"fileUrl,omitempty"`
}

// RecordAnswer upserts a student's answer for one question. A write on a
// not-yet-started assignment starts it first (first interaction). Writes are
// rejected once the assignment is submitted or graded.
func (s *AssignmentService) RecordAnswer(studentID, assessmentID, questionID uint, payload AnswerPayload) (*model.Answer, error) {
	a, _, err := s.resolveForStudent(studentID, assessmentID)
	if err != nil {
		return nil, err
	}
	if err := recordAnswerGuard(a); err != nil {
		return nil, err
	}
	if a.Status() == model.StatusNotStarted {
		if _, err := s.Assignments.MarkStarted(a.ID, time.Now()); err != nil {
			return nil, err
		}
	}

	q, err := s.Assessments.FindQuestionByID(questionID)
	if err != nil || q.AssessmentID != assessmentID {
		return nil, util.ErrQuestionNotFound
	}

	ans := &model.Answer{
		AssignmentID: a.ID,
		QuestionID:   questionID,
		ChoiceID:     payload.ChoiceID,
		Text:         payload.Text,
		FileURL:      payload.FileURL,
	}
	if len(payload.ChoiceIDs) > 0 {
		raw, err := model.EncodeChoiceIDs(payload.ChoiceIDs)
		if err != nil {
			return nil, err
		}
		ans.SelectedChoices = raw
	}
	if err := s.Scoring.ValidateShape(q, ans); err != nil {
		return nil, err
	}

	if err := s.Answers.Upsert(ans); err != nil {
		return nil, err
	}
	return s.Answers.FindByAssignmentAndQuestion(a.ID, questionID)
}

// Submit performs the voluntary in_progress -> submitted transition.
func (s *AssignmentService) Submit(studentID, assessmentID uint) (*model.Assignment, error) {
	a, _, err := s.resolveForStudent(studentID, assessmentID)
	if err != nil {
		return nil, err
	}
	return s.submit(a, false, "")
}

// ReportViolation is called by the proctoring client when an integrity
// violation is observed during a supervised delivery. The in-flight answers
// are snapshotted and scored exactly like a normal submission; only the
// provenance metadata differs.
func (s *AssignmentService) ReportViolation(studentID, assessmentID uint, tag model.ViolationTag) (*model.Assignment, error) {
	if !model.ValidViolationTag(tag) {
		return nil, util.ErrUnknownViolation
	}
	a, assessment, err := s.resolveForStudent(studentID, assessmentID)
	if err != nil {
		return nil, err
	}
	if assessment.DeliveryMode != model.DeliverySupervised {
		return nil, &util.TransitionError{From: a.Status(), Attempted: "force-submit"}
	}
	return s.submit(a, true, tag)
}

// submit scores the snapshot and flips the one-way gate. Exactly one of two
// concurrent submissions can win the conditional update; the loser observes
// an InvalidTransition built from the fresh row.
func (s *AssignmentService) submit(a *model.Assignment, forced bool, tag model.ViolationTag) (*model.Assignment, error) {
	if err := submitGuard(a); err != nil {
		return nil, err
	}

	questions, err := s.Assessments.ListQuestions(a.AssessmentID)
	if err != nil {
		return nil, err
	}
	answers, err := s.Answers.ListByAssignment(a.ID)
	if err != nil {
		return nil, err
	}
	scored, total, pendingManual, err := s.Scoring.ScoreSubmission(questions, answers)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.Assignments.MarkSubmitted(tx, a.ID, now, &total, forced, tag)
		if err != nil {
			return err
		}
		if !ok {
			fresh, ferr := s.Assignments.FindByID(a.ID)
			if ferr != nil {
				return ferr
			}
			return &util.TransitionError{From: fresh.Status(), Attempted: "submit"}
		}
		return s.Answers.SaveAutoScores(tx, scored)
	})
	if err != nil {
		return nil, err
	}

	kind := "voluntary"
	if forced {
		kind = "forced"
	}
	monitoring.SubmissionCounter.WithLabelValues(kind).Inc()
	logger.Log.Info("assignment submitted",
		zap.Uint("assignmentId", a.ID),
		zap.Bool("forced", forced),
		zap.String("violation", string(tag)),
		zap.Float64("provisionalScore", total),
		zap.Int("pendingManual", pendingManual),
	)
	return s.Assignments.FindByID(a.ID)
}

// GradeAnswer stores a teacher's score and feedback for one manually graded
// answer. Partial grading persists without advancing the state; once the last
// manual answer is scored the assignment becomes graded and the aggregate is
// finalized.
func (s *AssignmentService) GradeAnswer(graderID, assignmentID, questionID uint, score float64, feedback string) (*model.Assignment, error) {
	a, err := s.Assignments.FindByID(assignmentID)
	if err != nil {
		return nil, util.ErrAssignmentNotFound
	}
	if err := s.authorizeTeacher(graderID, a.AssessmentID); err != nil {
		return nil, err
	}
	if err := gradeGuard(a); err != nil {
		return nil, err
	}

	q, err := s.Assessments.FindQuestionByID(questionID)
	if err != nil || q.AssessmentID != a.AssessmentID {
		return nil, util.ErrQuestionNotFound
	}
	if q.QuestionType.AutoGradable() {
		return nil, &util.AnswerShapeError{QuestionID: questionID, Type: q.QuestionType, Reason: "question is auto-graded"}
	}
	if score < 0 || score > q.Points {
		return nil, &util.AnswerShapeError{QuestionID: questionID, Type: q.QuestionType, Reason: "score outside the question's point range"}
	}
	ans, err := s.Answers.FindByAssignmentAndQuestion(assignmentID, questionID)
	if err != nil {
		return nil, util.ErrAnswerNotFound
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.Answers.SaveScore(tx, ans.ID, &score, nil, feedback, graderID, now); err != nil {
			return err
		}
		return s.refreshAggregate(tx, a, now)
	})
	if err != nil {
		return nil, err
	}
	return s.Assignments.FindByID(assignmentID)
}

// FinalizeGrading advances submitted -> graded for assignments whose manual
// questions are all scored (including the all-auto case). The guard surfaces
// how many answers still block finalization.
func (s *AssignmentService) FinalizeGrading(graderID, assignmentID uint) (*model.Assignment, error) {
	a, err := s.Assignments.FindByID(assignmentID)
	if err != nil {
		return nil, util.ErrAssignmentNotFound
	}
	if err := s.authorizeTeacher(graderID, a.AssessmentID); err != nil {
		return nil, err
	}
	if err := gradeGuard(a); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		return s.refreshAggregate(tx, a, now)
	})
	if err != nil {
		return nil, err
	}
	fresh, err := s.Assignments.FindByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if fresh.Status() != model.StatusGraded {
		pending, perr := s.pendingManualCount(assignmentID)
		if perr != nil {
			return nil, perr
		}
		return nil, &util.IncompleteGradingError{Remaining: pending}
	}
	return fresh, nil
}

// refreshAggregate recomputes the assignment total from its answers and, when
// no manual answer remains unscored, completes the grading transition.
func (s *AssignmentService) refreshAggregate(tx *gorm.DB, a *model.Assignment, now time.Time) error {
	answers, err := s.Answers.ListByAssignment(a.ID)
	if err != nil {
		return err
	}
	total := 0.0
	pending := 0
	for _, ans := range answers {
		if ans.Score != nil {
			total += *ans.Score
		} else {
			pending++
		}
	}

	if pending > 0 {
		return s.Assignments.UpdateAggregate(tx, a.ID, total)
	}

	ok, err := s.Assignments.MarkGraded(tx, a.ID, now, total)
	if err != nil {
		return err
	}
	if ok {
		monitoring.GradingCompletedCounter.Inc()
		s.invalidateAverages(a)
	}
	return nil
}

func (s *AssignmentService) pendingManualCount(assignmentID uint) (int, error) {
	answers, err := s.Answers.ListByAssignment(assignmentID)
	if err != nil {
		return 0, err
	}
	pending := 0
	for _, ans := range answers {
		if ans.Score == nil {
			pending++
		}
	}
	return pending, nil
}

// Reopen returns a forcibly submitted supervised assignment to in_progress,
// keeping every answer. Models "the student was cut off unfairly, let them
// resume"; voluntary submissions cannot be reopened.
func (s *AssignmentService) Reopen(teacherID, assignmentID uint, reason string) (*model.Assignment, error) {
	if reason == "" {
		return nil, util.ErrReasonRequired
	}
	a, err := s.Assignments.FindByID(assignmentID)
	if err != nil {
		return nil, util.ErrAssignmentNotFound
	}
	if err := s.authorizeTeacher(teacherID, a.AssessmentID); err != nil {
		return nil, err
	}
	assessment, err := s.Assessments.FindByID(a.AssessmentID)
	if err != nil {
		return nil, err
	}
	if err := reopenGuard(a, assessment.DeliveryMode); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		ok, err := s.Assignments.Reopen(tx, a.ID, "reopened: "+reason)
		if err != nil {
			return err
		}
		if !ok {
			fresh, ferr := s.Assignments.FindByID(a.ID)
			if ferr != nil {
				return ferr
			}
			return &util.TransitionError{From: fresh.Status(), Attempted: "reopen"}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateAverages(a)
	logger.Log.Info("assignment reopened",
		zap.Uint("assignmentId", a.ID),
		zap.Uint("teacherId", teacherID),
		zap.String("reason", reason),
	)
	return s.Assignments.FindByID(a.ID)
}

// Reassign resets a no-response assignment for a fresh attempt without
// creating a second row. Only legal while zero answers are recorded.
func (s *AssignmentService) Reassign(teacherID, assignmentID uint, reason string) (*model.Assignment, error) {
	if reason == "" {
		return nil, util.ErrReasonRequired
	}
	a, err := s.Assignments.FindByID(assignmentID)
	if err != nil {
		return nil, util.ErrAssignmentNotFound
	}
	if err := s.authorizeTeacher(teacherID, a.AssessmentID); err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Answer{}).Where("assignment_id = ?", a.ID).Count(&count).Error; err != nil {
			return err
		}
		if err := reassignGuard(a, count); err != nil {
			return err
		}
		return s.Assignments.ResetAssigned(tx, a.ID, time.Now(), "reassigned: "+reason)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("assignment reassigned",
		zap.Uint("assignmentId", a.ID),
		zap.Uint("teacherId", teacherID),
		zap.String("reason", reason),
	)
	return s.Assignments.FindByID(a.ID)
}

// AssignmentDetail bundles what the grading screens need.
type AssignmentDetail struct {
	Assignment *model.Assignment `json:"assignment"`
	Questions  []model.Question  `json:"questions"`
	Answers    []model.Answer    `json:"answers"`
}

func (s *AssignmentService) GetDetail(assignmentID uint) (*AssignmentDetail, error) {
	a, err := s.Assignments.FindByID(assignmentID)
	if err != nil {
		return nil, util.ErrAssignmentNotFound
	}
	questions, err := s.Assessments.ListQuestions(a.AssessmentID)
	if err != nil {
		return nil, err
	}
	answers, err := s.Answers.ListByAssignment(a.ID)
	if err != nil {
		return nil, err
	}
	return &AssignmentDetail{Assignment: a, Questions: questions, Answers: answers}, nil
}

// ListPendingGrading returns submitted-but-ungraded assignments for an
// assessment.
func (s *AssignmentService) ListPendingGrading(assessmentID uint) ([]model.Assignment, error) {
	all, err := s.Assignments.ListByAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	pending := []model.Assignment{}
	for _, a := range all {
		if a.Status() == model.StatusSubmitted {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

// EnforceDeadlines force-submits supervised assignments that outran their
// assessment's duration plus the configured grace period. Invoked by the
// background scheduler, never by request handlers.
func (s *AssignmentService) EnforceDeadlines() error {
	grace := time.Duration(s.Cfg.Grading.GracePeriodMinutes) * time.Minute
	expired, err := s.Assignments.ListExpiredSupervised(grace)
	if err != nil {
		return err
	}
	for i := range expired {
		if _, err := s.submit(&expired[i], true, model.ViolationDeadlineExpired); err != nil {
			// a student submitting in the same instant is fine; anything else is not
			var te *util.TransitionError
			if errors.As(err, &te) {
				continue
			}
			return err
		}
	}
	return nil
}

// authorizeTeacher checks the actor is the teacher of record for the
// assessment's class-subject pairing right now. Grading is a teaching act,
// so even admins grade only what they teach.
func (s *AssignmentService) authorizeTeacher(teacherID uint, assessmentID uint) error {
	assessment, err := s.Assessments.FindByID(assessmentID)
	if err != nil {
		return util.ErrAssessmentNotFound
	}
	period, err := s.ClassSubjects.FindByID(assessment.ClassSubjectID)
	if err != nil {
		return util.ErrAssessmentNotFound
	}
	current, err := s.ClassSubjects.CoveringPeriod(period.ClassID, period.SubjectID, time.Now())
	if err != nil {
		return util.ErrPermissionDenied
	}
	if current.TeacherID != teacherID {
		return util.ErrPermissionDenied
	}
	return nil
}

func (s *AssignmentService) invalidateAverages(a *model.Assignment) {
	if s.Grades == nil {
		return
	}
	assessment, err := s.Assessments.FindByID(a.AssessmentID)
	if err != nil {
		return
	}
	period, err := s.ClassSubjects.FindByID(assessment.ClassSubjectID)
	if err != nil {
		return
	}
	s.Grades.InvalidateSubjectAverage(a.EnrollmentID, period.ClassID, period.SubjectID)
}
