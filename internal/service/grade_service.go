package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"school_assess_backend/internal/config"
	"school_assess_backend/internal/model"
	"school_assess_backend/internal/repository"
	"school_assess_backend/internal/util"
	"school_assess_backend/pkg/logger"
	"school_assess_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const subjectAverageTTL = 10 * time.Minute

// GradeService aggregates assignment scores into subject averages and class
// level result views. Averages are cached in redis and invalidated whenever a
// grade in the subject changes.
type GradeService struct {
	Assignments   *repository.AssignmentRepository
	Assessments   *repository.AssessmentRepository
	School        *repository.SchoolRepository
	ClassSubjects *repository.ClassSubjectRepository
	Users         *repository.UserRepository
	Redis         *redis.Client
	Cfg           *config.Config
}

func NewGradeService(
	assignments *repository.AssignmentRepository,
	assessments *repository.AssessmentRepository,
	school *repository.SchoolRepository,
	classSubjects *repository.ClassSubjectRepository,
	users *repository.UserRepository,
	rdb *redis.Client,
	cfg *config.Config,
) *GradeService {
	return &GradeService{
		Assignments:   assignments,
		Assessments:   assessments,
		School:        school,
		ClassSubjects: classSubjects,
		Users:         users,
		Redis:         rdb,
		Cfg:           cfg,
	}
}

// AssessmentEntry is one graded assessment's contribution to an average.
type AssessmentEntry struct {
	Score       float64
	MaxPoints   float64
	Coefficient float64
}

// WeightedAverage normalizes each entry to the grading scale and weights it
// by its coefficient. Entries whose assessment is worth zero points cannot be
// normalized and are skipped; the skip count is returned so callers can flag
// the anomaly. A nil average means nothing contributed.
func WeightedAverage(entries []AssessmentEntry, scale float64) (*float64, int) {
	var weighted, coefSum float64
	skipped := 0
	for _, e := range entries {
		if e.MaxPoints <= 0 {
			skipped++
			continue
		}
		coef := e.Coefficient
		if coef <= 0 {
			coef = 1
		}
		weighted += coef * (e.Score / e.MaxPoints) * scale
		coefSum += coef
	}
	if coefSum == 0 {
		return nil, skipped
	}
	avg := weighted / coefSum
	return &avg, skipped
}

// SubjectAverage computes a student's average for one subject of one class,
// over graded assignments only. Returns nil without error while no assignment
// in the subject is graded.
func (s *GradeService) SubjectAverage(ctx context.Context, studentID, classID, subjectID uint) (*float64, error) {
	enrollment, err := s.School.FindEnrollment(studentID, classID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	key := s.averageKey(enrollment.ID, classID, subjectID)
	if s.Redis != nil {
		if cached, err := s.Redis.Get(ctx, key).Result(); err == nil {
			var out *float64
			if json.Unmarshal([]byte(cached), &out) == nil {
				return out, nil
			}
		}
	}

	avg, err := s.computeSubjectAverage(enrollment.ID, classID, subjectID)
	if err != nil {
		return nil, err
	}

	if s.Redis != nil {
		if payload, err := json.Marshal(avg); err == nil {
			s.Redis.Set(ctx, key, payload, subjectAverageTTL)
		}
	}
	return avg, nil
}

func (s *GradeService) computeSubjectAverage(enrollmentID, classID, subjectID uint) (*float64, error) {
	pairIDs, err := s.ClassSubjects.PairIDs(classID, subjectID)
	if err != nil {
		return nil, err
	}
	if len(pairIDs) == 0 {
		return nil, nil
	}
	assessments, err := s.Assessments.ListByClassSubject(pairIDs, true)
	if err != nil {
		return nil, err
	}
	if len(assessments) == 0 {
		return nil, nil
	}

	assessmentIDs := make([]uint, 0, len(assessments))
	byID := make(map[uint]*model.Assessment, len(assessments))
	for i := range assessments {
		assessmentIDs = append(assessmentIDs, assessments[i].ID)
		byID[assessments[i].ID] = &assessments[i]
	}

	graded, err := s.Assignments.ListGradedForAssessments(enrollmentID, assessmentIDs)
	if err != nil {
		return nil, err
	}

	entries := make([]AssessmentEntry, 0, len(graded))
	for _, a := range graded {
		assessment := byID[a.AssessmentID]
		if assessment == nil || a.Score == nil {
			continue
		}
		max, err := s.Assessments.TotalPoints(a.AssessmentID)
		if err != nil {
			return nil, err
		}
		entries = append(entries, AssessmentEntry{
			Score:       *a.Score,
			MaxPoints:   max,
			Coefficient: assessment.Coefficient,
		})
	}

	avg, skipped := WeightedAverage(entries, s.Cfg.Grading.Scale)
	if skipped > 0 {
		monitoring.ZeroPointAssessmentCounter.Add(float64(skipped))
		logger.Log.Warn("zero-point assessments excluded from average",
			zap.Uint("enrollmentId", enrollmentID),
			zap.Uint("subjectId", subjectID),
			zap.Int("excluded", skipped),
		)
	}
	return avg, nil
}

// InvalidateSubjectAverage drops the cached average after a grade change.
func (s *GradeService) InvalidateSubjectAverage(enrollmentID, classID, subjectID uint) {
	if s.Redis == nil {
		return
	}
	key := s.averageKey(enrollmentID, classID, subjectID)
	if err := s.Redis.Del(context.Background(), key).Err(); err != nil {
		logger.Log.Warn("failed to invalidate average cache", zap.String("key", key), zap.Error(err))
	}
}

func (s *GradeService) averageKey(enrollmentID, classID, subjectID uint) string {
	return fmt.Sprintf("subject_avg:%d:%d:%d", enrollmentID, classID, subjectID)
}

// TeacherOfRecord returns the teacher who held the class-subject pairing at
// the given instant. Grades stay attributed to whoever taught when the work
// happened, not to the current holder.
func (s *GradeService) TeacherOfRecord(classID, subjectID uint, asOf time.Time) (*model.User, error) {
	period, err := s.ClassSubjects.CoveringPeriod(classID, subjectID, asOf)
	if err != nil {
		return nil, util.ErrNoTeacherAssigned
	}
	teacher, err := s.Users.FindByID(period.TeacherID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	return teacher, nil
}

// StudentResult is one row of a class results sheet.
type StudentResult struct {
	EnrollmentID uint                   `json:"enrollmentId"`
	StudentID    uint                   `json:"studentId"`
	StudentName  string                 `json:"studentName"`
	Status       model.AssignmentStatus `json:"status"`
	Score        *float64               `json:"score,omitempty"`
	Forced       bool                   `json:"forced"`
}

// ClassResults summarizes one assessment across the class.
type ClassResults struct {
	AssessmentID uint            `json:"assessmentId"`
	MaxPoints    float64         `json:"maxPoints"`
	Results      []StudentResult `json:"results"`
	GradedCount  int             `json:"gradedCount"`
	Average      *float64        `json:"average,omitempty"`
	Min          *float64        `json:"min,omitempty"`
	Max          *float64        `json:"max,omitempty"`
}

// ClassAssessmentResults builds the teacher view of one assessment: every
// enrolled student with status and, where graded, the score. Students who
// never touched the assessment appear as not_started with no persisted row.
func (s *GradeService) ClassAssessmentResults(assessmentID uint) (*ClassResults, error) {
	assessment, err := s.Assessments.FindByID(assessmentID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	period, err := s.ClassSubjects.FindByID(assessment.ClassSubjectID)
	if err != nil {
		return nil, util.ErrAssessmentNotFound
	}
	enrollments, err := s.School.ListEnrollmentsByClass(period.ClassID)
	if err != nil {
		return nil, err
	}
	assignments, err := s.Assignments.ListByAssessment(assessmentID)
	if err != nil {
		return nil, err
	}
	byEnrollment := make(map[uint]*model.Assignment, len(assignments))
	for i := range assignments {
		byEnrollment[assignments[i].EnrollmentID] = &assignments[i]
	}
	max, err := s.Assessments.TotalPoints(assessmentID)
	if err != nil {
		return nil, err
	}

	out := &ClassResults{AssessmentID: assessmentID, MaxPoints: max}
	var graded []float64
	for _, e := range enrollments {
		result := StudentResult{
			EnrollmentID: e.ID,
			StudentID:    e.StudentID,
			Status:       model.StatusNotStarted,
		}
		if e.Student != nil {
			result.StudentName = e.Student.Name
		}
		if a, ok := byEnrollment[e.ID]; ok {
			result.Status = a.Status()
			result.Forced = a.ForcedSubmission
			if a.Status() == model.StatusGraded && a.Score != nil {
				score := util.Round2(*a.Score)
				result.Score = &score
				graded = append(graded, *a.Score)
			}
		}
		out.Results = append(out.Results, result)
	}
	out.GradedCount = len(graded)
	out.Average, out.Min, out.Max = scoreSummary(graded)
	return out, nil
}

// scoreSummary reduces raw graded scores to average, min and max, rounded to
// 2 decimals at this presentation boundary. Nil pointers when nothing graded.
func scoreSummary(scores []float64) (avg, min, max *float64) {
	if len(scores) == 0 {
		return nil, nil, nil
	}
	lo, hi, sum := scores[0], scores[0], 0.0
	for _, s := range scores {
		sum += s
		if s < lo {
			lo = s
		}
		if s > hi {
			hi = s
		}
	}
	a := util.Round2(sum / float64(len(scores)))
	l := util.Round2(lo)
	h := util.Round2(hi)
	return &a, &l, &h
}

// SubjectLine is one subject of a report card.
type SubjectLine struct {
	SubjectID   uint     `json:"subjectId"`
	SubjectName string   `json:"subjectName"`
	Average     *float64 `json:"average,omitempty"`
	TeacherID   *uint    `json:"teacherId,omitempty"`
	TeacherName string   `json:"teacherName,omitempty"`
}

// ReportCard is the per-class grade summary of one student.
type ReportCard struct {
	StudentID uint          `json:"studentId"`
	ClassID   uint          `json:"classId"`
	Scale     float64       `json:"scale"`
	Subjects  []SubjectLine `json:"subjects"`
}

// StudentReportCard assembles the student's averages across every subject
// currently taught in the class, with the teacher of record on each line.
func (s *GradeService) StudentReportCard(ctx context.Context, studentID, classID uint) (*ReportCard, error) {
	if _, err := s.School.FindEnrollment(studentID, classID); err != nil {
		return nil, util.ErrUserNotFound
	}
	periods, err := s.ClassSubjects.ListOpenByClass(classID)
	if err != nil {
		return nil, err
	}

	card := &ReportCard{StudentID: studentID, ClassID: classID, Scale: s.Cfg.Grading.Scale}
	for _, p := range periods {
		line := SubjectLine{SubjectID: p.SubjectID}
		if subject, err := s.School.FindSubjectByID(p.SubjectID); err == nil {
			line.SubjectName = subject.Name
		}
		avg, err := s.SubjectAverage(ctx, studentID, classID, p.SubjectID)
		if err != nil {
			return nil, err
		}
		if avg != nil {
			rounded := util.Round2(*avg)
			line.Average = &rounded
		}
		if teacher, err := s.TeacherOfRecord(classID, p.SubjectID, time.Now()); err == nil {
			id := teacher.ID
			line.TeacherID = &id
			line.TeacherName = teacher.Name
		}
		card.Subjects = append(card.Subjects, line)
	}
	return card, nil
}
