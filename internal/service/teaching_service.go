package service

import (
	"errors"
	"time"

	"school_assess_backend/internal/model"
	"school_assess_backend/internal/repository"
	"school_assess_backend/internal/util"
	"school_assess_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeachingService maintains the history of which teacher holds each
// class-subject pairing. Periods are half-open [validFrom, validTo) and
// contiguous: closing one period and opening the next happen at the same
// instant, inside one transaction, so no query date ever falls in a gap.
type TeachingService struct {
	ClassSubjects *repository.ClassSubjectRepository
	School        *repository.SchoolRepository
	Users         *repository.UserRepository
	DB            *gorm.DB
}

func NewTeachingService(
	classSubjects *repository.ClassSubjectRepository,
	school *repository.SchoolRepository,
	users *repository.UserRepository,
	db *gorm.DB,
) *TeachingService {
	return &TeachingService{ClassSubjects: classSubjects, School: school, Users: users, DB: db}
}

// validateHandover is the pure effective-date rule: a handover must take
// effect strictly after the open period began, or the closed period would be
// empty or inverted.
func validateHandover(open *model.ClassSubject, effective time.Time) error {
	if !effective.After(open.ValidFrom) {
		return &util.EffectiveDateError{Effective: effective, OpenFrom: open.ValidFrom}
	}
	return nil
}

// AssignTeacher makes teacherID the holder of (classID, subjectID) from
// effective onward. The first assignment opens the initial period; later
// calls close the open one at effective and open the successor. The open
// period row is locked for the duration, serializing concurrent handovers.
func (s *TeachingService) AssignTeacher(classID, subjectID, teacherID uint, coefficient float64, effective time.Time) (*model.ClassSubject, error) {
	if _, err := s.School.FindClassByID(classID); err != nil {
		return nil, util.ErrClassNotFound
	}
	if _, err := s.School.FindSubjectByID(subjectID); err != nil {
		return nil, util.ErrSubjectNotFound
	}
	teacher, err := s.Users.FindByID(teacherID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}
	if teacher.Role != model.Teacher {
		return nil, util.ErrPermissionDenied
	}
	if coefficient <= 0 {
		coefficient = 1
	}

	var created *model.ClassSubject
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		open, err := s.ClassSubjects.OpenPeriodForUpdate(tx, classID, subjectID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// first pairing for this class-subject
		case err != nil:
			return err
		default:
			if open.TeacherID == teacherID {
				created = open
				return nil
			}
			if err := validateHandover(open, effective); err != nil {
				return err
			}
			if err := s.ClassSubjects.ClosePeriod(tx, open.ID, effective); err != nil {
				return err
			}
		}

		next := &model.ClassSubject{
			ClassID:     classID,
			SubjectID:   subjectID,
			TeacherID:   teacherID,
			Coefficient: coefficient,
			ValidFrom:   effective,
		}
		if err := tx.Create(next).Error; err != nil {
			return err
		}
		created = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("teacher assigned",
		zap.Uint("classId", classID),
		zap.Uint("subjectId", subjectID),
		zap.Uint("teacherId", teacherID),
		zap.Time("effective", effective),
	)
	return created, nil
}

// CurrentTeacher resolves who holds the pairing right now.
func (s *TeachingService) CurrentTeacher(classID, subjectID uint) (*model.User, *model.ClassSubject, error) {
	return s.TeacherAt(classID, subjectID, time.Now())
}

// TeacherAt resolves the holder at an arbitrary instant, for historical
// attribution.
func (s *TeachingService) TeacherAt(classID, subjectID uint, asOf time.Time) (*model.User, *model.ClassSubject, error) {
	period, err := s.ClassSubjects.CoveringPeriod(classID, subjectID, asOf)
	if err != nil {
		return nil, nil, util.ErrNoTeacherAssigned
	}
	teacher, err := s.Users.FindByID(period.TeacherID)
	if err != nil {
		return nil, nil, util.ErrUserNotFound
	}
	return teacher, period, nil
}

// History returns every period of the pairing, oldest first.
func (s *TeachingService) History(classID, subjectID uint) ([]model.ClassSubject, error) {
	return s.ClassSubjects.History(classID, subjectID)
}

// TeacherWorkload lists the pairings a teacher currently holds.
func (s *TeachingService) TeacherWorkload(teacherID uint) ([]model.ClassSubject, error) {
	return s.ClassSubjects.ListOpenByTeacher(teacherID)
}
