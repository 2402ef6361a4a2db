package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

type StudentsService struct {
	students  repository.StudentRepository
	txManager repository.TxManager
	logger    *zap.Logger
	clock     func() time.Time
}

func NewStudentsService(students repository.StudentRepository, txManager repository.TxManager, logger *zap.Logger) *StudentsService {
	return &StudentsService{
		students:  students,
		txManager: txManager,
		logger:    logger,
		clock:     time.Now,
	}
}

func (s *StudentsService) GetStudent(ctx context.Context, studentID string) (domain.Student, error) {
	id, err := parseStudentID(studentID)
	if err != nil {
		return domain.Student{}, err
	}
	student, err := s.students.Get(ctx, id)
	if err != nil {
		return domain.Student{}, notFound(err, "student %d", id)
	}
	return student, nil
}

func (s *StudentsService) ListStudents(ctx context.Context) ([]domain.StudentSummary, error) {
	return s.students.ListSummaries(ctx)
}

func (s *StudentsService) SaveStudent(ctx context.Context, student domain.Student) (domain.Student, error) {
	if student.StudentID <= 0 {
		return domain.Student{}, fmt.Errorf("%w: StudentId must be a positive integer", ErrInvalidInput)
	}
	majors := make([]string, 0, len(student.Major))
	for _, major := range student.Major {
		if major = strings.ToUpper(strings.TrimSpace(major)); major != "" {
			majors = append(majors, major)
		}
	}
	student.Major = majors
	if student.CompletedCourses == nil {
		student.CompletedCourses = []domain.CompletedCourse{}
	}
	for _, completed := range student.CompletedCourses {
		if !completed.Ref().Valid() {
			return domain.Student{}, fmt.Errorf("%w: completed course %q is malformed", ErrInvalidInput, completed.Ref().String())
		}
	}
	for _, override := range student.Overrides {
		if err := validateOverride(override); err != nil {
			return domain.Student{}, err
		}
	}

	if err := s.students.Upsert(ctx, student); err != nil {
		return domain.Student{}, err
	}
	return student, nil
}

func (s *StudentsService) AddOverride(ctx context.Context, studentID string, override domain.Override) (domain.Student, error) {
	if err := validateOverride(override); err != nil {
		return domain.Student{}, err
	}
	if override.ApprovedDate == "" {
		override.ApprovedDate = s.clock().Format("2006-01-02")
	}

	return s.mutate(ctx, studentID, func(student *domain.Student) error {
		student.Overrides = append(student.Overrides, override)
		return nil
	})
}

func (s *StudentsService) RemoveOverride(ctx context.Context, studentID string, index int) (domain.Student, error) {
	return s.mutate(ctx, studentID, func(student *domain.Student) error {
		if index < 0 || index >= len(student.Overrides) {
			return fmt.Errorf("%w: override %d", ErrNotFound, index)
		}
		student.Overrides = append(student.Overrides[:index:index], student.Overrides[index+1:]...)
		return nil
	})
}

func (s *StudentsService) AddCompletedCourse(ctx context.Context, studentID string, course domain.CompletedCourse) (domain.Student, error) {
	course.Subject = strings.ToUpper(strings.TrimSpace(course.Subject))
	if !course.Ref().Valid() {
		return domain.Student{}, fmt.Errorf("%w: Subject and CourseNumber are required", ErrInvalidInput)
	}

	return s.mutate(ctx, studentID, func(student *domain.Student) error {
		if student.HasCompleted(course.Ref()) {
			return fmt.Errorf("%w: student has already completed %s", ErrConflict, course.Ref())
		}
		student.CompletedCourses = append(student.CompletedCourses, course)
		return nil
	})
}

func (s *StudentsService) RemoveCompletedCourse(ctx context.Context, studentID string, index int) (domain.Student, error) {
	return s.mutate(ctx, studentID, func(student *domain.Student) error {
		if index < 0 || index >= len(student.CompletedCourses) {
			return fmt.Errorf("%w: completed course %d", ErrNotFound, index)
		}
		student.CompletedCourses = append(student.CompletedCourses[:index:index], student.CompletedCourses[index+1:]...)
		return nil
	})
}

// mutate reads, changes and writes one student record in a transaction.
func (s *StudentsService) mutate(ctx context.Context, studentID string, change func(student *domain.Student) error) (domain.Student, error) {
	id, err := parseStudentID(studentID)
	if err != nil {
		return domain.Student{}, err
	}

	var updated domain.Student
	err = s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		student, err := repos.Students.Get(ctx, id)
		if err != nil {
			return notFound(err, "student %d", id)
		}
		if err := change(&student); err != nil {
			return err
		}
		if err := repos.Students.Upsert(ctx, student); err != nil {
			return err
		}
		updated = student
		return nil
	})
	return updated, err
}

func validateOverride(override domain.Override) error {
	if !override.SubThis.Valid() {
		return fmt.Errorf("%w: override SubThis is required", ErrInvalidInput)
	}
	if len(override.SubFor) == 0 {
		return fmt.Errorf("%w: override SubFor must list at least one course", ErrInvalidInput)
	}
	for _, ref := range override.SubFor {
		if !ref.Valid() {
			return fmt.Errorf("%w: override SubFor entry %q is malformed", ErrInvalidInput, ref.String())
		}
	}
	return nil
}
