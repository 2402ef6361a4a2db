package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

// CourseFilter narrows ListCourses. Empty fields match everything. Subject,
// Title, Days and Instructor match by case-insensitive substring; the other
// fields must be equal.
type CourseFilter struct {
	Subject      string
	CourseNumber string
	Title        string
	Credits      string
	Days         string
	StartTime    string
	EndTime      string
	Instructor   string
}

type CatalogService struct {
	courses   repository.CourseRepository
	txManager repository.TxManager
	logger    *zap.Logger
}

func NewCatalogService(courses repository.CourseRepository, txManager repository.TxManager, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		courses:   courses,
		txManager: txManager,
		logger:    logger,
	}
}

func (s *CatalogService) ListCourses(ctx context.Context, filter CourseFilter) ([]domain.Course, error) {
	all, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Course, 0, len(all))
	for _, course := range all {
		if filter.matches(course) {
			matched = append(matched, course)
		}
	}
	return matched, nil
}

func (s *CatalogService) GetCourse(ctx context.Context, subject, courseNumber string) (domain.Course, error) {
	ref, err := parseCourseKey(subject, courseNumber)
	if err != nil {
		return domain.Course{}, err
	}
	course, err := s.courses.Get(ctx, ref)
	if err != nil {
		return domain.Course{}, notFound(err, "course %s", ref)
	}
	return course, nil
}

func (s *CatalogService) UpsertCourse(ctx context.Context, course domain.Course) (domain.Course, error) {
	normalized, err := normalizeCourse(course)
	if err != nil {
		return domain.Course{}, err
	}
	if err := s.courses.Upsert(ctx, normalized); err != nil {
		return domain.Course{}, err
	}
	return normalized, nil
}

// UpsertCourses writes courses in one transaction. Nothing is written if
// any course is invalid.
func (s *CatalogService) UpsertCourses(ctx context.Context, courses []domain.Course) (int, error) {
	if len(courses) == 0 {
		return 0, fmt.Errorf("%w: no courses given", ErrInvalidInput)
	}
	normalized := make([]domain.Course, 0, len(courses))
	for i, course := range courses {
		n, err := normalizeCourse(course)
		if err != nil {
			return 0, fmt.Errorf("course %d: %w", i, err)
		}
		normalized = append(normalized, n)
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Courses.UpsertMany(ctx, normalized)
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("courses upserted", zap.Int("count", len(normalized)))
	return len(normalized), nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, subject, courseNumber string) error {
	ref, err := parseCourseKey(subject, courseNumber)
	if err != nil {
		return err
	}
	if err := s.courses.Delete(ctx, ref); err != nil {
		return notFound(err, "course %s", ref)
	}
	return nil
}

func (f CourseFilter) matches(course domain.Course) bool {
	var days, start, end string
	if course.Schedule != nil {
		days = course.Schedule.Days
		start = course.Schedule.StartTime
		end = course.Schedule.EndTime
	}

	return containsFold(course.Subject, f.Subject) &&
		containsFold(course.Name, f.Title) &&
		containsFold(days, f.Days) &&
		containsFold(course.Instructor, f.Instructor) &&
		equalsTrimmed(strconv.Itoa(course.CourseNumber), f.CourseNumber) &&
		equalsTrimmed(strconv.Itoa(course.Credits), f.Credits) &&
		equalsTrimmed(start, f.StartTime) &&
		equalsTrimmed(end, f.EndTime)
}

func containsFold(value, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(want))
}

func equalsTrimmed(value, want string) bool {
	want = strings.TrimSpace(want)
	return want == "" || value == want
}

func parseCourseKey(subject, courseNumber string) (domain.CourseRef, error) {
	number, err := strconv.Atoi(strings.TrimSpace(courseNumber))
	ref := domain.CourseRef{Subject: strings.ToUpper(strings.TrimSpace(subject)), CourseNumber: number}
	if err != nil || !ref.Valid() {
		return domain.CourseRef{}, fmt.Errorf("%w: course %q %q", ErrInvalidInput, subject, courseNumber)
	}
	return ref, nil
}

func normalizeCourse(course domain.Course) (domain.Course, error) {
	course.Subject = strings.ToUpper(strings.TrimSpace(course.Subject))
	if !course.Ref().Valid() {
		return domain.Course{}, fmt.Errorf("%w: Subject and a positive CourseNumber are required", ErrInvalidInput)
	}
	if course.Credits <= 0 {
		course.Credits = domain.DefaultCredits
	}
	for _, prereq := range course.Prerequisites {
		if !prereq.Valid() {
			return domain.Course{}, fmt.Errorf("%w: malformed prerequisite on %s", ErrInvalidInput, course.Ref())
		}
	}
	return course, nil
}
