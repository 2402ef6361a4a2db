package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/degree"
	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

const NextSemesterLabel = "Next Semester"

type PlannerOptions struct {
	DefaultSemesters int
	MaxCredits       int
}

type PlannerService struct {
	audit   *AuditService
	courses repository.CourseRepository
	logger  *zap.Logger
	options PlannerOptions
}

func NewPlannerService(audit *AuditService, courses repository.CourseRepository, logger *zap.Logger, options PlannerOptions) *PlannerService {
	if options.DefaultSemesters <= 0 {
		options.DefaultSemesters = degree.DefaultPlanSemesters
	}
	if options.MaxCredits <= 0 {
		options.MaxCredits = degree.MaxCreditsPerSemester
	}
	return &PlannerService{
		audit:   audit,
		courses: courses,
		logger:  logger,
		options: options,
	}
}

// GenerateDegreePlan packs the student's remaining required courses into
// up to numSemesters semesters. Pinned courses are considered first.
// Planning starts from the effective history, so courses granted by an
// override count as completed, the same way the audit's eligible list does.
func (s *PlannerService) GenerateDegreePlan(
	ctx context.Context,
	studentID string,
	pins []domain.CourseRef,
	numSemesters int,
) ([]domain.SemesterPlan, error) {
	if numSemesters < 0 {
		return nil, fmt.Errorf("%w: numSemesters must not be negative", ErrInvalidInput)
	}
	if numSemesters == 0 {
		numSemesters = s.options.DefaultSemesters
	}
	if err := validateRefs("pinned course", pins); err != nil {
		return nil, err
	}

	state, err := s.audit.evaluate(ctx, studentID)
	if err != nil {
		return nil, err
	}

	remaining, err := s.prioritizePins(state, pins)
	if err != nil {
		return nil, err
	}

	plan := degree.PlanDegree(degree.PlanInput{
		Remaining:  remaining,
		History:    state.effective.Completed,
		Semesters:  numSemesters,
		MaxCredits: s.options.MaxCredits,
	})

	if n := len(plan); n > 0 && plan[n-1].Semester == domain.UnscheduledSemester {
		s.logger.Warn("degree plan left courses unscheduled",
			zap.Int("student_id", state.student.StudentID),
			zap.Int("courses", len(plan[n-1].Courses)),
		)
	}
	return plan, nil
}

// prioritizePins moves pinned courses to the front of the remaining list.
// A pin that is already completed is ignored; a pin outside the catalog is
// an error.
func (s *PlannerService) prioritizePins(state auditState, pins []domain.CourseRef) ([]domain.Course, error) {
	if len(pins) == 0 {
		return state.needed, nil
	}

	pinned := make(map[domain.CourseRef]struct{}, len(pins))
	front := make([]domain.Course, 0, len(pins))
	for _, pin := range pins {
		if _, dup := pinned[pin]; dup || state.effective.Completed.Has(pin) {
			continue
		}
		course, ok := findCourse(state.needed, pin)
		if !ok {
			course, ok = state.catalog[pin]
		}
		if !ok {
			return nil, fmt.Errorf("%w: pinned course %s", ErrNotFound, pin)
		}
		pinned[pin] = struct{}{}
		front = append(front, course)
	}

	remaining := append([]domain.Course(nil), front...)
	for _, course := range state.needed {
		if _, ok := pinned[course.Ref()]; !ok {
			remaining = append(remaining, course)
		}
	}
	return remaining, nil
}

// GenerateNextSemesterPlan plans one semester on top of the courses the
// caller has already locked into earlier semesters.
func (s *PlannerService) GenerateNextSemesterPlan(
	ctx context.Context,
	studentID string,
	pins []domain.CourseRef,
	previouslyPlanned []domain.CourseRef,
) (degree.Outcome, error) {
	if err := validateRefs("pinned course", pins); err != nil {
		return degree.Outcome{}, err
	}
	if err := validateRefs("previously planned course", previouslyPlanned); err != nil {
		return degree.Outcome{}, err
	}

	state, err := s.audit.evaluate(ctx, studentID)
	if err != nil {
		return degree.Outcome{}, err
	}

	planned := make([]domain.Course, 0, len(previouslyPlanned))
	for _, ref := range previouslyPlanned {
		course, ok := state.catalog[ref]
		if !ok {
			course = domain.StubCourse(ref)
		}
		planned = append(planned, course)
	}
	history := state.effective.Completed.WithCourses(planned...)

	pool, err := s.candidatePool(ctx, state, history)
	if err != nil {
		return degree.Outcome{}, err
	}

	outcome, err := degree.PlanNextSemester(degree.NextSemesterInput{
		Label:      NextSemesterLabel,
		Rules:      state.effective.Rules,
		History:    history,
		Pool:       pool,
		Pins:       pins,
		ResolvePin: func(pin domain.CourseRef) (domain.Course, error) {
			course, err := s.courses.Get(ctx, pin)
			if err != nil {
				return domain.Course{}, notFound(err, "pinned course %s", pin)
			}
			return course, nil
		},
		MaxCredits: s.options.MaxCredits,
	})
	if err != nil {
		var pinErr *degree.PinError
		if errors.As(err, &pinErr) {
			return degree.Outcome{}, fmt.Errorf("%w: %w", ErrPinRejected, err)
		}
		return degree.Outcome{}, err
	}

	s.logger.Debug("next semester planned",
		zap.Int("student_id", state.student.StudentID),
		zap.Stringer("outcome", outcome.Kind),
		zap.Int("courses", len(outcome.Semester.Courses)),
		zap.Int("credits", outcome.Semester.TotalCredits),
	)
	return outcome, nil
}

// candidatePool is the remaining required courses plus the available
// electives, minus anything already in history, with catalog details.
func (s *PlannerService) candidatePool(ctx context.Context, state auditState, history degree.History) ([]domain.Course, error) {
	var refs []domain.CourseRef
	for _, course := range state.needed {
		if !history.Has(course.Ref()) {
			refs = append(refs, course.Ref())
		}
	}
	for _, course := range state.report.AvailableElectives {
		if !history.Has(course.Ref()) {
			refs = append(refs, course.Ref())
		}
	}

	fetched, err := s.courses.GetByKeys(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate courses: %w", err)
	}

	seen := make(map[domain.CourseRef]struct{}, len(fetched))
	pool := make([]domain.Course, 0, len(fetched))
	for _, course := range fetched {
		seen[course.Ref()] = struct{}{}
		pool = append(pool, course)
	}
	for _, course := range state.needed {
		if _, ok := seen[course.Ref()]; ok || history.Has(course.Ref()) {
			continue
		}
		pool = append(pool, course)
	}
	return pool, nil
}

func findCourse(courses []domain.Course, ref domain.CourseRef) (domain.Course, bool) {
	for _, course := range courses {
		if course.Ref() == ref {
			return course, true
		}
	}
	return domain.Course{}, false
}

func validateRefs(label string, refs []domain.CourseRef) error {
	for _, ref := range refs {
		if !ref.Valid() {
			return fmt.Errorf("%w: %s %q is not a valid course reference", ErrInvalidInput, label, ref.String())
		}
	}
	return nil
}
