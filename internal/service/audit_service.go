package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/simon-dunk/Degree-Compass/internal/degree"
	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
)

type AuditService struct {
	repos  repository.Repositories
	logger *zap.Logger
	clock  func() time.Time
}

func NewAuditService(repos repository.Repositories, logger *zap.Logger) *AuditService {
	return &AuditService{
		repos:  repos,
		logger: logger,
		clock:  time.Now,
	}
}

type auditState struct {
	report    domain.AuditReport
	student   domain.Student
	effective degree.EffectiveState
	catalog   map[domain.CourseRef]domain.Course
	// needed holds details for every real course still needed, in rule order.
	needed []domain.Course
}

func (s *AuditService) RunAudit(ctx context.Context, studentID string) (domain.AuditReport, error) {
	state, err := s.evaluate(ctx, studentID)
	if err != nil {
		return domain.AuditReport{}, err
	}
	return state.report, nil
}

func (s *AuditService) evaluate(ctx context.Context, studentID string) (auditState, error) {
	id, err := parseStudentID(studentID)
	if err != nil {
		return auditState{}, err
	}

	var catalog []domain.Course
	var student domain.Student
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		catalog, err = s.repos.Courses.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		student, err = s.repos.Students.Get(gctx, id)
		if err != nil {
			return notFound(err, "student %d", id)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return auditState{}, err
	}

	major := student.PrimaryMajor()
	rules := []domain.RequirementRule{}
	if major != "" {
		rules, err = s.repos.Rules.ListByMajor(ctx, major)
		if err != nil {
			return auditState{}, fmt.Errorf("list rules for %s: %w", major, err)
		}
	}

	effective := degree.ResolveEffectiveState(student, rules)
	results := degree.AuditRules(effective.Rules, effective.Completed)

	required := make(map[domain.CourseRef]struct{})
	for _, ref := range degree.RequiredCourseRefs(effective.Rules) {
		required[ref] = struct{}{}
	}

	byRef := make(map[domain.CourseRef]domain.Course, len(catalog))
	electives := make([]domain.Course, 0)
	for _, course := range catalog {
		byRef[course.Ref()] = course
		if _, ok := required[course.Ref()]; ok {
			continue
		}
		if effective.Completed.Has(course.Ref()) {
			continue
		}
		electives = append(electives, course)
	}

	neededRefs := degree.NeededCourseRefs(results)
	needed, err := s.neededDetails(ctx, neededRefs)
	if err != nil {
		return auditState{}, err
	}

	completed := student.CompletedCourses
	if completed == nil {
		completed = []domain.CompletedCourse{}
	}

	report := domain.AuditReport{
		StudentID:               student.StudentID,
		Major:                   major,
		AuditDate:               s.clock().UTC(),
		StudentCompletedCourses: completed,
		Results:                 results,
		AllRemainingCourses:     needed,
		EligibleNextCourses:     degree.EligibleCourses(needed, effective.Completed),
		AvailableElectives:      electives,
	}

	s.logger.Debug("degree audit completed",
		zap.Int("student_id", student.StudentID),
		zap.String("major", major),
		zap.Int("rules", len(rules)),
		zap.Int("overrides_applied", len(effective.Applied)),
		zap.Int("remaining", len(needed)),
	)

	return auditState{
		report:    report,
		student:   student,
		effective: effective,
		catalog:   byRef,
		needed:    needed,
	}, nil
}

// neededDetails bulk-fetches refs and returns them in refs order. A ref the
// catalog does not hold is replaced by a stub so it still shows up as
// remaining work.
func (s *AuditService) neededDetails(ctx context.Context, refs []domain.CourseRef) ([]domain.Course, error) {
	fetched, err := s.repos.Courses.GetByKeys(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("fetch needed courses: %w", err)
	}
	byRef := make(map[domain.CourseRef]domain.Course, len(fetched))
	for _, course := range fetched {
		byRef[course.Ref()] = course
	}

	courses := make([]domain.Course, 0, len(refs))
	for _, ref := range refs {
		course, ok := byRef[ref]
		if !ok {
			s.logger.Warn("required course missing from catalog",
				zap.String("course", ref.String()),
				zap.String("field", "Course"),
				zap.String("reason", "not in catalog, using a stub with default credits"),
			)
			course = domain.StubCourse(ref)
		} else {
			s.warnDataIntegrity(course)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

func (s *AuditService) warnDataIntegrity(course domain.Course) {
	if course.CreditsDefaulted {
		s.logger.Warn("course credits defaulted",
			zap.String("course", course.Ref().String()),
			zap.String("field", "Credits"),
			zap.String("reason", fmt.Sprintf("missing or invalid, using %d", domain.DefaultCredits)),
		)
	}
	if malformed := course.MalformedPrerequisites(); len(malformed) > 0 {
		s.logger.Warn("course has malformed prerequisites",
			zap.String("course", course.Ref().String()),
			zap.String("field", "Prerequisites"),
			zap.String("reason", "treated as unsatisfiable"),
			zap.Int("count", len(malformed)),
		)
	}
}
