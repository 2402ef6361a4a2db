package degree

import (
	"errors"
	"fmt"
	"sort"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

const (
	MaxCreditsPerSemester = 15
	DefaultPlanSemesters  = 8
)

type OutcomeKind int

const (
	// OutcomeScheduled carries a semester with at least one course.
	OutcomeScheduled OutcomeKind = iota
	// OutcomeStalled means work remains but nothing could be placed.
	OutcomeStalled
	// OutcomeComplete means nothing is left to plan.
	OutcomeComplete
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeScheduled:
		return "scheduled"
	case OutcomeStalled:
		return "stalled"
	case OutcomeComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Outcome is the result of one packing step. Semester is empty unless Kind
// is OutcomeScheduled or OutcomeStalled.
type Outcome struct {
	Kind     OutcomeKind
	Semester domain.SemesterPlan
}

type PinRejection string

const (
	PinDuplicate          PinRejection = "pinned more than once"
	PinAlreadyTaken       PinRejection = "already completed or planned"
	PinPrerequisitesUnmet PinRejection = "prerequisites not met"
	PinOverCreditCap      PinRejection = "exceeds the semester credit cap"
)

type PinError struct {
	Course domain.CourseRef
	Reason PinRejection
}

func (e *PinError) Error() string {
	return fmt.Sprintf("pinned course %s rejected: %s", e.Course, e.Reason)
}

type semesterBuilder struct {
	label      string
	maxCredits int
	courses    []domain.Course
	credits    int
	added      map[domain.CourseRef]struct{}
}

func newSemesterBuilder(label string, maxCredits int) *semesterBuilder {
	if maxCredits <= 0 {
		maxCredits = MaxCreditsPerSemester
	}
	return &semesterBuilder{
		label:      label,
		maxCredits: maxCredits,
		courses:    make([]domain.Course, 0),
		added:      make(map[domain.CourseRef]struct{}),
	}
}

func (b *semesterBuilder) has(ref domain.CourseRef) bool {
	_, ok := b.added[ref]
	return ok
}

func (b *semesterBuilder) fits(course domain.Course) bool {
	return b.credits+course.Credits <= b.maxCredits
}

func (b *semesterBuilder) add(course domain.Course) {
	b.courses = append(b.courses, course)
	b.credits += course.Credits
	b.added[course.Ref()] = struct{}{}
}

func (b *semesterBuilder) tryAdd(course domain.Course) bool {
	if b.has(course.Ref()) || !b.fits(course) {
		return false
	}
	b.add(course)
	return true
}

func (b *semesterBuilder) outcome() Outcome {
	kind := OutcomeScheduled
	if len(b.courses) == 0 {
		kind = OutcomeStalled
	}
	return Outcome{
		Kind: kind,
		Semester: domain.SemesterPlan{
			Semester:     b.label,
			Courses:      b.courses,
			TotalCredits: b.credits,
		},
	}
}

// PackSemester greedily fills one semester from candidates in the order
// given, taking every course whose prerequisites are met by history and
// that still fits under the cap.
func PackSemester(label string, candidates []domain.Course, history History, maxCredits int) Outcome {
	if len(candidates) == 0 {
		return Outcome{Kind: OutcomeComplete}
	}
	semester := newSemesterBuilder(label, maxCredits)
	for _, course := range EligibleCourses(candidates, history) {
		if history.Has(course.Ref()) {
			continue
		}
		semester.tryAdd(course)
	}
	return semester.outcome()
}

type PlanInput struct {
	// Remaining holds the needed courses with catalog details, in the order
	// they should be considered.
	Remaining  []domain.Course
	History    History
	Semesters  int
	MaxCredits int
}

// PlanDegree packs semesters until nothing remains or the semester budget
// is spent. Courses left over after a prerequisite deadlock are returned in
// a trailing UnscheduledSemester entry; courses still waiting when the
// budget runs out go to a trailing RemainingSemester entry instead.
func PlanDegree(input PlanInput) []domain.SemesterPlan {
	semesters := input.Semesters
	if semesters <= 0 {
		semesters = DefaultPlanSemesters
	}

	remaining := dedupeCourses(input.Remaining)
	history := input.History
	plan := make([]domain.SemesterPlan, 0, semesters)

	for number := 1; number <= semesters && len(remaining) > 0; number++ {
		outcome := PackSemester(fmt.Sprintf("Semester %d", number), remaining, history, input.MaxCredits)
		if outcome.Kind != OutcomeScheduled {
			return append(plan, leftover(domain.UnscheduledSemester, remaining))
		}
		plan = append(plan, outcome.Semester)
		history = history.WithCourses(outcome.Semester.Courses...)
		remaining = withoutCourses(remaining, outcome.Semester)
	}

	if len(remaining) > 0 {
		plan = append(plan, leftover(domain.RemainingSemester, remaining))
	}
	return plan
}

type NextSemesterInput struct {
	Label string
	// Rules are the effective rules of the student's major.
	Rules []domain.RequirementRule
	// History is the effective history plus everything planned earlier.
	History History
	// Pool is the candidate pool with catalog details.
	Pool []domain.Course
	// Pins are the pinned courses in request order.
	Pins []domain.CourseRef
	// ResolvePin looks up a pin missing from Pool. A nil ResolvePin treats
	// such pins as unknown.
	ResolvePin func(domain.CourseRef) (domain.Course, error)
	MaxCredits int
}

// ErrUnknownPin is returned for a pin that is neither in the pool nor
// resolvable.
var ErrUnknownPin = errors.New("pinned course not found")

func (input NextSemesterInput) resolve(ref domain.CourseRef) (domain.Course, error) {
	for _, course := range input.Pool {
		if course.Ref() == ref {
			return course, nil
		}
	}
	if input.ResolvePin == nil {
		return domain.Course{}, fmt.Errorf("%w: %s", ErrUnknownPin, ref)
	}
	return input.ResolvePin(ref)
}

// PlanNextSemester builds the next semester of an incremental plan. Pins
// are resolved and placed first, in order, and the first invalid pin fails
// the whole call with a *PinError or the resolver's error. Required courses
// are then added by ascending course number, followed by electives matching
// any credit threshold that is still short, until the cap is reached.
func PlanNextSemester(input NextSemesterInput) (Outcome, error) {
	if len(input.Pins) == 0 && !Outstanding(input.Rules, input.History) {
		return Outcome{Kind: OutcomeComplete}, nil
	}

	semester := newSemesterBuilder(input.Label, input.MaxCredits)
	history := input.History

	for _, ref := range input.Pins {
		pin, err := input.resolve(ref)
		if err != nil {
			return Outcome{}, err
		}
		switch {
		case semester.has(ref):
			return Outcome{}, &PinError{Course: ref, Reason: PinDuplicate}
		case history.Has(ref):
			return Outcome{}, &PinError{Course: ref, Reason: PinAlreadyTaken}
		case !PrerequisitesMet(pin.Prerequisites, history):
			return Outcome{}, &PinError{Course: ref, Reason: PinPrerequisitesUnmet}
		case !semester.fits(pin):
			return Outcome{}, &PinError{Course: ref, Reason: PinOverCreditCap}
		}
		semester.add(pin)
		history = history.WithCourses(pin)
	}

	pool := make([]domain.Course, 0, len(input.Pool))
	for _, course := range input.Pool {
		if Eligible(course, history) && !semester.has(course.Ref()) {
			pool = append(pool, course)
		}
	}
	sortByCourseNumber(pool)

	needed := neededRequired(input.Rules, history)
	for _, course := range pool {
		if _, ok := needed[course.Ref()]; ok {
			semester.tryAdd(course)
		}
	}

	fillElectives(semester, input.Rules, history, pool)

	return semester.outcome(), nil
}

func neededRequired(rules []domain.RequirementRule, history History) map[domain.CourseRef]struct{} {
	needed := make(map[domain.CourseRef]struct{})
	for _, rule := range rules {
		if rule.Kind != domain.RuleKindCourseList {
			continue
		}
		for _, ref := range rule.Courses {
			if ref.Valid() && !history.Has(ref) {
				needed[ref] = struct{}{}
			}
		}
	}
	return needed
}

func fillElectives(semester *semesterBuilder, rules []domain.RequirementRule, history History, pool []domain.Course) {
	withPlanned := history.WithCourses(semester.courses...)
	var open []domain.CreditThreshold
	for _, rule := range rules {
		if rule.Kind != domain.RuleKindCreditThreshold {
			continue
		}
		if ThresholdShortfall(*rule.Threshold, withPlanned) > 0 {
			open = append(open, *rule.Threshold)
		}
	}
	if len(open) == 0 {
		return
	}

	required := make(map[domain.CourseRef]struct{})
	for _, ref := range RequiredCourseRefs(rules) {
		required[ref] = struct{}{}
	}

	// Electives fill the semester up to the cap, not just the shortfall.
	for _, course := range pool {
		ref := course.Ref()
		if _, ok := required[ref]; ok || semester.has(ref) {
			continue
		}
		if matchesAny(open, ref) {
			semester.tryAdd(course)
		}
	}
}

func matchesAny(thresholds []domain.CreditThreshold, ref domain.CourseRef) bool {
	for _, threshold := range thresholds {
		if threshold.Matches(ref) {
			return true
		}
	}
	return false
}

func sortByCourseNumber(courses []domain.Course) {
	sort.SliceStable(courses, func(i, j int) bool {
		if courses[i].CourseNumber != courses[j].CourseNumber {
			return courses[i].CourseNumber < courses[j].CourseNumber
		}
		return courses[i].Subject < courses[j].Subject
	})
}

func dedupeCourses(courses []domain.Course) []domain.Course {
	out := make([]domain.Course, 0, len(courses))
	seen := make(map[domain.CourseRef]struct{}, len(courses))
	for _, course := range courses {
		if _, ok := seen[course.Ref()]; ok {
			continue
		}
		seen[course.Ref()] = struct{}{}
		out = append(out, course)
	}
	return out
}

func withoutCourses(courses []domain.Course, semester domain.SemesterPlan) []domain.Course {
	out := make([]domain.Course, 0, len(courses))
	for _, course := range courses {
		if !semester.Contains(course.Ref()) {
			out = append(out, course)
		}
	}
	return out
}

func leftover(label string, courses []domain.Course) domain.SemesterPlan {
	total := 0
	for _, course := range courses {
		total += course.Credits
	}
	return domain.SemesterPlan{
		Semester:     label,
		Courses:      courses,
		TotalCredits: total,
	}
}
