package degree

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

func TestPlanDegreeOrdersByPrerequisites(t *testing.T) {
	cs101 := course("CS", 101, 3)
	cs201 := course("CS", 201, 3, ref("CS", 101))

	plan := PlanDegree(PlanInput{
		Remaining: []domain.Course{cs101, cs201},
		History:   NewHistory(),
		Semesters: 8,
	})

	want := []domain.SemesterPlan{
		{Semester: "Semester 1", Courses: []domain.Course{cs101}, TotalCredits: 3},
		{Semester: "Semester 2", Courses: []domain.Course{cs201}, TotalCredits: 3},
	}
	if diff := cmp.Diff(want, plan); diff != "" {
		t.Fatalf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanDegreeRespectsCapAndNeverRepeats(t *testing.T) {
	var remaining []domain.Course
	for i := 1; i <= 12; i++ {
		remaining = append(remaining, course("CIS", 1000+i, 3))
	}
	for i := 1; i <= 6; i++ {
		remaining = append(remaining, course("CIS", 3000+i, 4, ref("CIS", 1000+i)))
	}
	remaining = append(remaining, course("CIS", 4999, 3, ref("CIS", 3001), ref("CIS", 3006)))

	plan := PlanDegree(PlanInput{Remaining: remaining, History: NewHistory(), Semesters: 8})

	seen := make(map[domain.CourseRef]string)
	total := 0
	for _, semester := range plan {
		assert.NotEqual(t, domain.UnscheduledSemester, semester.Semester)
		assert.NotEqual(t, domain.RemainingSemester, semester.Semester)
		assert.LessOrEqual(t, semester.TotalCredits, MaxCreditsPerSemester, semester.Semester)
		sum := 0
		for _, c := range semester.Courses {
			if prev, ok := seen[c.Ref()]; ok {
				t.Fatalf("%s scheduled in %s and %s", c.Ref(), prev, semester.Semester)
			}
			seen[c.Ref()] = semester.Semester
			sum += c.Credits
		}
		assert.Equal(t, sum, semester.TotalCredits)
		total += len(semester.Courses)
	}
	assert.Equal(t, len(remaining), total)
}

func TestPlanDegreeReportsDeadlockAsUnscheduled(t *testing.T) {
	ok := course("CS", 101, 3)
	blocked := course("CS", 401, 3, ref("CS", 399))

	plan := PlanDegree(PlanInput{Remaining: []domain.Course{ok, blocked}, History: NewHistory()})

	require.Len(t, plan, 2)
	assert.Equal(t, "Semester 1", plan[0].Semester)
	assert.Equal(t, []domain.CourseRef{ref("CS", 101)}, refsOf(plan[0]))
	assert.Equal(t, domain.UnscheduledSemester, plan[1].Semester)
	assert.Equal(t, []domain.CourseRef{ref("CS", 401)}, refsOf(plan[1]))
	assert.Equal(t, 3, plan[1].TotalCredits)
}

func TestPlanDegreeReportsLeftoversAfterLastSemester(t *testing.T) {
	chain := []domain.Course{course("CS", 101, 3)}
	for i := 2; i <= 4; i++ {
		chain = append(chain, course("CS", 100*i+1, 3, ref("CS", 100*(i-1)+1)))
	}

	plan := PlanDegree(PlanInput{Remaining: chain, History: NewHistory(), Semesters: 2})

	require.Len(t, plan, 3)
	assert.Equal(t, domain.RemainingSemester, plan[2].Semester)
	assert.Equal(t, []domain.CourseRef{ref("CS", 301), ref("CS", 401)}, refsOf(plan[2]))
}

func TestPlanDegreeEmptyWhenNothingRemains(t *testing.T) {
	plan := PlanDegree(PlanInput{History: NewHistory(completed("CS", 101))})
	assert.Empty(t, plan)
	assert.NotNil(t, plan)
}

func TestPackSemesterSkipsCoursesThatDoNotFit(t *testing.T) {
	candidates := []domain.Course{
		course("CIS", 1001, 6),
		course("CIS", 1002, 6),
		course("CIS", 1003, 6),
		course("CIS", 1004, 3),
	}

	outcome := PackSemester("Fall", candidates, NewHistory(), 0)

	assert.Equal(t, OutcomeScheduled, outcome.Kind)
	assert.Equal(t, []domain.CourseRef{ref("CIS", 1001), ref("CIS", 1002), ref("CIS", 1004)}, refsOf(outcome.Semester))
	assert.Equal(t, 15, outcome.Semester.TotalCredits)
}

// nextInput pins each given course; pins outside pool resolve to themselves.
func nextInput(pool []domain.Course, rules []domain.RequirementRule, history History, pins ...domain.Course) NextSemesterInput {
	byRef := make(map[domain.CourseRef]domain.Course, len(pins))
	refs := make([]domain.CourseRef, 0, len(pins))
	for _, pin := range pins {
		byRef[pin.Ref()] = pin
		refs = append(refs, pin.Ref())
	}
	return NextSemesterInput{
		Label:   "Next Semester",
		Rules:   rules,
		History: history,
		Pool:    pool,
		Pins:    refs,
		ResolvePin: func(ref domain.CourseRef) (domain.Course, error) {
			if course, ok := byRef[ref]; ok {
				return course, nil
			}
			return domain.Course{}, ErrUnknownPin
		},
	}
}

func TestPlanNextSemesterPinWithUnmetPrerequisitesFails(t *testing.T) {
	cs101 := course("CS", 101, 3)
	cs201 := course("CS", 201, 3, ref("CS", 101))
	rules := []domain.RequirementRule{domain.NewCourseListRule("CS", "CORE", cs101.Ref(), cs201.Ref())}

	_, err := PlanNextSemester(nextInput([]domain.Course{cs101, cs201}, rules, NewHistory(), cs201))

	var pinErr *PinError
	require.True(t, errors.As(err, &pinErr))
	assert.Equal(t, PinPrerequisitesUnmet, pinErr.Reason)
	assert.Equal(t, cs201.Ref(), pinErr.Course)
}

func TestPlanNextSemesterPinValidation(t *testing.T) {
	cs101 := course("CS", 101, 3)
	big := course("CS", 490, 12)
	rules := []domain.RequirementRule{domain.NewCourseListRule("CS", "CORE", cs101.Ref(), big.Ref())}

	tests := []struct {
		name    string
		history History
		pins    []domain.Course
		reason  PinRejection
	}{
		{name: "duplicate", history: NewHistory(), pins: []domain.Course{cs101, cs101}, reason: PinDuplicate},
		{name: "already taken", history: NewHistory(completed("CS", 101)), pins: []domain.Course{cs101}, reason: PinAlreadyTaken},
		{name: "over cap", history: NewHistory(), pins: []domain.Course{course("CS", 480, 6), big}, reason: PinOverCreditCap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlanNextSemester(nextInput([]domain.Course{cs101, big}, rules, tt.history, tt.pins...))
			var pinErr *PinError
			require.True(t, errors.As(err, &pinErr))
			assert.Equal(t, tt.reason, pinErr.Reason)
		})
	}
}

func TestPlanNextSemesterLaterPinSeesEarlierPin(t *testing.T) {
	cs101 := course("CS", 101, 3)
	cs201 := course("CS", 201, 3, ref("CS", 101))
	rules := []domain.RequirementRule{domain.NewCourseListRule("CS", "CORE", cs101.Ref(), cs201.Ref())}

	outcome, err := PlanNextSemester(nextInput([]domain.Course{cs101, cs201}, rules, NewHistory(), cs101, cs201))

	require.NoError(t, err)
	assert.Equal(t, OutcomeScheduled, outcome.Kind)
	assert.Equal(t, []domain.CourseRef{cs101.Ref(), cs201.Ref()}, refsOf(outcome.Semester))
}

func TestPlanNextSemesterFillsRequiredByCourseNumberThenElectives(t *testing.T) {
	pool := []domain.Course{
		course("CIS", 3303, 3, ref("CIS", 2003)),
		course("MATH", 2213, 3),
		course("CIS", 2003, 3),
		course("CIS", 4503, 3),
		course("CIS", 3623, 3),
		course("ART", 3003, 3),
		course("CIS", 2503, 3),
	}
	rules := []domain.RequirementRule{
		domain.NewCourseListRule("CIS", "CORE", ref("CIS", 2003), ref("MATH", 2213), ref("CIS", 3303)),
		domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{
			MinCredits:      6,
			AllowedSubjects: []string{"CIS"},
			Restrictions:    []string{"3000+"},
		}),
	}

	outcome, err := PlanNextSemester(nextInput(pool, rules, NewHistory()))

	require.NoError(t, err)
	assert.Equal(t, OutcomeScheduled, outcome.Kind)
	assert.Equal(t, "Next Semester", outcome.Semester.Semester)
	assert.Equal(t,
		[]domain.CourseRef{ref("CIS", 2003), ref("MATH", 2213), ref("CIS", 3623), ref("CIS", 4503)},
		refsOf(outcome.Semester),
	)
	assert.Equal(t, 12, outcome.Semester.TotalCredits)
}

func TestPlanNextSemesterElectivesFillToCreditCap(t *testing.T) {
	var pool []domain.Course
	for i := 0; i < 6; i++ {
		pool = append(pool, course("CIS", 3000+i, 3))
	}
	pool = append(pool, course("ART", 3100, 3))
	rules := []domain.RequirementRule{
		domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{
			MinCredits:      3,
			AllowedSubjects: []string{"CIS"},
		}),
	}

	outcome, err := PlanNextSemester(nextInput(pool, rules, NewHistory()))

	require.NoError(t, err)
	assert.Equal(t, OutcomeScheduled, outcome.Kind)
	assert.Equal(t,
		[]domain.CourseRef{ref("CIS", 3000), ref("CIS", 3001), ref("CIS", 3002), ref("CIS", 3003), ref("CIS", 3004)},
		refsOf(outcome.Semester),
	)
	assert.Equal(t, MaxCreditsPerSemester, outcome.Semester.TotalCredits)
}

func TestPlanNextSemesterNoElectivesOnceThresholdsAreMet(t *testing.T) {
	pool := []domain.Course{course("CIS", 3000, 3), course("CIS", 3001, 3)}
	rules := []domain.RequirementRule{
		domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{
			MinCredits:      3,
			AllowedSubjects: []string{"CIS"},
		}),
		domain.NewCourseListRule("CIS", "CORE", ref("CIS", 1001)),
	}

	outcome, err := PlanNextSemester(nextInput(pool, rules, NewHistory(completedWithCredits("CIS", 2999, 3))))

	require.NoError(t, err)
	assert.Equal(t, OutcomeStalled, outcome.Kind)
	assert.Empty(t, outcome.Semester.Courses)
}

func TestPlanNextSemesterPinsFailInOrder(t *testing.T) {
	cs201 := course("CS", 201, 3, ref("CS", 101))
	rules := []domain.RequirementRule{domain.NewCourseListRule("CS", "CORE", ref("CS", 101), cs201.Ref())}

	input := nextInput([]domain.Course{cs201}, rules, NewHistory())
	input.Pins = []domain.CourseRef{cs201.Ref(), ref("ZZZ", 9999)}
	_, err := PlanNextSemester(input)

	var pinErr *PinError
	require.True(t, errors.As(err, &pinErr))
	assert.Equal(t, PinPrerequisitesUnmet, pinErr.Reason)

	input.Pins = []domain.CourseRef{ref("ZZZ", 9999), cs201.Ref()}
	_, err = PlanNextSemester(input)
	assert.ErrorIs(t, err, ErrUnknownPin)

	input.ResolvePin = nil
	_, err = PlanNextSemester(input)
	assert.ErrorIs(t, err, ErrUnknownPin)
}

func TestPlanNextSemesterCompleteAndStalled(t *testing.T) {
	cs101 := course("CS", 101, 3)
	cs201 := course("CS", 201, 3, ref("CS", 199))
	rules := []domain.RequirementRule{domain.NewCourseListRule("CS", "CORE", cs101.Ref(), cs201.Ref())}

	complete, err := PlanNextSemester(nextInput(nil, rules, NewHistory(completed("CS", 101), completed("CS", 201))))
	require.NoError(t, err)
	assert.Equal(t, OutcomeComplete, complete.Kind)

	stalled, err := PlanNextSemester(nextInput([]domain.Course{cs201}, rules, NewHistory(completed("CS", 101))))
	require.NoError(t, err)
	assert.Equal(t, OutcomeStalled, stalled.Kind)
	assert.Empty(t, stalled.Semester.Courses)
	assert.NotNil(t, stalled.Semester.Courses)
	assert.Equal(t, 0, stalled.Semester.TotalCredits)
}

func TestPlanNextSemesterPinsAreNotCompletion(t *testing.T) {
	art := course("ART", 1003, 3)
	rules := []domain.RequirementRule{domain.NewCourseListRule("CS", "CORE", ref("CS", 101))}

	outcome, err := PlanNextSemester(nextInput(nil, rules, NewHistory(completed("CS", 101)), art))

	require.NoError(t, err)
	assert.Equal(t, OutcomeScheduled, outcome.Kind)
	assert.Equal(t, []domain.CourseRef{art.Ref()}, refsOf(outcome.Semester))
}

func TestPlanNextSemesterSessionNeverRepeatsCourses(t *testing.T) {
	var pool []domain.Course
	var required []domain.CourseRef
	for level := 1; level <= 4; level++ {
		for i := 0; i < 3; i++ {
			c := course("CIS", level*1000+i, 3)
			if level > 1 {
				c.Prerequisites = []domain.CourseRef{ref("CIS", (level-1)*1000+i)}
			}
			pool = append(pool, c)
			required = append(required, c.Ref())
		}
	}
	rules := []domain.RequirementRule{domain.NewCourseListRule("CIS", "CORE", required...)}

	history := NewHistory()
	seen := make(map[domain.CourseRef]bool)
	for round := 1; round <= 10; round++ {
		outcome, err := PlanNextSemester(nextInput(pool, rules, history))
		require.NoError(t, err)
		if outcome.Kind == OutcomeComplete {
			assert.Len(t, seen, len(required))
			return
		}
		require.Equal(t, OutcomeScheduled, outcome.Kind, fmt.Sprintf("round %d", round))
		assert.LessOrEqual(t, outcome.Semester.TotalCredits, MaxCreditsPerSemester)
		for _, c := range outcome.Semester.Courses {
			require.False(t, seen[c.Ref()], "%s planned twice", c.Ref())
			seen[c.Ref()] = true
		}
		history = history.WithCourses(outcome.Semester.Courses...)
	}
	t.Fatal("planning session did not complete")
}
