package degree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

func TestEvaluateCourseListNotes(t *testing.T) {
	rule := domain.NewCourseListRule("CIS", "GENERAL_ED", ref("ENGL", 1113), ref("ENGL", 1213))

	partial := EvaluateRule(rule, NewHistory(completed("ENGL", 1113)))
	assert.False(t, partial.IsSatisfied)
	assert.Equal(t, "1 general ed course(s) remaining.", partial.Notes)
	assert.Equal(t, []domain.NeededCourse{{Subject: "ENGL", CourseNumber: 1213}}, partial.CoursesStillNeeded)

	done := EvaluateRule(rule, NewHistory(completed("ENGL", 1113), completed("ENGL", 1213)))
	assert.True(t, done.IsSatisfied)
	assert.Equal(t, "All general ed courses completed.", done.Notes)
	assert.Empty(t, done.CoursesStillNeeded)
	assert.NotNil(t, done.CoursesStillNeeded)
}

func TestCourseListSatisfactionIsMonotonic(t *testing.T) {
	required := []domain.CourseRef{ref("CS", 101), ref("CS", 201), ref("CS", 301)}
	rule := domain.NewCourseListRule("CS", "CORE", required...)
	extras := []domain.CompletedCourse{completed("MATH", 1100), completed("ART", 1000)}

	// every subset of the required courses, with and without unrelated extras
	for mask := 0; mask < 1<<len(required); mask++ {
		var taken []domain.CompletedCourse
		for i, r := range required {
			if mask&(1<<i) != 0 {
				taken = append(taken, completed(r.Subject, r.CourseNumber))
			}
		}
		before := EvaluateRule(rule, NewHistory(taken...))
		for _, r := range required {
			after := EvaluateRule(rule, NewHistory(taken...).With(completed(r.Subject, r.CourseNumber)))
			if before.IsSatisfied {
				assert.True(t, after.IsSatisfied, "adding %s unsatisfied the rule", r)
			}
		}
		withExtras := EvaluateRule(rule, NewHistory(append(taken, extras...)...))
		assert.Equal(t, before.IsSatisfied, withExtras.IsSatisfied)
		assert.Equal(t, mask == 1<<len(required)-1, before.IsSatisfied)
	}
}

func TestCreditThresholdBoundary(t *testing.T) {
	rule := domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{
		MinCredits:      9,
		AllowedSubjects: []string{"CIS"},
	})

	eight := EvaluateRule(rule, NewHistory(
		completedWithCredits("CIS", 3003, 4),
		completedWithCredits("CIS", 3103, 4),
	))
	assert.False(t, eight.IsSatisfied)
	assert.Equal(t, 8, eight.CreditsEarned)
	assert.Equal(t, "8 of 9 elective credits completed.", eight.Notes)

	nine := EvaluateRule(rule, NewHistory(
		completedWithCredits("CIS", 3003, 4),
		completedWithCredits("CIS", 3103, 5),
	))
	assert.True(t, nine.IsSatisfied)
	assert.Equal(t, 9, nine.CreditsEarned)
	assert.Empty(t, nine.CoursesStillNeeded)
}

func TestCreditThresholdRestrictionExcludesLowerLevel(t *testing.T) {
	rule := domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{
		MinCredits:      9,
		AllowedSubjects: []string{"CIS"},
		Restrictions:    []string{"3000+"},
	})

	result := EvaluateRule(rule, NewHistory(completedWithCredits("CIS", 2003, 3)))

	assert.Equal(t, 0, result.CreditsEarned)
	assert.False(t, result.IsSatisfied)
	require.Len(t, result.CoursesStillNeeded, 1)
	placeholder := result.CoursesStillNeeded[0]
	assert.True(t, placeholder.IsPlaceholder())
	assert.Equal(t, domain.ElectiveSubject, placeholder.Subject)
	assert.Equal(t, "9 more credit(s) from CIS at the 3000+ level", placeholder.Description)
}

func TestCreditThresholdDefaultsMissingCredits(t *testing.T) {
	rule := domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{
		MinCredits:      6,
		AllowedSubjects: []string{"CIS", "MATH"},
	})

	result := EvaluateRule(rule, NewHistory(completed("CIS", 1003), completed("MATH", 2213), completed("ART", 1003)))

	assert.Equal(t, 6, result.CreditsEarned)
	assert.True(t, result.IsSatisfied)
}

func TestEvaluateUnknownRuleIsUnsatisfied(t *testing.T) {
	rule := domain.RequirementRule{MajorCode: "CIS", RequirementType: "CAPSTONE"}

	result := EvaluateRule(rule, NewHistory())

	assert.False(t, result.IsSatisfied)
	assert.Empty(t, result.CoursesStillNeeded)
	assert.False(t, Outstanding([]domain.RequirementRule{rule}, NewHistory()))
}

func TestAuditRulesKeepsRuleOrder(t *testing.T) {
	rules := []domain.RequirementRule{
		domain.NewCourseListRule("CIS", "GENERAL_ED", ref("ENGL", 1113)),
		domain.NewCourseListRule("CIS", "CORE", ref("CIS", 1003)),
		domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{MinCredits: 3, AllowedSubjects: []string{"CIS"}}),
	}

	results := AuditRules(rules, NewHistory())

	require.Len(t, results, 3)
	assert.Equal(t, "GENERAL_ED", results[0].RequirementType)
	assert.Equal(t, "CORE", results[1].RequirementType)
	assert.Equal(t, "ELECTIVES", results[2].RequirementType)
}

func TestNeededCourseRefsSkipsPlaceholdersAndDuplicates(t *testing.T) {
	results := []domain.RequirementResult{
		{CoursesStillNeeded: []domain.NeededCourse{{Subject: "CIS", CourseNumber: 1003}, {Subject: "MATH", CourseNumber: 1513}}},
		{CoursesStillNeeded: []domain.NeededCourse{{Subject: "CIS", CourseNumber: 1003}, {Subject: "CIS"}}},
		{CoursesStillNeeded: []domain.NeededCourse{{Subject: domain.ElectiveSubject, Description: "3 more"}}},
	}

	assert.Equal(t, []domain.CourseRef{ref("CIS", 1003), ref("MATH", 1513)}, NeededCourseRefs(results))
}

func TestRequiredCourseRefsUnionsCourseListRules(t *testing.T) {
	rules := []domain.RequirementRule{
		domain.NewCourseListRule("CIS", "CORE", ref("CIS", 1003), ref("CIS", 2003)),
		domain.NewCreditThresholdRule("CIS", "ELECTIVES", domain.CreditThreshold{MinCredits: 3, AllowedSubjects: []string{"CIS"}}),
		domain.NewCourseListRule("CIS", "MINOR", ref("CIS", 2003), ref("MATH", 2113)),
	}

	assert.Equal(t,
		[]domain.CourseRef{ref("CIS", 1003), ref("CIS", 2003), ref("MATH", 2113)},
		RequiredCourseRefs(rules),
	)
}
