package degree

import (
	"fmt"
	"strings"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

// EvaluateRule audits one effective rule against the effective history.
func EvaluateRule(rule domain.RequirementRule, history History) domain.RequirementResult {
	switch rule.Kind {
	case domain.RuleKindCourseList:
		return evaluateCourseList(rule, history)
	case domain.RuleKindCreditThreshold:
		return evaluateCreditThreshold(rule, history)
	default:
		return domain.RequirementResult{
			RequirementType:    rule.RequirementType,
			IsSatisfied:        false,
			Notes:              "Rule defines neither a course list nor a credit threshold.",
			CoursesStillNeeded: []domain.NeededCourse{},
		}
	}
}

// AuditRules evaluates rules in the order given.
func AuditRules(rules []domain.RequirementRule, history History) []domain.RequirementResult {
	results := make([]domain.RequirementResult, 0, len(rules))
	for _, rule := range rules {
		results = append(results, EvaluateRule(rule, history))
	}
	return results
}

func evaluateCourseList(rule domain.RequirementRule, history History) domain.RequirementResult {
	needed := make([]domain.NeededCourse, 0)
	for _, ref := range rule.Courses {
		if !history.Has(ref) {
			needed = append(needed, domain.NeededFromRef(ref))
		}
	}

	label := ruleLabel(rule.RequirementType)
	notes := fmt.Sprintf("All %s courses completed.", label)
	if len(needed) > 0 {
		notes = fmt.Sprintf("%d %s course(s) remaining.", len(needed), label)
	}
	return domain.RequirementResult{
		RequirementType:    rule.RequirementType,
		IsSatisfied:        len(needed) == 0,
		Notes:              notes,
		CoursesStillNeeded: needed,
	}
}

func evaluateCreditThreshold(rule domain.RequirementRule, history History) domain.RequirementResult {
	threshold := *rule.Threshold
	earned := ThresholdCredits(threshold, history)
	result := domain.RequirementResult{
		RequirementType:    rule.RequirementType,
		IsSatisfied:        earned >= threshold.MinCredits,
		Notes:              fmt.Sprintf("%d of %d elective credits completed.", earned, threshold.MinCredits),
		CoursesStillNeeded: []domain.NeededCourse{},
		CreditsEarned:      earned,
		CreditsRequired:    threshold.MinCredits,
	}
	if !result.IsSatisfied {
		result.CoursesStillNeeded = append(result.CoursesStillNeeded, domain.NeededCourse{
			Subject:     domain.ElectiveSubject,
			Description: electiveDescription(threshold, threshold.MinCredits-earned),
		})
	}
	return result
}

// ThresholdCredits sums the credits in history that count toward threshold.
func ThresholdCredits(threshold domain.CreditThreshold, history History) int {
	earned := 0
	for _, completed := range history.courses {
		if threshold.Matches(completed.Ref()) {
			earned += completed.EarnedCredits()
		}
	}
	return earned
}

// ThresholdShortfall is the number of credits still missing, never negative.
func ThresholdShortfall(threshold domain.CreditThreshold, history History) int {
	missing := threshold.MinCredits - ThresholdCredits(threshold, history)
	if missing < 0 {
		return 0
	}
	return missing
}

// RequiredCourseRefs is the de-duplicated union of every course-list rule's
// courses, in rule order.
func RequiredCourseRefs(rules []domain.RequirementRule) []domain.CourseRef {
	var refs []domain.CourseRef
	seen := make(map[domain.CourseRef]struct{})
	for _, rule := range rules {
		if rule.Kind != domain.RuleKindCourseList {
			continue
		}
		for _, ref := range rule.Courses {
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

// NeededCourseRefs collects the real courses still needed across results.
// ELECTIVE placeholders and malformed references are left out.
func NeededCourseRefs(results []domain.RequirementResult) []domain.CourseRef {
	var refs []domain.CourseRef
	seen := make(map[domain.CourseRef]struct{})
	for _, result := range results {
		for _, needed := range result.CoursesStillNeeded {
			if needed.IsPlaceholder() {
				continue
			}
			ref := needed.Ref()
			if !ref.Valid() {
				continue
			}
			if _, ok := seen[ref]; ok {
				continue
			}
			seen[ref] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

// Outstanding reports whether any course-list or credit-threshold rule is
// still unsatisfied. Unknown-kind rules cannot be planned for and are skipped.
func Outstanding(rules []domain.RequirementRule, history History) bool {
	for _, rule := range rules {
		if rule.Kind == domain.RuleKindUnknown {
			continue
		}
		if !EvaluateRule(rule, history).IsSatisfied {
			return true
		}
	}
	return false
}

func ruleLabel(requirementType string) string {
	return strings.ToLower(strings.ReplaceAll(requirementType, "_", " "))
}

func electiveDescription(threshold domain.CreditThreshold, missing int) string {
	subjects := "no configured subject"
	if len(threshold.AllowedSubjects) > 0 {
		subjects = strings.Join(threshold.AllowedSubjects, ", ")
	}
	description := fmt.Sprintf("%d more credit(s) from %s", missing, subjects)
	if minimum := threshold.MinCourseNumber(); minimum > 0 {
		description += fmt.Sprintf(" at the %d+ level", minimum)
	}
	return description
}
