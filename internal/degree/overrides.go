package degree

import "github.com/simon-dunk/Degree-Compass/internal/domain"

type EffectiveState struct {
	// Completed is the real history plus the SubThis course of every
	// triggered override.
	Completed History
	Rules     []domain.RequirementRule
	Applied   []domain.Override
}

// ResolveEffectiveState applies the student's overrides for one computation.
// An override triggers when any SubFor course is in the student's real
// history. In course-list rules a triggered SubThis is replaced by SubFor[0]
// only, even when a later SubFor entry was the one completed.
func ResolveEffectiveState(student domain.Student, rules []domain.RequirementRule) EffectiveState {
	actual := NewHistory(student.CompletedCourses...)

	replacements := make(map[domain.CourseRef]domain.CourseRef)
	var granted []domain.CompletedCourse
	var applied []domain.Override
	for _, override := range student.Overrides {
		if !override.SubThis.Valid() || len(override.SubFor) == 0 {
			continue
		}
		if !anyCompleted(override.SubFor, actual) {
			continue
		}
		if _, seen := replacements[override.SubThis]; !seen && override.SubFor[0].Valid() {
			replacements[override.SubThis] = override.SubFor[0]
		}
		granted = append(granted, domain.CompletedCourse{
			Subject:      override.SubThis.Subject,
			CourseNumber: override.SubThis.CourseNumber,
		})
		applied = append(applied, override)
	}

	effectiveRules := make([]domain.RequirementRule, 0, len(rules))
	for _, rule := range rules {
		copied := rule.Clone()
		if copied.Kind == domain.RuleKindCourseList && len(replacements) > 0 {
			copied.Courses = substituteCourses(copied.Courses, replacements)
		}
		effectiveRules = append(effectiveRules, copied)
	}

	return EffectiveState{
		Completed: actual.With(granted...),
		Rules:     effectiveRules,
		Applied:   applied,
	}
}

func anyCompleted(refs []domain.CourseRef, history History) bool {
	for _, ref := range refs {
		if ref.Valid() && history.Has(ref) {
			return true
		}
	}
	return false
}

func substituteCourses(courses []domain.CourseRef, replacements map[domain.CourseRef]domain.CourseRef) []domain.CourseRef {
	out := make([]domain.CourseRef, 0, len(courses))
	seen := make(map[domain.CourseRef]struct{}, len(courses))
	for _, course := range courses {
		if replacement, ok := replacements[course]; ok {
			course = replacement
		}
		if _, dup := seen[course]; dup {
			continue
		}
		seen[course] = struct{}{}
		out = append(out, course)
	}
	return out
}
