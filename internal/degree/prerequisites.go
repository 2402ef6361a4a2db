package degree

import "github.com/simon-dunk/Degree-Compass/internal/domain"

// PrerequisitesMet reports whether every prerequisite is in history. An
// empty list is always met. A malformed entry is never met.
func PrerequisitesMet(prerequisites []domain.CourseRef, history History) bool {
	for _, prereq := range prerequisites {
		if !prereq.Valid() || !history.Has(prereq) {
			return false
		}
	}
	return true
}

// Eligible reports whether course can be taken next: not yet in history and
// with all prerequisites met.
func Eligible(course domain.Course, history History) bool {
	return !history.Has(course.Ref()) && PrerequisitesMet(course.Prerequisites, history)
}

// EligibleCourses keeps the courses whose prerequisites are met, in input
// order.
func EligibleCourses(courses []domain.Course, history History) []domain.Course {
	eligible := make([]domain.Course, 0, len(courses))
	for _, course := range courses {
		if PrerequisitesMet(course.Prerequisites, history) {
			eligible = append(eligible, course)
		}
	}
	return eligible
}
