package degree

import "github.com/simon-dunk/Degree-Compass/internal/domain"

// History is an immutable set of completed courses. With returns a new
// History so a planning step never changes the caller's view.
type History struct {
	courses []domain.CompletedCourse
	index   map[domain.CourseRef]struct{}
}

func NewHistory(courses ...domain.CompletedCourse) History {
	return History{}.With(courses...)
}

func (h History) With(courses ...domain.CompletedCourse) History {
	next := History{
		courses: make([]domain.CompletedCourse, 0, len(h.courses)+len(courses)),
		index:   make(map[domain.CourseRef]struct{}, len(h.courses)+len(courses)),
	}
	for _, course := range h.courses {
		next.courses = append(next.courses, course)
		next.index[course.Ref()] = struct{}{}
	}
	for _, course := range courses {
		ref := course.Ref()
		if _, ok := next.index[ref]; ok {
			continue
		}
		next.courses = append(next.courses, course)
		next.index[ref] = struct{}{}
	}
	return next
}

// WithCourses records catalog courses as taken with their catalog credits.
func (h History) WithCourses(courses ...domain.Course) History {
	completed := make([]domain.CompletedCourse, 0, len(courses))
	for _, course := range courses {
		completed = append(completed, domain.CompletedFromCourse(course))
	}
	return h.With(completed...)
}

func (h History) Has(ref domain.CourseRef) bool {
	_, ok := h.index[ref]
	return ok
}

func (h History) Len() int {
	return len(h.courses)
}

func (h History) Courses() []domain.CompletedCourse {
	return append([]domain.CompletedCourse(nil), h.courses...)
}
