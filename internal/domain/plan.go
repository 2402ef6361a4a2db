package domain

// UnscheduledSemester labels the trailing bucket of courses a plan could not
// place because of a prerequisite deadlock.
const UnscheduledSemester = "Unscheduled"

// RemainingSemester labels the trailing bucket of courses still waiting
// when a plan runs out of semesters.
const RemainingSemester = "Remaining"

type SemesterPlan struct {
	Semester     string   `json:"semester"`
	Courses      []Course `json:"courses"`
	TotalCredits int      `json:"totalCredits"`
}

func (p SemesterPlan) Contains(ref CourseRef) bool {
	for _, course := range p.Courses {
		if course.Ref() == ref {
			return true
		}
	}
	return false
}
