package degree

import "github.com/simon-dunk/Degree-Compass/internal/domain"

func ref(subject string, number int) domain.CourseRef {
	return domain.CourseRef{Subject: subject, CourseNumber: number}
}

func course(subject string, number, credits int, prereqs ...domain.CourseRef) domain.Course {
	return domain.Course{
		Subject:       subject,
		CourseNumber:  number,
		Credits:       credits,
		Prerequisites: prereqs,
	}
}

func completed(subject string, number int) domain.CompletedCourse {
	return domain.CompletedCourse{Subject: subject, CourseNumber: number, Grade: 4.0}
}

func completedWithCredits(subject string, number, credits int) domain.CompletedCourse {
	return domain.CompletedCourse{Subject: subject, CourseNumber: number, Grade: 3.0, Credits: credits}
}

func refsOf(plan domain.SemesterPlan) []domain.CourseRef {
	refs := make([]domain.CourseRef, 0, len(plan.Courses))
	for _, c := range plan.Courses {
		refs = append(refs, c.Ref())
	}
	return refs
}
