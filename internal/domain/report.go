package domain

import "time"

// ElectiveSubject tags the placeholder entry an unsatisfied credit-threshold
// rule puts in its needed list. It never names a catalog course.
const ElectiveSubject = "ELECTIVE"

type NeededCourse struct {
	Subject      string `json:"Subject"`
	CourseNumber int    `json:"CourseNumber"`
	Description  string `json:"Description,omitempty"`
}

func NeededFromRef(ref CourseRef) NeededCourse {
	return NeededCourse{Subject: ref.Subject, CourseNumber: ref.CourseNumber}
}

func (n NeededCourse) IsPlaceholder() bool {
	return n.Subject == ElectiveSubject
}

func (n NeededCourse) Ref() CourseRef {
	return CourseRef{Subject: n.Subject, CourseNumber: n.CourseNumber}
}

type RequirementResult struct {
	RequirementType    string         `json:"requirementType"`
	IsSatisfied        bool           `json:"isSatisfied"`
	Notes              string         `json:"notes"`
	CoursesStillNeeded []NeededCourse `json:"coursesStillNeeded"`
	CreditsEarned      int            `json:"creditsEarned,omitempty"`
	CreditsRequired    int            `json:"creditsRequired,omitempty"`
}

type AuditReport struct {
	StudentID               int                 `json:"studentId"`
	Major                   string              `json:"major"`
	AuditDate               time.Time           `json:"auditDate"`
	StudentCompletedCourses []CompletedCourse   `json:"studentCompletedCourses"`
	Results                 []RequirementResult `json:"results"`
	AllRemainingCourses     []Course            `json:"allRemainingCourses"`
	EligibleNextCourses     []Course            `json:"eligibleNextCourses"`
	AvailableElectives      []Course            `json:"availableElectives"`
}
