package domain

import (
	"encoding/json"
	"strings"
)

type CompletedCourse struct {
	Subject      string  `json:"Subject"`
	CourseNumber int     `json:"CourseNumber"`
	Grade        float64 `json:"Grade"`
	Credits      int     `json:"Credits,omitempty"`
	Semester     string  `json:"Semester,omitempty"`
}

func (c CompletedCourse) Ref() CourseRef {
	return CourseRef{Subject: c.Subject, CourseNumber: c.CourseNumber}
}

// EarnedCredits falls back to DefaultCredits when the record carries none.
func (c CompletedCourse) EarnedCredits() int {
	if c.Credits > 0 {
		return c.Credits
	}
	return DefaultCredits
}

func (c *CompletedCourse) UnmarshalJSON(data []byte) error {
	var doc struct {
		Subject      string          `json:"Subject"`
		CourseNumber json.RawMessage `json:"CourseNumber"`
		Grade        json.RawMessage `json:"Grade"`
		Credits      json.RawMessage `json:"Credits"`
		Semester     string          `json:"Semester"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	grade, _ := parseFloat(doc.Grade)
	*c = CompletedCourse{
		Subject:      strings.TrimSpace(doc.Subject),
		CourseNumber: parsePositiveInt(doc.CourseNumber),
		Grade:        grade,
		Credits:      parsePositiveInt(doc.Credits),
		Semester:     doc.Semester,
	}
	return nil
}

// CompletedFromCourse records a catalog course as taken, keeping its credits.
func CompletedFromCourse(course Course) CompletedCourse {
	return CompletedCourse{
		Subject:      course.Subject,
		CourseNumber: course.CourseNumber,
		Credits:      course.Credits,
	}
}

// Override lets SubThis count once any course in SubFor has been completed.
type Override struct {
	SubThis      CourseRef   `json:"SubThis"`
	SubFor       []CourseRef `json:"SubFor"`
	ApprovedBy   string      `json:"ApprovedBy,omitempty"`
	ApprovedDate string      `json:"ApprovedDate,omitempty"`
}

type Student struct {
	StudentID        int               `json:"StudentId"`
	FirstName        string            `json:"FirstName,omitempty"`
	LastName         string            `json:"LastName,omitempty"`
	Major            []string          `json:"Major"`
	CompletedCourses []CompletedCourse `json:"CompletedCourses"`
	Overrides        []Override        `json:"Overrides,omitempty"`
}

// PrimaryMajor is the major used for audits.
func (s Student) PrimaryMajor() string {
	if len(s.Major) == 0 {
		return ""
	}
	return s.Major[0]
}

func (s Student) HasCompleted(ref CourseRef) bool {
	for _, completed := range s.CompletedCourses {
		if completed.Ref() == ref {
			return true
		}
	}
	return false
}

type StudentSummary struct {
	StudentID int    `json:"StudentId"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
}
