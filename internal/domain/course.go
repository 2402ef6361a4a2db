package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const DefaultCredits = 3

type CourseRef struct {
	Subject      string `json:"Subject"`
	CourseNumber int    `json:"CourseNumber"`
}

// Key identifies a course the same way across catalog, rules and students.
func (r CourseRef) Key() string {
	return fmt.Sprintf("%v#%v", r.Subject, r.CourseNumber)
}

// Valid reports whether the reference names a real course. A reference with
// a missing subject or a non-numeric course number never matches anything.
func (r CourseRef) Valid() bool {
	return r.Subject != "" && r.CourseNumber > 0
}

func (r CourseRef) String() string {
	return fmt.Sprintf("%s %d", r.Subject, r.CourseNumber)
}

func (r *CourseRef) UnmarshalJSON(data []byte) error {
	var doc struct {
		Subject      string          `json:"Subject"`
		CourseNumber json.RawMessage `json:"CourseNumber"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	r.Subject = strings.TrimSpace(doc.Subject)
	r.CourseNumber = parsePositiveInt(doc.CourseNumber)
	return nil
}

// ParseCourseRef accepts "CIS 2143", "CIS:2143" and "CIS-2143".
func ParseCourseRef(value string) (CourseRef, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(value), func(r rune) bool {
		return r == ' ' || r == ':' || r == '-'
	})
	if len(fields) != 2 {
		return CourseRef{}, fmt.Errorf("invalid course reference %q", value)
	}
	number, err := strconv.Atoi(fields[1])
	if err != nil || number <= 0 {
		return CourseRef{}, fmt.Errorf("invalid course number in %q", value)
	}
	return CourseRef{Subject: strings.ToUpper(fields[0]), CourseNumber: number}, nil
}

type Schedule struct {
	Days      string `json:"Days"`
	StartTime string `json:"StartTime"`
	EndTime   string `json:"EndTime"`
}

type Course struct {
	Subject       string      `json:"Subject"`
	CourseNumber  int         `json:"CourseNumber"`
	Name          string      `json:"Name,omitempty"`
	Credits       int         `json:"Credits"`
	Prerequisites []CourseRef `json:"Prerequisites,omitempty"`
	Schedule      *Schedule   `json:"Schedule,omitempty"`
	Instructor    string      `json:"Instructor,omitempty"`
	Description   string      `json:"Description,omitempty"`

	// CreditsDefaulted is set when the stored record had no usable Credits.
	CreditsDefaulted bool `json:"-"`
}

func (c Course) Ref() CourseRef {
	return CourseRef{Subject: c.Subject, CourseNumber: c.CourseNumber}
}

// MalformedPrerequisites returns the prerequisite entries that cannot match
// any course.
func (c Course) MalformedPrerequisites() []CourseRef {
	var malformed []CourseRef
	for _, prereq := range c.Prerequisites {
		if !prereq.Valid() {
			malformed = append(malformed, prereq)
		}
	}
	return malformed
}

func (c *Course) UnmarshalJSON(data []byte) error {
	type courseAlias Course
	aux := struct {
		*courseAlias
		CourseNumber json.RawMessage `json:"CourseNumber"`
		Credits      json.RawMessage `json:"Credits"`
	}{courseAlias: (*courseAlias)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Subject = strings.TrimSpace(c.Subject)
	c.CourseNumber = parsePositiveInt(aux.CourseNumber)
	c.Credits = parsePositiveInt(aux.Credits)
	c.CreditsDefaulted = false
	if c.Credits == 0 {
		c.Credits = DefaultCredits
		c.CreditsDefaulted = true
	}
	return nil
}

// StubCourse stands in for a referenced course that the catalog does not hold.
func StubCourse(ref CourseRef) Course {
	return Course{
		Subject:          ref.Subject,
		CourseNumber:     ref.CourseNumber,
		Credits:          DefaultCredits,
		CreditsDefaulted: true,
	}
}

// parsePositiveInt accepts a JSON number or a numeric string. Anything else,
// including zero and negative values, yields 0.
func parsePositiveInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0
	}
	switch v := value.(type) {
	case float64:
		if v > 0 && v == math.Trunc(v) && v <= math.MaxInt32 {
			return int(v)
		}
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func parseFloat(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return 0, false
	}
	switch v := value.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil {
			return f, true
		}
	}
	return 0, false
}
