package domain

import (
	"encoding/json"
	"strings"
)

type RuleKind int

const (
	RuleKindUnknown RuleKind = iota
	RuleKindCourseList
	RuleKindCreditThreshold
)

func (k RuleKind) String() string {
	switch k {
	case RuleKindCourseList:
		return "course_list"
	case RuleKindCreditThreshold:
		return "credit_threshold"
	default:
		return "unknown"
	}
}

// RestrictedMinCourseNumber is the only restriction level currently
// understood: any restriction on a credit-threshold rule means 3000+.
const RestrictedMinCourseNumber = 3000

type CreditThreshold struct {
	MinCredits      int
	AllowedSubjects []string
	Restrictions    []string
}

func (t CreditThreshold) MinCourseNumber() int {
	if len(t.Restrictions) > 0 {
		return RestrictedMinCourseNumber
	}
	return 0
}

// Matches reports whether a course can count toward the threshold.
func (t CreditThreshold) Matches(ref CourseRef) bool {
	if !ref.Valid() {
		return false
	}
	if ref.CourseNumber < t.MinCourseNumber() {
		return false
	}
	for _, subject := range t.AllowedSubjects {
		if subject == ref.Subject {
			return true
		}
	}
	return false
}

type RequirementRule struct {
	MajorCode            string
	RequirementType      string
	Kind                 RuleKind
	Courses              []CourseRef
	Threshold            *CreditThreshold
	TotalCreditsRequired int
}

func NewCourseListRule(majorCode, requirementType string, courses ...CourseRef) RequirementRule {
	rule := RequirementRule{
		MajorCode:       majorCode,
		RequirementType: requirementType,
		Courses:         courses,
	}
	rule.Kind = classifyRule(rule)
	return rule
}

func NewCreditThresholdRule(majorCode, requirementType string, threshold CreditThreshold) RequirementRule {
	rule := RequirementRule{
		MajorCode:       majorCode,
		RequirementType: requirementType,
		Threshold:       &threshold,
	}
	rule.Kind = classifyRule(rule)
	return rule
}

// Clone returns a rule that shares no slices with r.
func (r RequirementRule) Clone() RequirementRule {
	out := r
	out.Courses = append([]CourseRef(nil), r.Courses...)
	if r.Threshold != nil {
		threshold := CreditThreshold{
			MinCredits:      r.Threshold.MinCredits,
			AllowedSubjects: append([]string(nil), r.Threshold.AllowedSubjects...),
			Restrictions:    append([]string(nil), r.Threshold.Restrictions...),
		}
		out.Threshold = &threshold
	}
	return out
}

// A non-empty course list wins over a credit threshold when a stored
// record carries both.
func classifyRule(rule RequirementRule) RuleKind {
	switch {
	case len(rule.Courses) > 0:
		return RuleKindCourseList
	case rule.Threshold != nil:
		return RuleKindCreditThreshold
	default:
		return RuleKindUnknown
	}
}

type ruleDocument struct {
	MajorCode            string          `json:"MajorCode"`
	RequirementType      string          `json:"RequirementType"`
	Courses              []CourseRef     `json:"Courses,omitempty"`
	MinCredits           json.RawMessage `json:"MinCredits,omitempty"`
	AllowedSubjects      []string        `json:"AllowedSubjects,omitempty"`
	Restrictions         []string        `json:"Restrictions,omitempty"`
	TotalCreditsRequired json.RawMessage `json:"TotalCreditsRequired,omitempty"`
}

func (r RequirementRule) MarshalJSON() ([]byte, error) {
	doc := ruleDocument{
		MajorCode:       r.MajorCode,
		RequirementType: r.RequirementType,
		Courses:         r.Courses,
	}
	if r.Threshold != nil {
		minCredits, err := json.Marshal(r.Threshold.MinCredits)
		if err != nil {
			return nil, err
		}
		doc.MinCredits = minCredits
		doc.AllowedSubjects = r.Threshold.AllowedSubjects
		doc.Restrictions = r.Threshold.Restrictions
	}
	if r.TotalCreditsRequired > 0 {
		total, err := json.Marshal(r.TotalCreditsRequired)
		if err != nil {
			return nil, err
		}
		doc.TotalCreditsRequired = total
	}
	return json.Marshal(doc)
}

func (r *RequirementRule) UnmarshalJSON(data []byte) error {
	var doc ruleDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	*r = RequirementRule{
		MajorCode:            strings.TrimSpace(doc.MajorCode),
		RequirementType:      strings.TrimSpace(doc.RequirementType),
		Courses:              doc.Courses,
		TotalCreditsRequired: parsePositiveInt(doc.TotalCreditsRequired),
	}
	if len(doc.MinCredits) > 0 && string(doc.MinCredits) != "null" {
		r.Threshold = &CreditThreshold{
			MinCredits:      parsePositiveInt(doc.MinCredits),
			AllowedSubjects: doc.AllowedSubjects,
			Restrictions:    doc.Restrictions,
		}
	}
	r.Kind = classifyRule(*r)
	return nil
}
