// Package cliview renders audit reports and plans for the terminal.
package cliview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

var (
	accent = lipgloss.Color("#8BC34A")
	warn   = lipgloss.Color("#E5A50A")
	muted  = lipgloss.Color("#8A93A3")

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headingStyle   = lipgloss.NewStyle().Bold(true)
	satisfiedStyle = lipgloss.NewStyle().Foreground(accent)
	pendingStyle   = lipgloss.NewStyle().Foreground(warn)
	mutedStyle     = lipgloss.NewStyle().Foreground(muted)
	boxStyle       = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1)
)

func RenderAudit(w io.Writer, report domain.AuditReport) error {
	var sections []string
	sections = append(sections, titleStyle.Render(fmt.Sprintf("Degree audit for student %d (%s)", report.StudentID, majorLabel(report.Major))))
	sections = append(sections, mutedStyle.Render(report.AuditDate.Format("2006-01-02 15:04 MST")))

	for _, result := range report.Results {
		status := satisfiedStyle.Render("[done]")
		if !result.IsSatisfied {
			status = pendingStyle.Render("[open]")
		}
		lines := []string{fmt.Sprintf("%s %s", status, headingStyle.Render(result.RequirementType)), "  " + result.Notes}
		for _, needed := range result.CoursesStillNeeded {
			lines = append(lines, "  - "+neededLabel(needed))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if len(report.Results) == 0 {
		sections = append(sections, mutedStyle.Render("No degree requirements on file."))
	}

	if len(report.EligibleNextCourses) > 0 {
		sections = append(sections, boxStyle.Render(
			headingStyle.Render("Eligible next")+"\n"+courseLines(report.EligibleNextCourses),
		))
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, sections...))
	return err
}

func RenderPlan(w io.Writer, plan []domain.SemesterPlan) error {
	if len(plan) == 0 {
		_, err := fmt.Fprintln(w, satisfiedStyle.Render("Nothing left to plan."))
		return err
	}

	boxes := make([]string, 0, len(plan))
	for _, semester := range plan {
		heading := headingStyle.Render(fmt.Sprintf("%s (%d credits)", semester.Semester, semester.TotalCredits))
		switch semester.Semester {
		case domain.UnscheduledSemester:
			heading = pendingStyle.Render(semester.Semester + ": prerequisites cannot be met")
		case domain.RemainingSemester:
			heading = pendingStyle.Render(semester.Semester + ": beyond the planned semesters")
		}
		boxes = append(boxes, boxStyle.Render(heading+"\n"+courseLines(semester.Courses)))
	}
	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, boxes...))
	return err
}

func courseLines(courses []domain.Course) string {
	lines := make([]string, 0, len(courses))
	for _, course := range courses {
		line := fmt.Sprintf("%-10s %dcr", course.Ref(), course.Credits)
		if course.Name != "" {
			line += "  " + course.Name
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func neededLabel(needed domain.NeededCourse) string {
	if needed.IsPlaceholder() {
		return needed.Description
	}
	return needed.Ref().String()
}

func majorLabel(major string) string {
	if major == "" {
		return "no major"
	}
	return major
}
