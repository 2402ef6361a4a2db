// Package catalogimport reads course catalogs published as HTML pages.
//
// Each course is a ".course" block:
//
//	<div class="course">
//	  <h3 class="course-title">CIS 3123 - Intermediate Database Analysis</h3>
//	  <span class="course-credits">3 credits</span>
//	  <span class="course-schedule" data-days="TR" data-start="09:30" data-end="10:45"></span>
//	  <span class="course-instructor">Dr. Lane</span>
//	  <p class="course-prereqs">Prerequisite: CIS 2103 and MATH 1513</p>
//	  <p class="course-description">...</p>
//	</div>
package catalogimport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
)

type Result struct {
	Courses []domain.Course
	// Skipped counts course blocks without a usable title.
	Skipped int
}

var (
	titlePattern  = regexp.MustCompile(`^([A-Za-z]{2,6})\s*(\d{3,5})\s*[-–:]\s*(.+)$`)
	refPattern    = regexp.MustCompile(`\b([A-Z]{2,6})\s+(\d{3,5})\b`)
	creditPattern = regexp.MustCompile(`\d+`)
)

// Parse extracts every course block from an HTML catalog page. Prerequisite
// text is scanned for "SUBJ NNNN" references, all of which are required.
func Parse(r io.Reader) (Result, error) {
	document, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("parse catalog html: %w", err)
	}

	var result Result
	seen := make(map[domain.CourseRef]int)
	document.Find(".course").Each(func(_ int, block *goquery.Selection) {
		course, ok := parseCourse(block)
		if !ok {
			result.Skipped++
			return
		}
		// A later listing of the same course replaces the earlier one.
		if i, dup := seen[course.Ref()]; dup {
			result.Courses[i] = course
			return
		}
		seen[course.Ref()] = len(result.Courses)
		result.Courses = append(result.Courses, course)
	})
	return result, nil
}

// Fetch downloads url and parses it.
func Fetch(ctx context.Context, client *http.Client, url string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{}, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetch catalog: unexpected status %s", resp.Status)
	}
	return Parse(resp.Body)
}

func parseCourse(block *goquery.Selection) (domain.Course, bool) {
	match := titlePattern.FindStringSubmatch(cleanText(block.Find(".course-title").First().Text()))
	if match == nil {
		return domain.Course{}, false
	}
	number, err := strconv.Atoi(match[2])
	if err != nil || number <= 0 {
		return domain.Course{}, false
	}

	course := domain.Course{
		Subject:       strings.ToUpper(match[1]),
		CourseNumber:  number,
		Name:          strings.TrimSpace(match[3]),
		Credits:       parseCredits(block.Find(".course-credits").First().Text()),
		Prerequisites: parsePrerequisites(block.Find(".course-prereqs").First().Text()),
		Instructor:    cleanText(block.Find(".course-instructor").First().Text()),
		Description:   cleanText(block.Find(".course-description").First().Text()),
	}
	if course.Credits == 0 {
		course.Credits = domain.DefaultCredits
		course.CreditsDefaulted = true
	}

	schedule := block.Find(".course-schedule").First()
	if schedule.Length() > 0 {
		days, _ := schedule.Attr("data-days")
		start, _ := schedule.Attr("data-start")
		end, _ := schedule.Attr("data-end")
		if days != "" || start != "" || end != "" {
			course.Schedule = &domain.Schedule{Days: days, StartTime: start, EndTime: end}
		}
	}
	return course, true
}

func parseCredits(text string) int {
	credits, err := strconv.Atoi(creditPattern.FindString(text))
	if err != nil || credits <= 0 {
		return 0
	}
	return credits
}

func parsePrerequisites(text string) []domain.CourseRef {
	var refs []domain.CourseRef
	seen := make(map[domain.CourseRef]struct{})
	for _, match := range refPattern.FindAllStringSubmatch(text, -1) {
		number, err := strconv.Atoi(match[2])
		if err != nil {
			continue
		}
		ref := domain.CourseRef{Subject: match[1], CourseNumber: number}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		refs = append(refs, ref)
	}
	return refs
}

func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
