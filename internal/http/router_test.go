package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/app"
	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/storetest"
)

func newServer(t *testing.T) http.Handler {
	t.Helper()
	db, settings := storetest.Open(t)
	return app.New(db, app.Options{Store: settings}, zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzSetsRequestID(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
	assert.NoError(t, err)

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", id)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get("X-Request-ID"))
}

func TestAuditErrors(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodGet, "/api/audit/42", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "Not found", body.Message)
	assert.Contains(t, body.Error, "student 42")

	rec = do(t, h, http.MethodGet, "/api/audit/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSeedThenAudit(t *testing.T) {
	h := newServer(t)

	rec := do(t, h, http.MethodPost, "/api/dev/generate-mass-data", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	var seeded struct {
		Message string `json:"message"`
		Courses int    `json:"courses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &seeded))
	assert.Positive(t, seeded.Courses)
	assert.Contains(t, seeded.Message, "Successfully seeded")

	rec = do(t, h, http.MethodGet, "/api/audit/1001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var report domain.AuditReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 1001, report.StudentID)
	assert.Equal(t, "CIS", report.Major)
	assert.NotEmpty(t, report.Results)

	rec = do(t, h, http.MethodGet, "/api/dev/table/student_database", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/dev/table/secrets", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/courses?subject=cis&courseNumber=1613", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var courses []domain.Course
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "Computer Information Systems I", courses[0].Name)
}

func TestRuleLifecycle(t *testing.T) {
	h := newServer(t)

	rule := `{"MajorCode":"cs","RequirementType":"CORE","Courses":[{"Subject":"CS","CourseNumber":101}]}`
	rec := do(t, h, http.MethodPost, "/api/rules", rule)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/rules/CS", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var rules []domain.RequirementRule
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, domain.RuleKindCourseList, rules[0].Kind)

	rec = do(t, h, http.MethodGet, "/api/rules/majors/all", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["CS"]`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/api/rules/CS/CORE", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/rules/CS", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func seedPlanningData(t *testing.T, h http.Handler) {
	t.Helper()
	courses := `[
		{"Subject":"CS","CourseNumber":101,"Name":"Intro","Credits":3},
		{"Subject":"CS","CourseNumber":201,"Name":"Data Structures","Credits":3,"Prerequisites":[{"Subject":"CS","CourseNumber":101}]}
	]`
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/courses/batch", courses).Code)
	rule := `{"MajorCode":"CS","RequirementType":"CORE","Courses":[{"Subject":"CS","CourseNumber":101},{"Subject":"CS","CourseNumber":201}]}`
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rules", rule).Code)
	student := `{"StudentId":1,"FirstName":"Ada","LastName":"Byron","Major":["CS"],"CompletedCourses":[]}`
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/students", student).Code)
}

func TestPlannerEndpoints(t *testing.T) {
	h := newServer(t)
	seedPlanningData(t, h)

	rec := do(t, h, http.MethodPost, "/api/planner/generate/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var plan []domain.SemesterPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	require.Len(t, plan, 2)
	assert.Equal(t, "Semester 1", plan[0].Semester)

	rec = do(t, h, http.MethodPost, "/api/planner/next/1", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var semester domain.SemesterPlan
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &semester))
	assert.Equal(t, "Next Semester", semester.Semester)
	assert.Equal(t, 3, semester.TotalCredits)

	done := `{"previouslyPlannedCourses":[{"Subject":"CS","CourseNumber":101},{"Subject":"CS","CourseNumber":201}]}`
	rec = do(t, h, http.MethodPost, "/api/planner/next/1", done)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	pin := `{"pinnedCourses":[{"Subject":"CS","CourseNumber":201}]}`
	rec = do(t, h, http.MethodPost, "/api/planner/next/1", pin)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, "prerequisites not met")

	rec = do(t, h, http.MethodPost, "/api/planner/generate/1", `{"numSemesters":2,"extra":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlannerNextStalled(t *testing.T) {
	h := newServer(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/courses",
		`{"Subject":"CS","CourseNumber":301,"Credits":3,"Prerequisites":[{"Subject":"CS","CourseNumber":201}]}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/rules",
		`{"MajorCode":"CS","RequirementType":"CORE","Courses":[{"Subject":"CS","CourseNumber":301}]}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/students",
		`{"StudentId":2,"Major":["CS"],"CompletedCourses":[]}`).Code)

	rec := do(t, h, http.MethodPost, "/api/planner/next/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"semester":"Next Semester","courses":[],"totalCredits":0}`, rec.Body.String())
}

func TestStudentEndpoints(t *testing.T) {
	h := newServer(t)
	seedPlanningData(t, h)

	rec := do(t, h, http.MethodPost, "/api/students/1/completed-courses", `{"Subject":"CS","CourseNumber":101}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/students/1/completed-courses", `{"Subject":"CS","CourseNumber":101,"Grade":3.5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/students/1/completed-courses", `{"Subject":"CS","CourseNumber":101,"Grade":4}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/students/1/completed-courses/5", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, h, http.MethodDelete, "/api/students/1/completed-courses/first", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	override := `{"SubThis":{"Subject":"CS","CourseNumber":201},"SubFor":[{"Subject":"CS","CourseNumber":210}],"ApprovedBy":"Dean"}`
	rec = do(t, h, http.MethodPost, "/api/students/1/overrides", override)
	require.Equal(t, http.StatusCreated, rec.Code)
	var student domain.Student
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &student))
	require.Len(t, student.Overrides, 1)

	rec = do(t, h, http.MethodDelete, "/api/students/1/overrides/0", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/students", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"StudentId":1,"FirstName":"Ada","LastName":"Byron"}]`, rec.Body.String())
}
