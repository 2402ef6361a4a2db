package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/degree"
	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/service"
)

// DegreeHandler serves audits and plan generation.
type DegreeHandler struct {
	audit   *service.AuditService
	planner *service.PlannerService
	logger  *zap.Logger
}

func NewDegreeHandler(audit *service.AuditService, planner *service.PlannerService, logger *zap.Logger) *DegreeHandler {
	return &DegreeHandler{audit: audit, planner: planner, logger: logger}
}

func (h *DegreeHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/audit/{studentId}", h.handleAudit)
	mux.HandleFunc("POST /api/planner/generate/{studentId}", h.handleGeneratePlan)
	mux.HandleFunc("POST /api/planner/next/{studentId}", h.handleNextSemester)
}

func (h *DegreeHandler) handleAudit(w http.ResponseWriter, r *http.Request) {
	report, err := h.audit.RunAudit(r.Context(), r.PathValue("studentId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type generatePlanRequest struct {
	PinnedCourses []domain.CourseRef `json:"pinnedCourses"`
	NumSemesters  int                `json:"numSemesters"`
}

func (h *DegreeHandler) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	var req generatePlanRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	plan, err := h.planner.GenerateDegreePlan(r.Context(), r.PathValue("studentId"), req.PinnedCourses, req.NumSemesters)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if plan == nil {
		plan = []domain.SemesterPlan{}
	}
	writeJSON(w, http.StatusOK, plan)
}

type nextSemesterRequest struct {
	PinnedCourses            []domain.CourseRef `json:"pinnedCourses"`
	PreviouslyPlannedCourses []domain.CourseRef `json:"previouslyPlannedCourses"`
}

// handleNextSemester answers null when nothing is left to plan and an empty
// semester when work remains but nothing can be placed.
func (h *DegreeHandler) handleNextSemester(w http.ResponseWriter, r *http.Request) {
	var req nextSemesterRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	outcome, err := h.planner.GenerateNextSemesterPlan(r.Context(), r.PathValue("studentId"), req.PinnedCourses, req.PreviouslyPlannedCourses)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	if outcome.Kind == degree.OutcomeComplete {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	semester := outcome.Semester
	if semester.Semester == "" {
		semester.Semester = service.NextSemesterLabel
	}
	if semester.Courses == nil {
		semester.Courses = []domain.Course{}
	}
	writeJSON(w, http.StatusOK, semester)
}
