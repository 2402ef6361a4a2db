package handlers

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/service"
)

type StudentHandler struct {
	service *service.StudentsService
	logger  *zap.Logger
}

func NewStudentHandler(svc *service.StudentsService, logger *zap.Logger) *StudentHandler {
	return &StudentHandler{service: svc, logger: logger}
}

func (h *StudentHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/students", h.handleList)
	mux.HandleFunc("POST /api/students", h.handleSave)
	mux.HandleFunc("GET /api/students/{studentId}", h.handleGet)
	mux.HandleFunc("POST /api/students/{studentId}/overrides", h.handleAddOverride)
	mux.HandleFunc("DELETE /api/students/{studentId}/overrides/{index}", h.handleRemoveOverride)
	mux.HandleFunc("POST /api/students/{studentId}/completed-courses", h.handleAddCompleted)
	mux.HandleFunc("DELETE /api/students/{studentId}/completed-courses/{index}", h.handleRemoveCompleted)
}

func (h *StudentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	students, err := h.service.ListStudents(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *StudentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	student, err := h.service.GetStudent(r.Context(), r.PathValue("studentId"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

func (h *StudentHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var student domain.Student
	if err := decodeJSON(r, &student, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	saved, err := h.service.SaveStudent(r.Context(), student)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *StudentHandler) handleAddOverride(w http.ResponseWriter, r *http.Request) {
	var override domain.Override
	if err := decodeJSON(r, &override, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	student, err := h.service.AddOverride(r.Context(), r.PathValue("studentId"), override)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) handleRemoveOverride(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	student, err := h.service.RemoveOverride(r.Context(), r.PathValue("studentId"), index)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}

type completedCourseRequest struct {
	Subject      string   `json:"Subject"`
	CourseNumber int      `json:"CourseNumber"`
	Grade        *float64 `json:"Grade"`
	Credits      int      `json:"Credits"`
	Semester     string   `json:"Semester"`
}

func (h *StudentHandler) handleAddCompleted(w http.ResponseWriter, r *http.Request) {
	var req completedCourseRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	if req.Grade == nil {
		writeServiceError(w, h.logger, fmt.Errorf("%w: Subject, CourseNumber and Grade are required", service.ErrInvalidInput))
		return
	}

	student, err := h.service.AddCompletedCourse(r.Context(), r.PathValue("studentId"), domain.CompletedCourse{
		Subject:      req.Subject,
		CourseNumber: req.CourseNumber,
		Grade:        *req.Grade,
		Credits:      req.Credits,
		Semester:     req.Semester,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) handleRemoveCompleted(w http.ResponseWriter, r *http.Request) {
	index, err := pathIndex(r, "index")
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	student, err := h.service.RemoveCompletedCourse(r.Context(), r.PathValue("studentId"), index)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, student)
}
