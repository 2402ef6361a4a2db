package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/service"
)

type CourseHandler struct {
	service *service.CatalogService
	logger  *zap.Logger
}

func NewCourseHandler(svc *service.CatalogService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{service: svc, logger: logger}
}

func (h *CourseHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/courses", h.handleList)
	mux.HandleFunc("POST /api/courses", h.handleUpsert)
	mux.HandleFunc("POST /api/courses/batch", h.handleBatch)
	mux.HandleFunc("GET /api/courses/{subject}/{courseNumber}", h.handleGet)
	mux.HandleFunc("DELETE /api/courses/{subject}/{courseNumber}", h.handleDelete)
}

func (h *CourseHandler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := service.CourseFilter{
		Subject:      q.Get("subject"),
		CourseNumber: q.Get("courseNumber"),
		Title:        q.Get("title"),
		Credits:      q.Get("credits"),
		Days:         q.Get("days"),
		StartTime:    q.Get("startTime"),
		EndTime:      q.Get("endTime"),
		Instructor:   q.Get("instructor"),
	}

	courses, err := h.service.ListCourses(r.Context(), filter)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (h *CourseHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	course, err := h.service.GetCourse(r.Context(), r.PathValue("subject"), r.PathValue("courseNumber"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, course)
}

func (h *CourseHandler) handleUpsert(w http.ResponseWriter, r *http.Request) {
	var course domain.Course
	if err := decodeJSON(r, &course, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	saved, err := h.service.UpsertCourse(r.Context(), course)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

type batchResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

func (h *CourseHandler) handleBatch(w http.ResponseWriter, r *http.Request) {
	var courses []domain.Course
	if err := decodeJSON(r, &courses, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	count, err := h.service.UpsertCourses(r.Context(), courses)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, batchResponse{Message: "Courses saved", Count: count})
}

func (h *CourseHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCourse(r.Context(), r.PathValue("subject"), r.PathValue("courseNumber")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
