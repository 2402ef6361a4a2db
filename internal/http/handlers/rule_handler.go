package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/domain"
	"github.com/simon-dunk/Degree-Compass/internal/service"
)

type RuleHandler struct {
	service *service.RulesService
	logger  *zap.Logger
}

func NewRuleHandler(svc *service.RulesService, logger *zap.Logger) *RuleHandler {
	return &RuleHandler{service: svc, logger: logger}
}

func (h *RuleHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/rules/majors/all", h.handleMajors)
	mux.HandleFunc("GET /api/rules/{majorCode}", h.handleByMajor)
	mux.HandleFunc("POST /api/rules", h.handleSave)
	mux.HandleFunc("DELETE /api/rules/{majorCode}/{requirementType}", h.handleDelete)
}

func (h *RuleHandler) handleMajors(w http.ResponseWriter, r *http.Request) {
	majors, err := h.service.ListMajors(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, majors)
}

func (h *RuleHandler) handleByMajor(w http.ResponseWriter, r *http.Request) {
	rules, err := h.service.GetRulesByMajor(r.Context(), r.PathValue("majorCode"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

func (h *RuleHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	var rule domain.RequirementRule
	if err := decodeJSON(r, &rule, false); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	saved, err := h.service.SaveRule(r.Context(), rule)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *RuleHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteRule(r.Context(), r.PathValue("majorCode"), r.PathValue("requirementType")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
