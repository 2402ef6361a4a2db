package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/service"
)

// AdminHandler serves the developer tools: raw table browsing and demo data
// seeding.
type AdminHandler struct {
	service *service.DevToolsService
	logger  *zap.Logger
}

func NewAdminHandler(svc *service.DevToolsService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dev/table/{tableName}", h.handleTable)
	mux.HandleFunc("POST /api/dev/generate-mass-data", h.handleGenerateMassData)
}

func (h *AdminHandler) handleTable(w http.ResponseWriter, r *http.Request) {
	contents, err := h.service.TableContents(r.Context(), r.PathValue("tableName"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contents)
}

type massDataResponse struct {
	Message string `json:"message"`
	service.MassDataResult
}

func (h *AdminHandler) handleGenerateMassData(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.GenerateMassData(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, massDataResponse{Message: result.Message(), MassDataResult: result})
}
