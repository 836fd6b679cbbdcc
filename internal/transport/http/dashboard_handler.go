package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "fusiondash/internal/errors"
	"fusiondash/internal/exporter"
	appmw "fusiondash/internal/middleware"
	"fusiondash/internal/services"
	api "fusiondash/pkg/contracts/api/v1"
)

// exportBaseName is the download file name without extension.
const exportBaseName = "filtered_data"

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *appmw.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *appmw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/", h.GetDashboard)
		r.Get("/filters", h.GetFilters)
		r.Post("/refresh", h.Refresh)
	})

	// Downloads set their own content type
	r.Get("/export", h.Export)

	return r
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	var req api.DashboardRequest
	if err := h.validator.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(r.Context(), "fetching dashboard",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("region", req.Region),
		slog.String("bucket", req.Bucket),
		slog.String("connect", req.Connect))

	view, err := h.service.Dashboard(r.Context(), req.Selection(), services.Page{Offset: req.Offset, Limit: req.Limit})
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, h.service.DataFile()))
		return
	}

	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: view})
}

// GetFilters handles GET /api/dashboard/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.FilterOptions(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, h.service.DataFile()))
		return
	}

	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: opts})
}

// Refresh handles POST /api/dashboard/refresh
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "refresh requested",
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("remote_addr", appmw.GetRealIP(r)))

	result, err := h.service.Refresh(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, h.service.DataFile()))
		return
	}

	render.JSON(w, r, api.SuccessResponse{Status: "success", Data: result})
}

// Export handles GET /api/dashboard/export
func (h *DashboardHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req api.ExportRequest
	if err := h.validator.BindQuery(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	format, err := exporter.ParseFormat(req.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	// Nothing is written until the export succeeds
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), req.Selection(), format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, serviceError(err, h.service.DataFile()))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.FileName(exportBaseName)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export write failed", slog.String("error", err.Error()))
	}
}
