package http

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "tablecli/internal/errors"
	"tablecli/internal/exporter"
	"tablecli/internal/services"
	"tablecli/pkg/contracts/domain"
)

// DatasetServiceInterface defines the service operations the handler
// depends on
type DatasetServiceInterface interface {
	Load(ctx context.Context, src domain.Source) error
	Describe(ctx context.Context) *domain.TableSummary
	Clean(ctx context.Context, strategy domain.CleanStrategy) error
	Select(ctx context.Context, columns []string) error
	Save(ctx context.Context, dest domain.Destination) error
	RenderCharts(ctx context.Context, path string) error
	Status() services.Status
}

// DatasetHandler exposes the table pipeline over HTTP
type DatasetHandler struct {
	service  DatasetServiceInterface
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(service DatasetServiceInterface, logger *slog.Logger) *DatasetHandler {
	return &DatasetHandler{
		service:  service,
		logger:   logger.With(slog.String("component", "dataset_handler")),
		validate: validator.New(),
	}
}

// Routes returns the dataset routes
func (h *DatasetHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/load", h.Load)
	r.Get("/summary", h.Summary)
	r.Post("/clean", h.Clean)
	r.Post("/select", h.Select)
	r.Post("/export", h.Export)
	r.Post("/charts", h.Charts)
	r.Get("/status", h.Status)

	return r
}

// LoadRequest describes the load endpoint payload
type LoadRequest struct {
	Path   string `json:"path" validate:"required"`
	Format string `json:"format" validate:"required,oneof=csv xlsx spreadsheet excel"`
}

// CleanRequest describes the clean endpoint payload
type CleanRequest struct {
	Strategy string `json:"strategy" validate:"required"`
}

// SelectRequest describes the select endpoint payload
type SelectRequest struct {
	Columns []string `json:"columns" validate:"required,min=1,dive,required"`
}

// ExportRequest describes the export endpoint payload
type ExportRequest struct {
	Path      string `json:"path" validate:"required"`
	Format    string `json:"format" validate:"required,oneof=csv xlsx spreadsheet excel"`
	Overwrite bool   `json:"overwrite"`
	Append    bool   `json:"append"`
}

// ChartsRequest describes the charts endpoint payload
type ChartsRequest struct {
	Path string `json:"path" validate:"required"`
}

// OperationResponse is the generic success envelope
type OperationResponse struct {
	Success bool            `json:"success"`
	Status  services.Status `json:"status"`
}

// Load handles POST /load
func (h *DatasetHandler) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.service.Load(r.Context(), domain.Source{Path: req.Path, Format: format}); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, OperationResponse{Success: true, Status: h.service.Status()})
}

// Summary handles GET /summary
func (h *DatasetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary := h.service.Describe(r.Context())
	if summary == nil {
		apierrors.WriteError(w, apierrors.ErrDatasetNotFound)
		return
	}
	render.JSON(w, r, summary)
}

// Clean handles POST /clean
func (h *DatasetHandler) Clean(w http.ResponseWriter, r *http.Request) {
	var req CleanRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.service.Status().Loaded {
		apierrors.WriteError(w, apierrors.ErrDatasetNotFound)
		return
	}

	if err := h.service.Clean(r.Context(), domain.CleanStrategy(req.Strategy)); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, OperationResponse{Success: true, Status: h.service.Status()})
}

// Select handles POST /select
func (h *DatasetHandler) Select(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.service.Status().Loaded {
		apierrors.WriteError(w, apierrors.ErrDatasetNotFound)
		return
	}

	if err := h.service.Select(r.Context(), req.Columns); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, OperationResponse{Success: true, Status: h.service.Status()})
}

// Export handles POST /export
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.service.Status().Loaded {
		apierrors.WriteError(w, apierrors.ErrDatasetNotFound)
		return
	}

	format, err := domain.ParseFormat(req.Format)
	if err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return
	}

	dest := domain.Destination{
		Path:      req.Path,
		Format:    format,
		Overwrite: req.Overwrite,
		Append:    req.Append,
	}
	if err := h.service.Save(r.Context(), dest); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, OperationResponse{Success: true, Status: h.service.Status()})
}

// Charts handles POST /charts
func (h *DatasetHandler) Charts(w http.ResponseWriter, r *http.Request) {
	var req ChartsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}
	if !h.service.Status().Loaded {
		apierrors.WriteError(w, apierrors.ErrDatasetNotFound)
		return
	}

	if err := h.service.RenderCharts(r.Context(), req.Path); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	render.JSON(w, r, OperationResponse{Success: true, Status: h.service.Status()})
}

// Status handles GET /status
func (h *DatasetHandler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Status())
}

// decodeAndValidate decodes the JSON body into v and validates it,
// writing the error response itself on failure
func (h *DatasetHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			apierrors.WriteError(w, apierrors.ErrValidation(first.Field(), first.Tag()))
			return false
		}
		apierrors.WriteError(w, apierrors.InvalidRequestWithError(err))
		return false
	}
	return true
}

// writeServiceError maps service errors to HTTP responses
func (h *DatasetHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "operation failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))

	// A refused overwrite is a conflict, not a server fault
	if stderrors.Is(err, exporter.ErrDestinationExists) {
		apierrors.WriteError(w, apierrors.ErrConflict)
		return
	}

	var appErr *apierrors.AppError
	if stderrors.As(err, &appErr) {
		apierrors.WriteError(w, apierrors.FromAppError(appErr))
		return
	}

	apierrors.WriteError(w, apierrors.ErrInternalServer)
}
