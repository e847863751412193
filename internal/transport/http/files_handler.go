package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "tablecli/internal/errors"
	"tablecli/internal/files"
)

// FilesHandler exposes data-file discovery over HTTP
type FilesHandler struct {
	discovery *files.Discovery
	logger    *slog.Logger
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(discovery *files.Discovery, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		discovery: discovery,
		logger:    logger.With(slog.String("component", "files_handler")),
	}
}

// Routes returns the file discovery routes
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/inputs", h.ListInputs)
	r.Get("/outputs", h.ListOutputs)
	return r
}

// FileListResponse wraps a discovered file list
type FileListResponse struct {
	Files []files.FileInfo `json:"files"`
	Count int              `json:"count"`
}

// ListInputs handles GET /inputs
func (h *FilesHandler) ListInputs(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.discovery.ListInputs)
}

// ListOutputs handles GET /outputs
func (h *FilesHandler) ListOutputs(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.discovery.ListOutputs)
}

func (h *FilesHandler) list(w http.ResponseWriter, r *http.Request, fn func() ([]files.FileInfo, error)) {
	found, err := fn()
	if err != nil {
		h.logger.ErrorContext(r.Context(), "file discovery failed",
			slog.String("error", err.Error()))
		apierrors.WriteError(w, apierrors.FileSystemError("list", err))
		return
	}
	if found == nil {
		found = []files.FileInfo{}
	}
	render.JSON(w, r, FileListResponse{Files: found, Count: len(found)})
}
