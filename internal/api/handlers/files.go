package handlers

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/quercia-ai/docpilot/internal/api"
	"github.com/quercia-ai/docpilot/internal/api/middleware"
	"github.com/quercia-ai/docpilot/internal/domain"
	"github.com/quercia-ai/docpilot/internal/service"
)

// maxUploadMemory bounds the multipart parser's in-memory buffer; larger
// parts spill to temp files.
const maxUploadMemory = 16 << 20

type DocumentService interface {
	Ingest(ctx context.Context, tenantID, filename string, content []byte) (service.IngestResult, error)
	DeleteFile(ctx context.Context, tenantID, fileID string) (int, error)
	DeleteFilename(ctx context.Context, tenantID, filename string) (int, error)
	ListFiles(ctx context.Context, tenantID string) ([]domain.FileRecord, error)
}

type FilesHandler struct {
	svc DocumentService
}

func NewFilesHandler(svc DocumentService) *FilesHandler {
	return &FilesHandler{svc: svc}
}

type FileResponse struct {
	FileID     string `json:"file_id"`
	Filename   string `json:"filename"`
	FileType   string `json:"file_type"`
	UploadedAt string `json:"uploaded_at"`
	ChunkCount int    `json:"chunk_count"`
}

type DeleteResponse struct {
	RemovedChunks int `json:"removed_chunks"`
}

// Upload ingests one multipart document under the "file" form field.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.Error(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	filename := filepath.Base(header.Filename)
	if filename == "" || filename == "." {
		api.Error(w, http.StatusBadRequest, "filename is required")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		api.Error(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	result, err := h.svc.Ingest(r.Context(), tenantID, filename, content)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusCreated, result)
}

// List returns the tenant's indexed files, newest upload first.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	records, err := h.svc.ListFiles(r.Context(), tenantID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	files := make([]FileResponse, 0, len(records))
	for _, rec := range records {
		files = append(files, FileResponse{
			FileID:     rec.FileID,
			Filename:   rec.Filename,
			FileType:   string(rec.FileType),
			UploadedAt: rec.UploadedAt.UTC().Format("2006-01-02T15:04:05Z"),
			ChunkCount: rec.ChunkCount,
		})
	}

	api.Success(w, http.StatusOK, files)
}

// Delete removes one file by its ID.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fileID := chi.URLParam(r, "fileID")
	if fileID == "" {
		api.Error(w, http.StatusBadRequest, "file id is required")
		return
	}

	removed, err := h.svc.DeleteFile(r.Context(), tenantID, fileID)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteResponse{RemovedChunks: removed})
}

// DeleteByName removes every indexed version of a filename. The name comes
// from the "filename" query parameter.
func (h *FilesHandler) DeleteByName(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	if tenantID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	filename := r.URL.Query().Get("filename")
	if filename == "" {
		api.Error(w, http.StatusBadRequest, "filename query parameter is required")
		return
	}

	removed, err := h.svc.DeleteFilename(r.Context(), tenantID, filename)
	if err != nil {
		api.HandleError(w, r, err)
		return
	}

	api.Success(w, http.StatusOK, DeleteResponse{RemovedChunks: removed})
}
