package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quercia-ai/docpilot/internal/domain"
	"github.com/quercia-ai/docpilot/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Ingest(ctx context.Context, tenantID, filename string, content []byte) (service.IngestResult, error) {
	args := m.Called(ctx, tenantID, filename, content)
	return args.Get(0).(service.IngestResult), args.Error(1)
}

func (m *MockDocumentService) DeleteFile(ctx context.Context, tenantID, fileID string) (int, error) {
	args := m.Called(ctx, tenantID, fileID)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentService) DeleteFilename(ctx context.Context, tenantID, filename string) (int, error) {
	args := m.Called(ctx, tenantID, filename)
	return args.Int(0), args.Error(1)
}

func (m *MockDocumentService) ListFiles(ctx context.Context, tenantID string) ([]domain.FileRecord, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FileRecord), args.Error(1)
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUpload_Success(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Ingest", mock.Anything, "acme", "manual.txt", []byte("hello docs")).Return(service.IngestResult{
		FileID:     "f-1",
		Filename:   "manual.txt",
		FileType:   domain.FileTypeTXT,
		ChunkCount: 1,
	}, nil)

	body, contentType := multipartUpload(t, "file", "manual.txt", []byte("hello docs"))
	req := withTenant(httptest.NewRequest(http.MethodPost, "/documents", body), "acme")
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	NewFilesHandler(svc).Upload(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data service.IngestResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "f-1", resp.Data.FileID)
	assert.Equal(t, 1, resp.Data.ChunkCount)
	svc.AssertExpectations(t)
}

func TestUpload_PathStrippedFromFilename(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Ingest", mock.Anything, "acme", "manual.txt", mock.Anything).Return(service.IngestResult{
		FileID: "f-1", Filename: "manual.txt", FileType: domain.FileTypeTXT, ChunkCount: 1,
	}, nil)

	body, contentType := multipartUpload(t, "file", "../../etc/manual.txt", []byte("content"))
	req := withTenant(httptest.NewRequest(http.MethodPost, "/documents", body), "acme")
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	NewFilesHandler(svc).Upload(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestUpload_MissingFileField(t *testing.T) {
	svc := new(MockDocumentService)

	body, contentType := multipartUpload(t, "attachment", "manual.txt", []byte("content"))
	req := withTenant(httptest.NewRequest(http.MethodPost, "/documents", body), "acme")
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	NewFilesHandler(svc).Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Ingest", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpload_UnsupportedType(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Ingest", mock.Anything, "acme", "photo.png", mock.Anything).
		Return(service.IngestResult{}, domain.ErrUnsupportedFileType)

	body, contentType := multipartUpload(t, "file", "photo.png", []byte("binary"))
	req := withTenant(httptest.NewRequest(http.MethodPost, "/documents", body), "acme")
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	NewFilesHandler(svc).Upload(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestList_Success(t *testing.T) {
	svc := new(MockDocumentService)
	uploaded := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	svc.On("ListFiles", mock.Anything, "acme").Return([]domain.FileRecord{
		{FileID: "f-2", Filename: "warranty.txt", FileType: domain.FileTypeTXT, UploadedAt: uploaded, ChunkCount: 3},
		{FileID: "f-1", Filename: "manual.pdf", FileType: domain.FileTypePDF, UploadedAt: uploaded.Add(-time.Hour), ChunkCount: 12},
	}, nil)

	req := withTenant(httptest.NewRequest(http.MethodGet, "/documents", nil), "acme")
	w := httptest.NewRecorder()

	NewFilesHandler(svc).List(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []FileResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "f-2", resp.Data[0].FileID)
	assert.Equal(t, "2026-02-10T09:30:00Z", resp.Data[0].UploadedAt)
	assert.Equal(t, "pdf", resp.Data[1].FileType)
}

func TestList_EmptyTenant(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("ListFiles", mock.Anything, "acme").Return([]domain.FileRecord{}, nil)

	req := withTenant(httptest.NewRequest(http.MethodGet, "/documents", nil), "acme")
	w := httptest.NewRecorder()

	NewFilesHandler(svc).List(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestDelete_Success(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("DeleteFile", mock.Anything, "acme", "f-1").Return(12, nil)

	req := withTenant(httptest.NewRequest(http.MethodDelete, "/documents/f-1", nil), "acme")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("fileID", "f-1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	NewFilesHandler(svc).Delete(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed_chunks":12`)
}

func TestDelete_UnknownFile(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("DeleteFile", mock.Anything, "acme", "missing").Return(0, domain.ErrFileNotFound)

	req := withTenant(httptest.NewRequest(http.MethodDelete, "/documents/missing", nil), "acme")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("fileID", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	NewFilesHandler(svc).Delete(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteByName_Success(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("DeleteFilename", mock.Anything, "acme", "manual.pdf").Return(24, nil)

	req := withTenant(httptest.NewRequest(http.MethodDelete, "/documents?filename=manual.pdf", nil), "acme")
	w := httptest.NewRecorder()

	NewFilesHandler(svc).DeleteByName(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed_chunks":24`)
}

func TestDeleteByName_MissingParam(t *testing.T) {
	svc := new(MockDocumentService)

	req := withTenant(httptest.NewRequest(http.MethodDelete, "/documents", nil), "acme")
	w := httptest.NewRecorder()

	NewFilesHandler(svc).DeleteByName(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "DeleteFilename", mock.Anything, mock.Anything, mock.Anything)
}
