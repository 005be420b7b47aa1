package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quercia-ai/docpilot/internal/api/handlers"
	"github.com/quercia-ai/docpilot/internal/domain"
	"github.com/quercia-ai/docpilot/internal/service"
)

type MockAskService struct {
	mock.Mock
}

func (m *MockAskService) Answer(ctx context.Context, tenantID, question string) (domain.Answer, error) {
	args := m.Called(ctx, tenantID, question)
	return args.Get(0).(domain.Answer), args.Error(1)
}

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

func newTestRouter(ask *MockAskService, docs *MockDocumentService) http.Handler {
	return NewRouter(RouterConfig{
		AskHandler:   handlers.NewAskHandler(ask),
		FilesHandler: handlers.NewFilesHandler(docs),
	})
}

func TestRouterHealthIsPublic(t *testing.T) {
	router := newTestRouter(new(MockAskService), new(MockDocumentService))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestRouterAskRequiresTenant(t *testing.T) {
	ask := new(MockAskService)
	router := newTestRouter(ask, new(MockDocumentService))

	body, _ := json.Marshal(handlers.AskRequest{Question: "anything"})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	ask.AssertNotCalled(t, "Answer", mock.Anything, mock.Anything, mock.Anything)
}

func TestRouterAskEndToEnd(t *testing.T) {
	ask := new(MockAskService)
	ask.On("Answer", mock.Anything, "acme", "How do I reset?").Return(domain.Answer{
		Text:    "Hold the reset button for ten seconds.",
		Sources: []string{"manual.pdf (f-1)"},
		Origin:  domain.OriginDocuments,
	}, nil)
	router := newTestRouter(ask, new(MockDocumentService))

	body, _ := json.Marshal(handlers.AskRequest{Question: "How do I reset?"})
	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	req.Header.Set("X-Tenant-ID", "acme")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Hold the reset button")
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	ask.AssertExpectations(t)
}

func TestRouterDeleteByFileID(t *testing.T) {
	docs := new(MockDocumentService)
	docs.On("DeleteFile", mock.Anything, "acme", "f-1").Return(5, nil)
	router := newTestRouter(new(MockAskService), docs)

	req := httptest.NewRequest(http.MethodDelete, "/documents/f-1", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed_chunks":5`)
}

func TestRouterDeleteByFilename(t *testing.T) {
	docs := new(MockDocumentService)
	docs.On("DeleteFilename", mock.Anything, "acme", "manual.pdf").Return(9, nil)
	router := newTestRouter(new(MockAskService), docs)

	req := httptest.NewRequest(http.MethodDelete, "/documents/?filename=manual.pdf", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed_chunks":9`)
}

func TestRouterListDocuments(t *testing.T) {
	docs := new(MockDocumentService)
	docs.On("ListFiles", mock.Anything, "acme").Return([]domain.FileRecord{}, nil)
	router := newTestRouter(new(MockAskService), docs)

	req := httptest.NewRequest(http.MethodGet, "/documents/", nil)
	req.Header.Set("X-Tenant-ID", "acme")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouterOversizedBodyRejected(t *testing.T) {
	router := newTestRouter(new(MockAskService), new(MockDocumentService))

	req := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader([]byte("{}")))
	req.Header.Set("X-Tenant-ID", "acme")
	req.ContentLength = 64 * 1024 * 1024
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
