package service

import (
	"context"
	"log"
	"time"

	"github.com/quercia-ai/docpilot/internal/domain"
	"github.com/quercia-ai/docpilot/internal/loader"
	"github.com/quercia-ai/docpilot/internal/splitter"
)

// RawStore keeps the original uploaded bytes, independent of the index.
type RawStore interface {
	Put(ctx context.Context, tenantID, fileID, filename string, content []byte) error
	Delete(ctx context.Context, tenantID, fileID, filename string) error
}

// IngestResult summarizes one completed ingestion.
type IngestResult struct {
	FileID     string          `json:"file_id"`
	Filename   string          `json:"filename"`
	FileType   domain.FileType `json:"file_type"`
	ChunkCount int             `json:"chunk_count"`
}

// Ingestor turns uploaded documents into indexed chunks: extract text, split
// it, embed and store the chunks, then retain the raw upload. The index
// write is all-or-nothing; a document is never partially searchable.
type Ingestor struct {
	index    *Index
	registry *Registry
	raw      RawStore
	chunking splitter.Config
}

// NewIngestor builds an Ingestor. raw may be nil when raw document
// retention is not configured.
func NewIngestor(index *Index, registry *Registry, raw RawStore, chunking splitter.Config) *Ingestor {
	return &Ingestor{
		index:    index,
		registry: registry,
		raw:      raw,
		chunking: chunking,
	}
}

// Ingest indexes one uploaded document for a tenant. Re-uploading the same
// filename adds a new file version under a fresh file ID; callers that want
// replacement semantics delete the old filename first.
func (g *Ingestor) Ingest(ctx context.Context, tenantID, filename string, content []byte) (IngestResult, error) {
	uploadedAt := time.Now().UTC()

	units, err := loader.Load(content, tenantID, filename, uploadedAt)
	if err != nil {
		return IngestResult{}, err
	}

	chunks, err := splitter.Split(units, g.chunking)
	if err != nil {
		return IngestResult{}, err
	}

	if err := g.index.AddChunks(ctx, chunks); err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{
		FileID:     units[0].FileID,
		Filename:   filename,
		FileType:   units[0].FileType,
		ChunkCount: len(chunks),
	}

	// Raw retention is best effort: the document is already searchable and
	// a storage hiccup must not fail the upload.
	if g.raw != nil {
		if err := g.raw.Put(ctx, tenantID, result.FileID, filename, content); err != nil {
			log.Printf("ingest: failed to retain raw document %s for tenant %s: %v", filename, tenantID, err)
		}
	}

	g.registry.Invalidate(tenantID)
	return result, nil
}

// DeleteFile removes every chunk of the file from the tenant's index along
// with the retained raw upload. Returns the number of chunks removed.
func (g *Ingestor) DeleteFile(ctx context.Context, tenantID, fileID string) (int, error) {
	removed, filename, err := g.index.DeleteByFileID(ctx, tenantID, fileID)
	if err != nil {
		return 0, err
	}
	if g.raw != nil {
		if err := g.raw.Delete(ctx, tenantID, fileID, filename); err != nil {
			log.Printf("ingest: failed to delete raw document %s for tenant %s: %v", filename, tenantID, err)
		}
	}
	g.registry.Invalidate(tenantID)
	return removed, nil
}

// DeleteFilename removes every indexed version of the filename for the
// tenant. Raw copies are keyed by file ID and are left to bucket lifecycle
// rules when deleting by name.
func (g *Ingestor) DeleteFilename(ctx context.Context, tenantID, filename string) (int, error) {
	removed, err := g.index.DeleteByFilename(ctx, tenantID, filename)
	if err != nil {
		return 0, err
	}
	g.registry.Invalidate(tenantID)
	return removed, nil
}

// ListFiles returns the tenant's indexed files, newest upload first.
func (g *Ingestor) ListFiles(ctx context.Context, tenantID string) ([]domain.FileRecord, error) {
	return g.index.ListFiles(ctx, tenantID)
}
