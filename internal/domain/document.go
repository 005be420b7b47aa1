package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// FileType represents the format of an uploaded document
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeTXT  FileType = "txt"
	FileTypeXLSX FileType = "xlsx"
)

// FileTypeFromFilename derives the file type from the filename extension.
// Returns false when the extension is not in the supported set.
func FileTypeFromFilename(filename string) (FileType, bool) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	switch FileType(ext) {
	case FileTypePDF, FileTypeDOCX, FileTypeTXT, FileTypeXLSX:
		return FileType(ext), true
	default:
		return "", false
	}
}

// TextUnit is a normalized slice of extracted document text before chunking.
// A loader produces one or more units per file (e.g. one per PDF page), all
// sharing the same file identity metadata.
type TextUnit struct {
	Content    string
	TenantID   string
	FileID     string
	Filename   string
	FileType   FileType
	UploadedAt time.Time
}

// DocumentChunk is the unit of embedding and retrieval. Ordinals are
// contiguous 0..TotalChunks-1 within one file.
type DocumentChunk struct {
	Content     string
	TenantID    string
	FileID      string
	Filename    string
	FileType    FileType
	UploadedAt  time.Time
	ChunkIndex  int
	TotalChunks int
}

// FileRecord is the per-file aggregate view over indexed chunks.
type FileRecord struct {
	FileID     string
	Filename   string
	FileType   FileType
	TenantID   string
	UploadedAt time.Time
	ChunkCount int
}

// SearchFilter narrows a vector search to chunks whose metadata satisfies
// every populated field (logical AND). The zero value matches everything,
// but callers must always scope by tenant.
type SearchFilter struct {
	TenantID  string
	FileTypes []FileType
	FileIDs   []string
}

// EmbeddedChunk is a chunk paired with its embedding vector, ready either
// for persistence or as a retrieval candidate.
type EmbeddedChunk struct {
	Chunk     DocumentChunk
	Embedding []float32
}

// RetrievedChunk pairs a chunk with its similarity rank for one query.
// Never persisted.
type RetrievedChunk struct {
	Chunk      DocumentChunk
	Embedding  []float32
	Similarity float64
}
