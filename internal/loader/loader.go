// Package loader parses uploaded files into normalized text units with
// per-file metadata. It never touches durable storage; persisting anything
// is the caller's job.
package loader

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quercia-ai/docpilot/internal/domain"
)

// fileIDNamespace seeds deterministic file identifiers. Re-ingesting the
// same (tenant, filename) at the same instant yields the same ID.
var fileIDNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// FileID derives a stable identifier for one logical ingestion of a file.
func FileID(tenantID, filename string, uploadedAt time.Time) string {
	seed := fmt.Sprintf("%s/%s@%d", tenantID, filename, uploadedAt.UTC().Unix())
	return uuid.NewSHA1(fileIDNamespace, []byte(seed)).String()
}

// Load extracts text from an uploaded file and attaches ingestion metadata.
// The file type is decided by the filename extension against the supported
// set; anything else fails with domain.ErrUnsupportedFileType before any
// parsing happens.
func Load(content []byte, tenantID, filename string, uploadedAt time.Time) ([]domain.TextUnit, error) {
	fileType, ok := domain.FileTypeFromFilename(filename)
	if !ok {
		return nil, domain.ErrUnsupportedFileType.WithCause(fmt.Errorf("filename %q", filename))
	}

	var texts []string
	var err error
	switch fileType {
	case domain.FileTypePDF:
		texts, err = extractPDF(content)
	case domain.FileTypeDOCX:
		texts, err = extractDOCX(content)
	case domain.FileTypeXLSX:
		texts, err = extractXLSX(content)
	case domain.FileTypeTXT:
		texts = []string{string(content)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s file %q: %w", fileType, filename, err)
	}

	fileID := FileID(tenantID, filename, uploadedAt)
	units := make([]domain.TextUnit, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		units = append(units, domain.TextUnit{
			Content:    text,
			TenantID:   tenantID,
			FileID:     fileID,
			Filename:   filename,
			FileType:   fileType,
			UploadedAt: uploadedAt,
		})
	}

	if len(units) == 0 {
		return nil, domain.ErrEmptyDocument.WithCause(fmt.Errorf("filename %q", filename))
	}

	return units, nil
}
