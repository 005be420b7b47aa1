// Package splitter turns extracted document text into overlapping
// fixed-size chunks ready for embedding.
package splitter

import (
	"strings"
	"unicode"

	"github.com/quercia-ai/docpilot/internal/domain"
)

// Config controls chunk sizing. Sizes are in runes.
type Config struct {
	Size    int
	Overlap int
}

// DefaultConfig provides the canonical chunking parameters.
func DefaultConfig() Config {
	return Config{
		Size:    1500,
		Overlap: 500,
	}
}

// Split chunks the given text units. Units belonging to the same file are
// concatenated before splitting so chunk ordinals stay contiguous 0..N-1 per
// file, with TotalChunks recomputed on every call. The function is pure and
// deterministic for identical inputs.
func Split(units []domain.TextUnit, cfg Config) ([]domain.DocumentChunk, error) {
	if cfg.Size <= 0 || cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		return nil, domain.ErrInvalidChunkConfig
	}

	// Group unit texts by file, preserving first-seen file order.
	type fileText struct {
		meta  domain.TextUnit
		parts []string
	}
	var order []string
	byFile := make(map[string]*fileText)
	for _, u := range units {
		ft, ok := byFile[u.FileID]
		if !ok {
			ft = &fileText{meta: u}
			byFile[u.FileID] = ft
			order = append(order, u.FileID)
		}
		if strings.TrimSpace(u.Content) != "" {
			ft.parts = append(ft.parts, u.Content)
		}
	}

	var chunks []domain.DocumentChunk
	for _, fileID := range order {
		ft := byFile[fileID]
		pieces := splitText(strings.Join(ft.parts, "\n\n"), cfg)
		for i, piece := range pieces {
			chunks = append(chunks, domain.DocumentChunk{
				Content:     piece,
				TenantID:    ft.meta.TenantID,
				FileID:      ft.meta.FileID,
				Filename:    ft.meta.Filename,
				FileType:    ft.meta.FileType,
				UploadedAt:  ft.meta.UploadedAt,
				ChunkIndex:  i,
				TotalChunks: len(pieces),
			})
		}
	}

	return chunks, nil
}

// splitText cuts text into pieces of at most cfg.Size runes, preferring a
// paragraph break, then a sentence end, then any whitespace inside the
// window, and falling back to a hard cut. Consecutive pieces share
// cfg.Overlap runes.
func splitText(text string, cfg Config) []string {
	clean := strings.TrimSpace(text)
	if clean == "" {
		return nil
	}

	runes := []rune(clean)
	if len(runes) <= cfg.Size {
		return []string{clean}
	}

	pieces := make([]string, 0, 8)
	start := 0
	for start < len(runes) {
		end := start + cfg.Size
		if end > len(runes) {
			end = len(runes)
		}

		if end < len(runes) {
			// The cut may not retreat past the overlap carried from the
			// previous piece, otherwise the walk stops making progress.
			minCut := start + cfg.Overlap + 1
			if minCut > end {
				minCut = end
			}
			end = findCut(runes, minCut, end)
		}

		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			pieces = append(pieces, piece)
		}

		if end >= len(runes) {
			break
		}

		nextStart := end - cfg.Overlap
		if nextStart <= start {
			nextStart = end
		}
		start = nextStart
	}

	return pieces
}

// findCut returns the best cut position in (minCut, end], scanning backwards.
// A paragraph break beats a sentence end, which beats plain whitespace; when
// the window holds none of them the hard end wins.
func findCut(runes []rune, minCut, end int) int {
	sentenceCut := -1
	spaceCut := -1

	for i := end; i > minCut; i-- {
		r := runes[i-1]
		if r == '\n' {
			if i >= 2 && runes[i-2] == '\n' {
				return i
			}
			if sentenceCut < 0 {
				sentenceCut = i
			}
			continue
		}
		if sentenceCut < 0 && unicode.IsSpace(r) && i >= 2 && isSentenceEnd(runes[i-2]) {
			sentenceCut = i
		}
		if spaceCut < 0 && unicode.IsSpace(r) {
			spaceCut = i
		}
	}

	if sentenceCut > 0 {
		return sentenceCut
	}
	if spaceCut > 0 {
		return spaceCut
	}
	return end
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', ';', ':':
		return true
	default:
		return false
	}
}
