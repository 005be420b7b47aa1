package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/quercia-ai/docpilot/internal/domain"
)

// ChunkRepository persists (chunk, embedding) pairs in the document_chunks
// table. Every operation is scoped by tenant; rows of one tenant are never
// visible through another tenant's calls.
type ChunkRepository struct {
	pool *pgxpool.Pool
}

func NewChunkRepository(pool *pgxpool.Pool) *ChunkRepository {
	return &ChunkRepository{pool: pool}
}

// InsertChunks appends embedded chunks inside a single transaction, so an
// ingestion either lands fully or not at all. Duplicate content produces
// duplicate rows; there is no dedup key.
func (r *ChunkRepository) InsertChunks(ctx context.Context, chunks []domain.EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, ec := range chunks {
		c := ec.Chunk
		createdAt := time.Now().UTC()
		_, err := tx.Exec(ctx,
			`INSERT INTO document_chunks
				(tenant_id, file_id, filename, file_type, uploaded_at, chunk_index, total_chunks, content, embedding, created_at)
			 VALUES
				($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			c.TenantID,
			c.FileID,
			c.Filename,
			string(c.FileType),
			c.UploadedAt,
			c.ChunkIndex,
			c.TotalChunks,
			c.Content,
			pgvector.NewVector(ec.Embedding),
			createdAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert chunk %d of %s: %w", c.ChunkIndex, c.FileID, err)
		}
	}

	return tx.Commit(ctx)
}

// DeleteByFileID removes every chunk of the tenant's file, returning the
// number removed and the filename observed before removal.
func (r *ChunkRepository) DeleteByFileID(ctx context.Context, tenantID, fileID string) (int, string, error) {
	var filename string
	err := r.pool.QueryRow(ctx,
		`SELECT filename FROM document_chunks WHERE tenant_id = $1 AND file_id = $2 LIMIT 1`,
		tenantID, fileID,
	).Scan(&filename)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, "", domain.ErrFileNotFound
		}
		return 0, "", err
	}

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM document_chunks WHERE tenant_id = $1 AND file_id = $2`,
		tenantID, fileID,
	)
	if err != nil {
		return 0, "", err
	}

	return int(tag.RowsAffected()), filename, nil
}

// DeleteByFilename removes every chunk matching the tenant's filename, for
// callers that never learned the file ID.
func (r *ChunkRepository) DeleteByFilename(ctx context.Context, tenantID, filename string) (int, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM document_chunks WHERE tenant_id = $1 AND filename = $2`,
		tenantID, filename,
	)
	if err != nil {
		return 0, err
	}

	removed := int(tag.RowsAffected())
	if removed == 0 {
		return 0, domain.ErrFileNotFound
	}
	return removed, nil
}

// ListFiles aggregates the tenant's chunks into per-file records, newest
// upload first.
func (r *ChunkRepository) ListFiles(ctx context.Context, tenantID string) ([]domain.FileRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT file_id, min(filename), min(file_type), min(uploaded_at), count(*)
		 FROM document_chunks
		 WHERE tenant_id = $1
		 GROUP BY file_id
		 ORDER BY min(uploaded_at) DESC, file_id`,
		tenantID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.FileRecord
	for rows.Next() {
		var rec domain.FileRecord
		var fileType string
		var count int64
		if err := rows.Scan(&rec.FileID, &rec.Filename, &fileType, &rec.UploadedAt, &count); err != nil {
			return nil, err
		}
		rec.TenantID = tenantID
		rec.FileType = domain.FileType(fileType)
		rec.ChunkCount = int(count)
		records = append(records, rec)
	}

	return records, rows.Err()
}

// SearchNearest returns the k chunks nearest to the query embedding under
// cosine distance, restricted to rows matching every populated filter
// field. Ties are broken by insertion order (ascending row id), so result
// order is stable.
func (r *ChunkRepository) SearchNearest(ctx context.Context, embedding []float32, filter domain.SearchFilter, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	where := []string{}
	args := []any{pgvector.NewVector(embedding)}

	if filter.TenantID != "" {
		args = append(args, filter.TenantID)
		where = append(where, fmt.Sprintf("tenant_id = $%d", len(args)))
	}
	if len(filter.FileTypes) > 0 {
		types := make([]string, len(filter.FileTypes))
		for i, ft := range filter.FileTypes {
			types[i] = string(ft)
		}
		args = append(args, types)
		where = append(where, fmt.Sprintf("file_type = ANY($%d)", len(args)))
	}
	if len(filter.FileIDs) > 0 {
		args = append(args, filter.FileIDs)
		where = append(where, fmt.Sprintf("file_id = ANY($%d)", len(args)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	args = append(args, k)
	query := fmt.Sprintf(
		`SELECT tenant_id, file_id, filename, file_type, uploaded_at, chunk_index, total_chunks, content, embedding,
			1 - (embedding <=> $1) AS similarity
		 FROM document_chunks
		 %s
		 ORDER BY embedding <=> $1, id
		 LIMIT $%d`,
		whereClause, len(args),
	)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.RetrievedChunk
	for rows.Next() {
		var rc domain.RetrievedChunk
		var fileType string
		var vec pgvector.Vector
		if err := rows.Scan(
			&rc.Chunk.TenantID,
			&rc.Chunk.FileID,
			&rc.Chunk.Filename,
			&fileType,
			&rc.Chunk.UploadedAt,
			&rc.Chunk.ChunkIndex,
			&rc.Chunk.TotalChunks,
			&rc.Chunk.Content,
			&vec,
			&rc.Similarity,
		); err != nil {
			return nil, err
		}
		rc.Chunk.FileType = domain.FileType(fileType)
		rc.Embedding = vec.Slice()
		results = append(results, rc)
	}

	return results, rows.Err()
}

// CountByTenant reports how many chunks the tenant has indexed. Zero means
// the tenant's store is empty but still usable.
func (r *ChunkRepository) CountByTenant(ctx context.Context, tenantID string) (int, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM document_chunks WHERE tenant_id = $1`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
