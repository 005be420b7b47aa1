package middleware

import (
	"net/http"

	"github.com/quercia-ai/docpilot/internal/api"
)

// MaxBodyBytes caps request body size, protecting the document upload path
// from oversized payloads. Requests declaring a larger Content-Length are
// rejected up front; chunked bodies are cut off at the limit by the reader.
func MaxBodyBytes(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				api.Error(w, http.StatusRequestEntityTooLarge, "request body exceeds the upload limit")
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
