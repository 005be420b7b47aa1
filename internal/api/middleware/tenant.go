package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/quercia-ai/docpilot/internal/api"
)

type contextKey string

const TenantIDKey contextKey = "tenant_id"

var tenantIDPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{0,63}$`)

// TenantID requires a well-formed X-Tenant-ID header on every request and
// makes it available via GetTenantID. All data access downstream is scoped
// to this value.
func TenantID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := r.Header.Get("X-Tenant-ID")
		if tenantID == "" {
			api.Error(w, http.StatusUnauthorized, "missing X-Tenant-ID header")
			return
		}
		if !tenantIDPattern.MatchString(tenantID) {
			api.Error(w, http.StatusBadRequest, "malformed tenant id")
			return
		}

		ctx := context.WithValue(r.Context(), TenantIDKey, tenantID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTenantID returns the tenant ID from context.
func GetTenantID(ctx context.Context) string {
	tenantID, _ := ctx.Value(TenantIDKey).(string)
	return tenantID
}
