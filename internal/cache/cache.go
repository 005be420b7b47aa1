// Package cache implements the per-tenant answer cache. Entries live in one
// JSON file per tenant, ordered oldest to newest and capped at MaxEntries.
package cache

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/quercia-ai/docpilot/internal/domain"
)

// MaxEntries bounds the number of remembered answers per tenant. Insertion
// beyond the bound evicts the oldest entry first.
const MaxEntries = 6

var unsafePathChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Store is a file-backed answer cache. A missing or corrupt tenant file is
// treated as an empty cache, never as an error.
type Store struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewStore creates a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// NormalizeQuestion folds a question to its cache key form: trimmed and
// case-folded, so "What is X? " and "what is x?" share one entry.
func NormalizeQuestion(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

// Get returns the cached entry for the tenant's question, or false.
func (s *Store) Get(tenantID, question string) (domain.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeQuestion(question)
	for _, entry := range s.load(tenantID) {
		if NormalizeQuestion(entry.Question) == key {
			return entry, true
		}
	}
	return domain.CacheEntry{}, false
}

// Put records an answer for the tenant. It is a no-op when an entry with the
// same normalized question already exists (first write wins). After
// insertion the tenant's list is truncated to the newest MaxEntries.
func (s *Store) Put(tenantID string, entry domain.CacheEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := NormalizeQuestion(entry.Question)
	if key == "" {
		return nil
	}

	entries := s.load(tenantID)
	for _, existing := range entries {
		if NormalizeQuestion(existing.Question) == key {
			return nil
		}
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now().UTC()
	}
	entries = append(entries, entry)
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}

	return s.save(tenantID, entries)
}

// Clear drops every cached answer for the tenant.
func (s *Store) Clear(tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path(tenantID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *Store) path(tenantID string) string {
	safe := unsafePathChars.ReplaceAllString(tenantID, "_")
	return filepath.Join(s.dir, safe+".json")
}

func (s *Store) load(tenantID string) []domain.CacheEntry {
	data, err := os.ReadFile(s.path(tenantID))
	if err != nil {
		return nil
	}

	var entries []domain.CacheEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		// Corrupt cache is logged and treated as empty per the storage
		// policy; the next Put rewrites the file.
		log.Printf("cache: tenant %s, treating as empty: %v", tenantID, domain.ErrStorageCorrupt.WithCause(err))
		return nil
	}
	return entries
}

func (s *Store) save(tenantID string, entries []domain.CacheEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path(tenantID) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(tenantID))
}
