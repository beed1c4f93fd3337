package testutil

import (
	"path/filepath"
	"testing"

	"github.com/HendryAvila/foreman/internal/store"
)

// NewStore creates a file-backed SQLite store in a temp directory with the
// schema applied. It is closed when the test completes.
func NewStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Config{
		Driver: store.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "foreman.db"),
	})
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}
