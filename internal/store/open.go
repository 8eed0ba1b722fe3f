package store

import (
	"fmt"
	"strings"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// OpenBlob builds the Blob for a backend name. filePath is used by the file
// backend and dbPath by the sqlite backend.
func OpenBlob(backend, filePath, dbPath string) (Blob, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFileBlob(filePath)
	case BackendSQLite:
		return OpenSQLite(dbPath)
	case BackendMemory:
		return NewMemoryBlob(nil), nil
	default:
		return nil, fmt.Errorf("unknown watchlist backend %q (want file, sqlite or memory)", backend)
	}
}
