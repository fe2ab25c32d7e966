// Package storage persists run reports, either as JSON files or in a
// SQLite database.
package storage

import (
	"fmt"
	"path/filepath"

	"e2e_locators/domain/interfaces"
)

// Open creates the report store for backend ("json" or "sqlite") under dir
func Open(backend, dir string, limit int) (interfaces.ReportStore, error) {
	switch backend {
	case "", "json":
		return NewReportFiles(dir, limit)
	case "sqlite":
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		return NewReportDB(filepath.Join(dir, "reports.db"), limit)
	}
	return nil, fmt.Errorf("unknown report backend %q", backend)
}
