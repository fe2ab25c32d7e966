package interfaces

import "e2e_locators/domain/entities"

// ReportStore persists run reports
type ReportStore interface {
	// SaveReport stores report as the latest run and appends it to the history
	SaveReport(report *entities.RunReport) error

	// LoadLatest returns the latest report, nil when none was saved
	LoadLatest() (*entities.RunReport, error)

	// LoadHistory returns past reports, oldest first
	LoadHistory() ([]entities.RunReport, error)

	Close() error
}
