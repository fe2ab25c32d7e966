package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"e2e_locators/domain/entities"
	"e2e_locators/domain/interfaces"
)

// DefaultHistoryLimit caps how many reports the history file keeps
const DefaultHistoryLimit = 50

type reportFiles struct {
	mu          sync.Mutex
	latestPath  string
	historyPath string
	limit       int
}

// NewReportFiles - creates a report store writing latest.json and
// history.json under dir
func NewReportFiles(dir string, limit int) (interfaces.ReportStore, error) {
	if err := ensureDir(dir); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &reportFiles{
		latestPath:  filepath.Join(dir, "latest.json"),
		historyPath: filepath.Join(dir, "history.json"),
		limit:       limit,
	}, nil
}

// SaveReport - writes the report as the latest run and appends it to history
func (s *reportFiles) SaveReport(report *entities.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := writeFile(s.latestPath, data); err != nil {
		return err
	}

	history, err := s.readHistory()
	if err != nil {
		return err
	}
	history = append(history, *report)
	if len(history) > s.limit {
		history = history[len(history)-s.limit:]
	}

	data, err = json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return writeFile(s.historyPath, data)
}

// LoadLatest - loads the last saved report; nil when nothing was saved yet
func (s *reportFiles) LoadLatest() (*entities.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.latestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var report entities.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.latestPath, err)
	}
	return &report, nil
}

// LoadHistory - loads saved reports, oldest first
func (s *reportFiles) LoadHistory() ([]entities.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readHistory()
}

func (s *reportFiles) Close() error {
	return nil
}

func (s *reportFiles) readHistory() ([]entities.RunReport, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.RunReport{}, nil
		}
		return nil, err
	}

	var history []entities.RunReport
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.historyPath, err)
	}
	return history, nil
}

// writeFile replaces path atomically
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	return nil
}
