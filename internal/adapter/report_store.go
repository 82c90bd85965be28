package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	m "simpleedit.dev/pkg/simpleedit/internal/model"
)

// ReportStore persists the outcome of batch commands.
type ReportStore interface {
	SaveSearchReports(path m.Path, reports []m.SearchReport) error
	SaveReplaceReports(path m.Path, reports []m.ReplaceReport) error
}

// reportFile is the on-disk YAML document.
type reportFile[T any] struct {
	Kind      string    `yaml:"kind"`
	CreatedAt time.Time `yaml:"created_at"`
	Reports   []T       `yaml:"reports"`
}

// YAMLReportStore writes reports as YAML documents.
type YAMLReportStore struct {
	now func() time.Time
}

// NewReportStore creates a YAMLReportStore.
func NewReportStore() *YAMLReportStore {
	return &YAMLReportStore{now: time.Now}
}

// SaveSearchReports writes search reports to path.
func (s *YAMLReportStore) SaveSearchReports(path m.Path, reports []m.SearchReport) error {
	out := make([]m.SearchReport, len(reports))
	for i, r := range reports {
		if r.Err != nil {
			r.Error = r.Err.Error()
		}

		out[i] = r
	}

	return writeYAML(path, reportFile[m.SearchReport]{Kind: "search", CreatedAt: s.now().UTC(), Reports: out})
}

// SaveReplaceReports writes replace reports to path.
func (s *YAMLReportStore) SaveReplaceReports(path m.Path, reports []m.ReplaceReport) error {
	out := make([]m.ReplaceReport, len(reports))
	for i, r := range reports {
		if r.Err != nil {
			r.Error = r.Err.Error()
		}

		out[i] = r
	}

	return writeYAML(path, reportFile[m.ReplaceReport]{Kind: "replace", CreatedAt: s.now().UTC(), Reports: out})
}

func writeYAML(path m.Path, doc any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	if dir := filepath.Dir(string(path)); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}

	if err := os.WriteFile(string(path), data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
