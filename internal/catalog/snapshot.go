package catalog

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"gopkg.in/yaml.v3"
)

// Snapshot is an offline catalog: view SQL and table columns keyed by name.
// View keys are matched as written; table keys are schema.table.
type Snapshot struct {
	Views  map[string]string              `yaml:"views"`
	Tables map[string][]models.ColumnMeta `yaml:"tables"`

	// Failures makes a lookup of the key return the error, for either kind
	Failures map[string]error `yaml:"-"`

	mu         sync.Mutex
	viewCalls  map[string]int
	tableCalls map[string]int
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Views:  make(map[string]string),
		Tables: make(map[string][]models.ColumnMeta),
	}
}

// LoadSnapshot reads a YAML snapshot file
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog snapshot: %w", err)
	}
	snap := NewSnapshot()
	if err := yaml.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("parse catalog snapshot %s: %w", path, err)
	}
	if snap.Views == nil {
		snap.Views = make(map[string]string)
	}
	if snap.Tables == nil {
		snap.Tables = make(map[string][]models.ColumnMeta)
	}
	return snap, nil
}

// FetchViewDefinition looks the name up as written
func (s *Snapshot) FetchViewDefinition(_ context.Context, name models.ObjectName) (string, error) {
	key := name.String()
	s.count(&s.viewCalls, key)
	if err := s.Failures[key]; err != nil {
		return "", err
	}
	return s.Views[key], nil
}

// FetchTableColumns looks up schema.table
func (s *Snapshot) FetchTableColumns(_ context.Context, schema, table string) ([]models.ColumnMeta, error) {
	key := schema + "." + table
	s.count(&s.tableCalls, key)
	if err := s.Failures[key]; err != nil {
		return nil, err
	}
	return s.Tables[key], nil
}

// ViewCalls returns how many times a view was requested
func (s *Snapshot) ViewCalls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewCalls[key]
}

// TableCalls returns how many times a table was requested
func (s *Snapshot) TableCalls(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tableCalls[key]
}

func (s *Snapshot) count(m *map[string]int, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if *m == nil {
		*m = make(map[string]int)
	}
	(*m)[key]++
}
