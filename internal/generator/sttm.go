package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gsaikiranchary/DataUtilitiesAcolyte/pkg/models"
	"github.com/sirupsen/logrus"
)

// DirectMapping is the transformation rule of a column copied unchanged
const DirectMapping = "Direct Mapping"

// STTMHeader names the twelve columns of the source-to-target mapping sheet
var STTMHeader = []string{
	"Source Schema", "Source Table", "Source Column", "Source Data Type", "Source Nullable",
	"Transformation Rule",
	"Target Schema", "Target Table", "Target Column", "Target Data Type", "Target Nullable",
	"Primary Key",
}

// STTMRow is one line of the mapping sheet
type STTMRow struct {
	SourceSchema   string `json:"source_schema"`
	SourceTable    string `json:"source_table"`
	SourceColumn   string `json:"source_column"`
	SourceType     string `json:"source_type"`
	SourceNullable string `json:"source_nullable"`
	Transformation string `json:"transformation"`
	TargetSchema   string `json:"target_schema"`
	TargetTable    string `json:"target_table"`
	TargetColumn   string `json:"target_column"`
	TargetType     string `json:"target_type"`
	TargetNullable string `json:"target_nullable"`
	PrimaryKey     string `json:"primary_key"`
}

func (r STTMRow) record() []string {
	return []string{
		r.SourceSchema, r.SourceTable, r.SourceColumn, r.SourceType, r.SourceNullable,
		r.Transformation,
		r.TargetSchema, r.TargetTable, r.TargetColumn, r.TargetType, r.TargetNullable,
		r.PrimaryKey,
	}
}

func nullableFlag(nullable bool) string {
	if nullable {
		return "Y"
	}
	return "N"
}

// Request describes one document generation
type Request struct {
	Source       models.SourceType `json:"source"`
	Target       models.SourceType `json:"target"`
	SourceSchema string            `json:"source_schema"`
	SourceTable  string            `json:"source_table"`
	TargetSchema string            `json:"target_schema"`
	TargetTable  string            `json:"target_table"`
}

// Validate checks that every name is filled in
func (r Request) Validate() error {
	if r.SourceSchema == "" || r.SourceTable == "" || r.TargetSchema == "" || r.TargetTable == "" {
		return fmt.Errorf("please fill in all required fields: source and target schema and table")
	}
	return nil
}

// Documents are the generated artefacts
type Documents struct {
	Request Request        `json:"request"`
	Columns []MappedColumn `json:"columns"`
	STTM    []STTMRow      `json:"sttm"`
	DDL     string         `json:"ddl"`
	ETL     string         `json:"etl"`
}

// Generate maps the columns and builds every document
func Generate(req Request, columns []models.ColumnMeta) (*Documents, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no columns found for %s.%s", req.SourceSchema, req.SourceTable)
	}

	mapped := MapColumns(columns, req.Source, req.Target)
	docs := &Documents{
		Request: req,
		Columns: mapped,
		DDL:     GenerateDDL(mapped, req.TargetSchema, req.TargetTable),
		ETL:     GenerateETL(mapped, req.SourceSchema, req.SourceTable, req.TargetSchema, req.TargetTable),
	}
	for _, c := range mapped {
		docs.STTM = append(docs.STTM, STTMRow{
			SourceSchema:   req.SourceSchema,
			SourceTable:    req.SourceTable,
			SourceColumn:   c.Name,
			SourceType:     c.Type,
			SourceNullable: nullableFlag(c.Nullable),
			Transformation: DirectMapping,
			TargetSchema:   req.TargetSchema,
			TargetTable:    req.TargetTable,
			TargetColumn:   c.Name,
			TargetType:     c.MappedType,
			TargetNullable: nullableFlag(c.Nullable),
		})
	}
	return docs, nil
}

// WriteSTTM writes the mapping sheet as CSV with a header row
func WriteSTTM(w io.Writer, rows []STTMRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(STTMHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles saves the documents under dir and returns the paths written:
// <source table>_sttm.csv, <target table>_ddl.sql and <target table>_etl.sql
func WriteFiles(dir string, docs *Documents, logger *logrus.Logger) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	sttmPath := filepath.Join(dir, docs.Request.SourceTable+"_sttm.csv")
	f, err := os.Create(sttmPath)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", sttmPath, err)
	}
	if err := WriteSTTM(f, docs.STTM); err != nil {
		f.Close()
		return nil, fmt.Errorf("write %s: %w", sttmPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, err
	}

	ddlPath := filepath.Join(dir, docs.Request.TargetTable+"_ddl.sql")
	if err := os.WriteFile(ddlPath, []byte(docs.DDL+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", ddlPath, err)
	}

	etlPath := filepath.Join(dir, docs.Request.TargetTable+"_etl.sql")
	if err := os.WriteFile(etlPath, []byte(docs.ETL+"\n"), 0644); err != nil {
		return nil, fmt.Errorf("write %s: %w", etlPath, err)
	}

	paths := []string{sttmPath, ddlPath, etlPath}
	logger.Infof("Wrote %d documents to %s", len(paths), dir)
	return paths, nil
}
