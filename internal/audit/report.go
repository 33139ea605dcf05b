package audit

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed report.schema.json
var reportSchemaJSON string

const reportSchemaURL = "https://delta-derivatives.dev/schemas/audit-report.json"

var compileReportSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(reportSchemaURL, strings.NewReader(reportSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(reportSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
})

// #region report-io
// MarshalReport encodes r as indented JSON and validates it against the
// report schema.
func MarshalReport(r Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	if err := ValidateReportJSON(data); err != nil {
		return nil, err
	}
	return data, nil
}

// ValidateReportJSON checks raw report JSON against the embedded schema.
func ValidateReportJSON(data []byte) error {
	schema, err := compileReportSchema()
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode report: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("validate report: %w", err)
	}
	return nil
}

// WriteReport writes r to path atomically through a temp file in the same
// directory.
func WriteReport(path string, r Report) error {
	data, err := MarshalReport(r)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".report-*.json")
	if err != nil {
		return fmt.Errorf("create temp report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename report: %w", err)
	}
	return nil
}

// LoadReport reads and validates a report written by WriteReport.
func LoadReport(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read report: %w", err)
	}
	return ParseReport(data)
}

// ParseReport validates and decodes report JSON.
func ParseReport(data []byte) (Report, error) {
	if err := ValidateReportJSON(data); err != nil {
		return Report{}, err
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parse report: %w", err)
	}
	return r, nil
}

// #endregion report-io
