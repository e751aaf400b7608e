// Package codec reads and writes gas station datasets as CSV or JSON files.
//
// The formats mirror the Moscow open-data export: a semicolon separated CSV
// with a two-line header (column keys, then captions) and a JSON array keyed
// by the same column names. Decoded datasets are validated before they are
// returned, so callers only ever see usable data.
package codec

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/datadesk/pkg/domain"
)

// Format is a supported file format.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ExportBaseName is the file name, without extension, of exported results.
const ExportBaseName = "Updated data"

var (
	// ErrUnsupportedFormat is wrapped by FormatError.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrHeaderMismatch is returned when CSV headers differ from the registry layout.
	ErrHeaderMismatch = errors.New("the CSV header does not match the gas station registry layout")
	// ErrNoRecords is returned for files without data rows.
	ErrNoRecords = errors.New("the file contains no records")
	// ErrEmptyRecords is returned when every record is blank.
	ErrEmptyRecords = errors.New("all records in the file are empty")
	// ErrIncompleteRecords is returned when no record has all required fields.
	ErrIncompleteRecords = errors.New("every record in the file is missing required fields")
)

// FormatError reports a declared format that is neither CSV nor JSON.
type FormatError struct {
	Declared string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("files of format %q are not allowed, send a .csv or .json file", e.Declared)
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

// ParseError locates a malformed value in an uploaded file.
type ParseError struct {
	Format Format
	Line   int    // 1-based; 0 when unknown
	Column string // column key; empty when the whole row is malformed
	Err    error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid %s file", strings.ToUpper(string(e.Format)))
	if e.Line > 0 {
		fmt.Fprintf(&b, " at line %d", e.Line)
	}
	if e.Column != "" {
		fmt.Fprintf(&b, ", column %s", e.Column)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseFormat resolves a declared format. It accepts bare names ("csv"),
// extensions (".JSON") and file names ("stations.csv").
func ParseFormat(declared string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(declared))
	if ext == "" {
		ext = "." + strings.ToLower(strings.TrimSpace(declared))
	}
	switch ext {
	case ".csv":
		return CSV, nil
	case ".json":
		return JSON, nil
	default:
		return "", &FormatError{Declared: declared}
	}
}

// FileName returns the export file name for the format.
func (f Format) FileName() string {
	return ExportBaseName + "." + string(f)
}

// Codec implements ports.Codec for CSV and JSON.
type Codec struct{}

// New returns a Codec.
func New() *Codec {
	return &Codec{}
}

// Decode parses and validates an uploaded file.
func (c *Codec) Decode(format string, data []byte) (domain.Dataset, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	var ds domain.Dataset
	switch f {
	case CSV:
		ds, err = DecodeCSV(data)
	case JSON:
		ds, err = DecodeJSON(data)
	}
	if err != nil {
		return nil, err
	}
	if err := Validate(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// Encode serializes a dataset.
func (c *Codec) Encode(format string, ds domain.Dataset) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case CSV:
		return EncodeCSV(ds)
	default:
		return EncodeJSON(ds)
	}
}

// Validate rejects datasets that are empty or carry no usable record.
func Validate(ds domain.Dataset) error {
	if len(ds) == 0 {
		return ErrNoRecords
	}
	allZero, allIncomplete := true, true
	for _, r := range ds {
		if !r.IsZero() {
			allZero = false
		}
		if !r.HasEmptyRequired() {
			allIncomplete = false
		}
	}
	switch {
	case allZero:
		return ErrEmptyRecords
	case allIncomplete:
		return ErrIncompleteRecords
	}
	return nil
}
