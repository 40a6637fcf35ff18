package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// Table is a parsed upload: lower-cased headers and one map per data row.
// Row numbers are 1-based and count the header line.
type Table struct {
	Headers []string
	Rows    []TableRow
}

// TableRow is one data line of an upload.
type TableRow struct {
	Line   int
	Values map[string]string
}

// ReadTable parses a CSV or XLSX upload, picking the format from filename.
// Reading stops with an error once more than maxRows data rows are seen.
func ReadTable(filename string, r io.Reader, maxRows int) (*Table, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return readCSV(r, maxRows)
	case ".xlsx":
		return readXLSX(r, maxRows)
	default:
		return nil, ErrUnsupportedFormat
	}
}

func readCSV(r io.Reader, maxRows int) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return buildTable(records, maxRows)
}

func readXLSX(r io.Reader, maxRows int) (*Table, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read xlsx: %w", err)
	}
	file, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer file.Close() //nolint:errcheck

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	records, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return buildTable(records, maxRows)
}

func buildTable(records [][]string, maxRows int) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("file is empty")
	}
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	}

	table := &Table{Headers: headers}
	for idx, record := range records[1:] {
		if blank(record) {
			continue
		}
		if maxRows > 0 && len(table.Rows) >= maxRows {
			return nil, fmt.Errorf("file exceeds the limit of %d rows", maxRows)
		}
		values := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(record) {
				continue
			}
			values[header] = strings.TrimSpace(record[i])
		}
		table.Rows = append(table.Rows, TableRow{Line: idx + 2, Values: values})
	}
	return table, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
