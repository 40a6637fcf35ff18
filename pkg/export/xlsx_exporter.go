package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXExporter renders documents into a single-sheet workbook.
type XLSXExporter struct{}

// NewXLSXExporter builds an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

// ContentType returns the MIME type of rendered output.
func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Extension returns the file extension of rendered output.
func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the rows, then the summary pairs after one empty row.
func (e *XLSXExporter) Render(doc Document) ([]byte, error) {
	return writeWorkbook(doc.Dataset, doc.Title, doc.Summary)
}

// WriteXLSX renders a dataset into a single-sheet workbook.
func WriteXLSX(data Dataset, sheet string) ([]byte, error) {
	return writeWorkbook(data, sheet, nil)
}

func writeWorkbook(data Dataset, sheet string, summary [][2]string) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	file := excelize.NewFile()
	defer file.Close() //nolint:errcheck

	sheet = sheetName(sheet)
	if sheet != "Sheet1" {
		if err := file.SetSheetName("Sheet1", sheet); err != nil {
			return nil, fmt.Errorf("name sheet: %w", err)
		}
	}
	if err := file.SetSheetRow(sheet, "A1", &data.Headers); err != nil {
		return nil, fmt.Errorf("write xlsx headers: %w", err)
	}
	line := 2
	for _, row := range data.Rows {
		record := make([]interface{}, len(data.Headers))
		for j, header := range data.Headers {
			record[j] = row[header]
		}
		if err := setRow(file, sheet, line, &record); err != nil {
			return nil, err
		}
		line++
	}
	if len(summary) > 0 {
		line++
		for _, pair := range summary {
			record := []interface{}{pair[0], pair[1]}
			if err := setRow(file, sheet, line, &record); err != nil {
				return nil, err
			}
			line++
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(file *excelize.File, sheet string, line int, record *[]interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := file.SetSheetRow(sheet, cell, record); err != nil {
		return fmt.Errorf("write xlsx row: %w", err)
	}
	return nil
}

// sheetName trims titles to the 31 characters Excel allows.
func sheetName(title string) string {
	if title == "" {
		return "Sheet1"
	}
	runes := []rune(title)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
