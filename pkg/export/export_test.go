package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func attendanceDoc() Document {
	return Document{
		Title: "Attendance",
		Dataset: Dataset{
			Headers: []string{"Name", "Status"},
			Rows: []map[string]string{
				{"Name": "Asha", "Status": "present"},
				{"Name": "Ravi", "Status": "absent"},
			},
		},
		Summary: [][2]string{{"Present", "1"}, {"Absent", "1"}},
	}
}

func TestCSVExporterRendersSummary(t *testing.T) {
	out, err := NewCSVExporter().Render(attendanceDoc())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	assert.Equal(t, "Name,Status", lines[0])
	assert.Equal(t, "Asha,present", lines[1])
	assert.Equal(t, "Present,1", lines[4])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Document{})
	assert.Error(t, err)
}

func TestPDFExporterProducesPDF(t *testing.T) {
	out, err := NewPDFExporter().Render(attendanceDoc())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestReadTableCSV(t *testing.T) {
	body := "\ufeffName,Email,Batch\nAsha,asha@example.com,B1\n,,\nRavi, ravi@example.com ,B2\n"
	table, err := ReadTable("students.csv", strings.NewReader(body), 10)
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "batch"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, 2, table.Rows[0].Line)
	assert.Equal(t, 4, table.Rows[1].Line)
	assert.Equal(t, "ravi@example.com", table.Rows[1].Values["email"])
}

func TestReadTableRowLimit(t *testing.T) {
	body := "name\na\nb\nc\n"
	_, err := ReadTable("students.csv", strings.NewReader(body), 2)
	assert.Error(t, err)
}

func TestReadTableRejectsUnknownExtension(t *testing.T) {
	_, err := ReadTable("students.txt", strings.NewReader("name\n"), 10)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadTableXLSXRoundTrip(t *testing.T) {
	data := Dataset{
		Headers: []string{"name", "email"},
		Rows:    []map[string]string{{"name": "Asha", "email": "asha@example.com"}},
	}
	raw, err := WriteXLSX(data, "Students")
	require.NoError(t, err)

	table, err := ReadTable("students.xlsx", bytes.NewReader(raw), 10)
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "asha@example.com", table.Rows[0].Values["email"])
}

func TestXLSXExporterAppendsSummary(t *testing.T) {
	exporter := NewXLSXExporter()
	out, err := exporter.Render(attendanceDoc())
	require.NoError(t, err)
	assert.Equal(t, "xlsx", exporter.Extension())

	table, err := ReadTable("attendance.xlsx", bytes.NewReader(out), 10)
	require.NoError(t, err)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, "Asha", table.Rows[0].Values["name"])
	assert.Equal(t, "Present", table.Rows[2].Values["name"])
	assert.Equal(t, "1", table.Rows[2].Values["status"])
}
