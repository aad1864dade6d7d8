package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	content, err := exporter.Render(Dataset{
		Headers: []string{"Date", "Student", "Status"},
		Rows: []map[string]string{
			{"Date": "2026-09-01", "Student": "سارة أحمد", "Status": "حاضر"},
			{"Date": "2026-09-01", "Student": "عمر خالد", "Status": "غائب بعذر"},
		},
	})
	require.NoError(t, err)

	body := string(content)
	assert.True(t, strings.HasPrefix(body, "\ufeff"), "expected UTF-8 BOM prefix")
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(body, "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Date,Student,Status", lines[0])
	assert.Contains(t, lines[1], "سارة أحمد")
}

func TestCSVExporterMissingCellsStayEmpty(t *testing.T) {
	exporter := NewCSVExporter()
	content, err := exporter.Render(Dataset{
		Headers: []string{"A", "B"},
		Rows:    []map[string]string{{"A": "x"}},
	})
	require.NoError(t, err)
	assert.Contains(t, string(content), "x,")
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
