package component

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rovshanmuradov/heliox/internal/ui/style"
)

// TableColumn represents a column configuration
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// TableRow represents a row of data
type TableRow struct {
	Data      []string
	Highlight bool
}

// Table represents a data table component
type Table struct {
	columns     []TableColumn
	rows        []TableRow
	width       int
	selectedRow int
	emptyText   string

	headerStyle      lipgloss.Style
	rowStyle         lipgloss.Style
	highlightStyle   lipgloss.Style
	selectedRowStyle lipgloss.Style
	borderStyle      lipgloss.Style
	emptyStyle       lipgloss.Style
}

// NewTable creates a new table component
func NewTable() *Table {
	palette := style.DefaultPalette()

	return &Table{
		emptyText: "No rows",

		headerStyle: lipgloss.NewStyle().
			Foreground(palette.Secondary).
			Bold(true).
			Padding(0, 1),

		rowStyle: lipgloss.NewStyle().
			Foreground(palette.Text).
			Padding(0, 1),

		highlightStyle: lipgloss.NewStyle().
			Foreground(palette.Owned).
			Padding(0, 1),

		selectedRowStyle: lipgloss.NewStyle().
			Foreground(palette.Background).
			Background(palette.Primary).
			Padding(0, 1),

		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(palette.TextMuted),

		emptyStyle: lipgloss.NewStyle().
			Foreground(palette.TextMuted).
			Italic(true).
			Padding(0, 1),
	}
}

// SetColumns sets the table columns. A zero width shares the remaining
// space with the other zero width columns.
func (t *Table) SetColumns(columns []TableColumn) *Table {
	t.columns = columns
	return t
}

// SetEmptyText sets what the table shows without rows.
func (t *Table) SetEmptyText(text string) *Table {
	t.emptyText = text
	return t
}

// SetRows replaces the rows, keeping the selection in range.
func (t *Table) SetRows(rows []TableRow) *Table {
	t.rows = rows
	if t.selectedRow >= len(t.rows) {
		t.selectedRow = len(t.rows) - 1
	}
	if t.selectedRow < 0 {
		t.selectedRow = 0
	}
	return t
}

// SetWidth sets the table width
func (t *Table) SetWidth(width int) *Table {
	t.width = width
	return t
}

// GetSelectedRow returns the currently selected row index, -1 when empty.
func (t *Table) GetSelectedRow() int {
	if len(t.rows) == 0 {
		return -1
	}
	return t.selectedRow
}

// MoveUp moves selection up
func (t *Table) MoveUp() *Table {
	if t.selectedRow > 0 {
		t.selectedRow--
	}
	return t
}

// MoveDown moves selection down
func (t *Table) MoveDown() *Table {
	if t.selectedRow < len(t.rows)-1 {
		t.selectedRow++
	}
	return t
}

// View renders the table
func (t *Table) View() string {
	if len(t.columns) == 0 {
		return ""
	}

	widths := t.columnWidths()
	var content strings.Builder

	var header, separator []string
	for i, col := range t.columns {
		header = append(header, renderCell(col.Header, widths[i], col.Align, t.headerStyle))
		separator = append(separator, strings.Repeat("─", widths[i]))
	}
	content.WriteString(strings.Join(header, "│"))
	content.WriteString("\n")
	content.WriteString(strings.Join(separator, "┼"))

	if len(t.rows) == 0 {
		content.WriteString("\n")
		content.WriteString(t.emptyStyle.Render(t.emptyText))
	}

	for rowIndex, row := range t.rows {
		rowStyle := t.rowStyle
		if row.Highlight {
			rowStyle = t.highlightStyle
		}
		if rowIndex == t.selectedRow {
			rowStyle = t.selectedRowStyle
		}

		cells := make([]string, len(t.columns))
		for i, col := range t.columns {
			var cellData string
			if i < len(row.Data) {
				cellData = row.Data[i]
			}
			cells[i] = renderCell(cellData, widths[i], col.Align, rowStyle)
		}
		content.WriteString("\n")
		content.WriteString(strings.Join(cells, "│"))
	}

	return t.borderStyle.Render(content.String())
}

func renderCell(content string, width int, align lipgloss.Position, style lipgloss.Style) string {
	runes := []rune(content)
	// Padding(0, 1) takes two columns of the cell.
	inner := width - 2
	if inner > 3 && len(runes) > inner {
		content = string(runes[:inner-3]) + "..."
	}
	return style.Width(width).Align(align).Render(content)
}

func (t *Table) columnWidths() []int {
	widths := make([]int, len(t.columns))
	explicit, auto := 0, 0
	for i, col := range t.columns {
		widths[i] = col.Width
		if col.Width > 0 {
			explicit += col.Width
		} else {
			auto++
		}
	}
	if auto == 0 {
		return widths
	}

	// Border and separators.
	available := t.width - explicit - (len(t.columns) - 1) - 2
	autoWidth := 12
	if available/auto > autoWidth {
		autoWidth = available / auto
	}
	for i := range widths {
		if widths[i] <= 0 {
			widths[i] = autoWidth
		}
	}
	return widths
}
