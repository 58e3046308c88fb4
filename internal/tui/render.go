package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
)

const columnGap = 2

var exampleQuestions = []string{
	"What's the average CO2 level in Room 1?",
	"Show me temperature data by room",
	"Which room has the highest humidity?",
}

// RenderMessage renders one chat message for a terminal of the given width.
func RenderMessage(styles Styles, msg chat.Message, width int) string {
	if msg.Role == chat.RoleUser {
		body := styles.User.Render(wrap(msg.Text, width-4))
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, body)
	}

	var body string
	switch msg.Kind {
	case chat.KindTable:
		body = styles.Label.Render("Answer:") + "\n" + RenderTable(styles, msg.Table)
	case chat.KindRaw:
		body = styles.Raw.Render(msg.Text)
	default:
		body = renderText(styles, msg, width-4)
	}

	if msg.IsError {
		return styles.Error.Render(body)
	}
	return styles.Assistant.Render(body)
}

// RenderTranscript renders every message, separated by blank lines.
func RenderTranscript(styles Styles, messages []chat.Message, width int) string {
	if len(messages) == 0 {
		return RenderWelcome(styles)
	}
	parts := make([]string, 0, len(messages))
	for _, msg := range messages {
		parts = append(parts, RenderMessage(styles, msg, width))
	}
	return strings.Join(parts, "\n\n")
}

// RenderWelcome shows the empty-state hints.
func RenderWelcome(styles Styles) string {
	var sb strings.Builder
	sb.WriteString("Ask a question about your air quality data.\n\nTry one of these:\n")
	for _, q := range exampleQuestions {
		sb.WriteString("  • ")
		sb.WriteString(q)
		sb.WriteString("\n")
	}
	return styles.Welcome.Render(sb.String())
}

// RenderTable lays out the columns in order. Rows missing a column get an
// empty cell.
func RenderTable(styles Styles, table *chat.Table) string {
	if table == nil || len(table.Columns) == 0 {
		return ""
	}

	cells := make([][]string, len(table.Data))
	widths := make([]int, len(table.Columns))
	for i, col := range table.Columns {
		widths[i] = lipgloss.Width(col)
	}
	for r, row := range table.Data {
		cells[r] = make([]string, len(table.Columns))
		for i, col := range table.Columns {
			cell := FormatCell(row[col])
			cells[r][i] = cell
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for i, col := range table.Columns {
		sb.WriteString(styles.TableHead.Render(pad(col, widths[i], i == len(table.Columns)-1)))
	}
	sb.WriteString("\n")

	total := 0
	for _, w := range widths {
		total += w + columnGap
	}
	sb.WriteString(strings.Repeat("─", total-columnGap))

	for _, row := range cells {
		sb.WriteString("\n")
		for i, cell := range row {
			sb.WriteString(styles.TableCell.Render(pad(cell, widths[i], i == len(row)-1)))
		}
	}
	return sb.String()
}

// FormatCell turns a decoded JSON scalar into display text.
func FormatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool, float64, int, int64:
		return fmt.Sprint(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

func pad(s string, width int, last bool) string {
	if last {
		return s
	}
	gap := width - lipgloss.Width(s) + columnGap
	if gap < 0 {
		gap = 0
	}
	return s + strings.Repeat(" ", gap)
}

func renderText(styles Styles, msg chat.Message, width int) string {
	if styles.Markdown == nil || msg.IsError {
		return wrap(msg.Text, width)
	}
	out, err := styles.Markdown.Render(msg.Text)
	if err != nil {
		return wrap(msg.Text, width)
	}
	return strings.Trim(out, "\n")
}

func wrap(s string, width int) string {
	if width < 10 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}
