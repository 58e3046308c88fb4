package tui

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/glamour"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
)

func TestRenderTableAlignsColumnsInOrder(t *testing.T) {
	table := &chat.Table{
		Columns: []string{"room", "co2"},
		Data: []chat.Row{
			{"room": "Room 1", "co2": json.Number("412")},
			{"room": "Room 2"},
		},
	}

	lines := strings.Split(RenderTable(Styles{}, table), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "room    co2", lines[0])
	assert.Equal(t, strings.Repeat("─", 11), lines[1])
	assert.Equal(t, "Room 1  412", lines[2])
	assert.Equal(t, "Room 2  ", lines[3])
}

func TestRenderTableWithoutColumns(t *testing.T) {
	assert.Empty(t, RenderTable(Styles{}, nil))
	assert.Empty(t, RenderTable(Styles{}, &chat.Table{}))
}

func TestFormatCell(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{json.Number("0.1"), "0.1"},
		{true, "true"},
		{float64(2.5), "2.5"},
		{map[string]any{"a": 1}, `{"a":1}`},
		{[]any{1, "b"}, `[1,"b"]`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatCell(tc.in))
	}
}

func TestRenderMessageKinds(t *testing.T) {
	styles := Styles{}

	out := RenderMessage(styles, chat.NewUserMessage("how warm is it?"), 60)
	assert.Contains(t, out, "how warm is it?")

	out = RenderMessage(styles, chat.NewTextMessage("Something went wrong. Please try again.", true), 60)
	assert.Contains(t, out, "Something went wrong.")

	out = RenderMessage(styles, chat.NewRawMessage("{\n  \"a\": 1\n}"), 60)
	assert.Contains(t, out, "\"a\": 1")

	out = RenderMessage(styles, chat.NewTableMessage([]string{"n"}, []chat.Row{{"n": json.Number("1")}}), 60)
	assert.Contains(t, out, "Answer:")
	assert.Contains(t, out, "n")
}

func TestRenderTranscriptShowsWelcomeWhenEmpty(t *testing.T) {
	out := RenderTranscript(Styles{}, nil, 80)
	for _, q := range exampleQuestions {
		assert.Contains(t, out, q)
	}

	out = RenderTranscript(Styles{}, []chat.Message{chat.NewUserMessage("hi")}, 80)
	assert.NotContains(t, out, exampleQuestions[0])
	assert.Contains(t, out, "hi")
}

func TestRenderMessageUsesMarkdownForAnswers(t *testing.T) {
	md, err := glamour.NewTermRenderer(glamour.WithStandardStyle("notty"), glamour.WithWordWrap(60))
	require.NoError(t, err)
	styles := Styles{Markdown: md}

	out := RenderMessage(styles, chat.NewTextMessage("# Summary\n\nCO2 averages 412 ppm.", false), 60)
	assert.Contains(t, out, "Summary")
	assert.Contains(t, out, "CO2 averages 412 ppm.")
}
