package chat

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/L4Y3R/ai-agent-work-sample/internal/model/chat"
	agentModel "github.com/L4Y3R/ai-agent-work-sample/internal/model/agent"
	"github.com/L4Y3R/ai-agent-work-sample/internal/service/agent"
)

const (
	GenericErrorText = "Something went wrong. Please try again."
	NoResponseText   = "No response received."
)

// Normalize turns an agent reply, or the error returned instead of one, into
// the assistant message shown to the user. It never fails.
//
// A success:false reply that still carries data is shown as ordinary text;
// only an empty failure is flagged as an error.
func Normalize(raw *agentModel.RawResponse, err error) chat.Message {
	if err != nil {
		return normalizeError(err)
	}

	if raw == nil || !raw.Output.Success {
		if raw != nil && raw.Output.HasData() {
			return chat.NewTextMessage(dataText(raw.Output.Data), false)
		}
		return chat.NewTextMessage(NoResponseText, true)
	}

	out := raw.Output
	switch out.Type {
	case agentModel.TypeText:
		return chat.NewTextMessage(dataText(out.Data), false)
	case agentModel.TypeDataFrame:
		rows, ok := decodeRows(out.Data)
		if !ok {
			return chat.NewRawMessage(indentJSON(out.Data))
		}
		return chat.NewTableMessage(out.Columns, rows)
	default:
		return chat.NewRawMessage(indentJSON(out.Data))
	}
}

func normalizeError(err error) chat.Message {
	var vErr *agent.ValidationError
	if errors.As(err, &vErr) {
		return chat.NewTextMessage(vErr.Reason, false)
	}

	var tErr *agent.TransportError
	if errors.As(err, &tErr) && tErr.ServerMessage != "" {
		return chat.NewTextMessage(tErr.ServerMessage, true)
	}
	return chat.NewTextMessage(GenericErrorText, true)
}

// dataText returns a JSON string's value, or the compact JSON text of
// anything else.
func dataText(data json.RawMessage) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return string(trimmed)
	}
	return buf.String()
}

// decodeRows reads an array of records, keeping numbers exactly as sent.
func decodeRows(data json.RawMessage) ([]chat.Row, bool) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []chat.Row{}, true
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var rows []chat.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, false
	}
	if rows == nil {
		rows = []chat.Row{}
	}
	for i, row := range rows {
		if row == nil {
			rows[i] = chat.Row{}
		}
	}
	return rows, true
}

// indentJSON re-indents data with two spaces, keeping key order as sent.
func indentJSON(data json.RawMessage) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return "null"
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
