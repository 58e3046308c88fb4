package agent

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Request is the body posted to the agent's /query endpoint.
type Request struct {
	Query string `json:"query"`
}

// RawResponse is the agent's reply envelope.
type RawResponse struct {
	Output Output `json:"output"`
}

// Output carries the answer. Data is kept undecoded so that object key order
// and number formatting survive until the normalizer looks at it.
type Output struct {
	Success bool            `json:"success"`
	Type    string          `json:"type,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Columns []string        `json:"columns,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   string          `json:"error,omitempty"`
}

const (
	TypeText      = "text"
	TypeDataFrame = "dataframe"
)

// HasData reports whether data holds a truthy value. Absent data, null, "",
// false and any zero number count as no data; objects and arrays always
// count, even when empty.
func (o Output) HasData() bool {
	trimmed := bytes.TrimSpace(o.Data)
	if len(trimmed) == 0 {
		return false
	}
	switch string(trimmed) {
	case "null", `""`, "false":
		return false
	}
	if c := trimmed[0]; c == '-' || (c >= '0' && c <= '9') {
		if n, err := strconv.ParseFloat(string(trimmed), 64); err == nil && n == 0 {
			return false
		}
	}
	return true
}

// TextResponse wraps a plain answer in the agent envelope.
func TextResponse(text string) *RawResponse {
	data, _ := json.Marshal(text)
	return &RawResponse{Output: Output{Success: true, Type: TypeText, Data: data}}
}
