package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Kind tells renderers how to display a message body.
type Kind string

const (
	KindText  Kind = "text"
	KindTable Kind = "table"
	KindRaw   Kind = "raw"
)

// Row is one record of a tabular answer, keyed by column name.
type Row map[string]any

// Table holds a tabular answer. Rows are not required to carry every column;
// renderers show missing keys as empty cells.
type Table struct {
	Columns []string `json:"columns"`
	Data    []Row    `json:"data"`
}

// Message is one immutable turn in the chat log.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Kind      Kind      `json:"kind"`
	Text      string    `json:"text,omitempty"`
	Table     *Table    `json:"table,omitempty"`
	IsError   bool      `json:"isError"`
	CreatedAt time.Time `json:"createdAt"`
}

var ErrInvalidMessage = errors.New("invalid message")

// NewID returns a time-ordered identifier. IDs generated by one process are
// strictly increasing, even within the same clock tick.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NewUserMessage builds the message recorded when the user submits a query.
func NewUserMessage(text string) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleUser,
		Kind:      KindText,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTextMessage builds an assistant text message.
func NewTextMessage(text string, isError bool) Message {
	return Message{
		ID:        NewID(),
		Role:      RoleAssistant,
		Kind:      KindText,
		Text:      text,
		IsError:   isError,
		CreatedAt: time.Now().UTC(),
	}
}

// NewRawMessage builds an assistant message shown preformatted.
func NewRawMessage(text string) Message {
	msg := NewTextMessage(text, false)
	msg.Kind = KindRaw
	return msg
}

// NewTableMessage builds an assistant table message.
func NewTableMessage(columns []string, rows []Row) Message {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = []Row{}
	}
	return Message{
		ID:        NewID(),
		Role:      RoleAssistant,
		Kind:      KindTable,
		Table:     &Table{Columns: columns, Data: rows},
		CreatedAt: time.Now().UTC(),
	}
}

// Validate reports whether the body matches the declared kind and role.
func (m Message) Validate() error {
	switch m.Role {
	case RoleUser:
		if m.Kind != KindText || m.IsError {
			return fmt.Errorf("%w: user messages are plain text without error flag", ErrInvalidMessage)
		}
	case RoleAssistant:
	default:
		return fmt.Errorf("%w: unknown role %q", ErrInvalidMessage, m.Role)
	}

	switch m.Kind {
	case KindText, KindRaw:
		if m.Table != nil {
			return fmt.Errorf("%w: %s message carries a table", ErrInvalidMessage, m.Kind)
		}
	case KindTable:
		if m.Table == nil || m.Text != "" {
			return fmt.Errorf("%w: table message must carry only a table", ErrInvalidMessage)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidMessage, m.Kind)
	}
	return nil
}
