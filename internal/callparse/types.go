// Package callparse extracts call metadata and dialogue turns from the HTML
// that the telephony platform exports for a recorded call.
package callparse

import (
	"encoding/json"
	"time"
)

// Role is the English name of a dialogue participant.
type Role string

const (
	RoleClient   Role = "client"
	RoleEmployee Role = "employee"
)

// Canonical header field names.
const (
	FieldCallDatetimeRaw = "call_datetime_raw"
	FieldCallDatetime    = "call_datetime"
	FieldLineNumber      = "line_number"
	FieldCaller          = "caller"
	FieldCallee          = "callee"
	FieldDurationRaw     = "duration_raw"
	FieldDurationSeconds = "duration_seconds"
	FieldConversation    = "conversation"
)

// HeaderColumns is the fixed column order of a flattened CallHeader.
var HeaderColumns = []string{
	FieldCallDatetimeRaw,
	FieldCallDatetime,
	FieldLineNumber,
	FieldCaller,
	FieldCallee,
	FieldDurationRaw,
	FieldDurationSeconds,
	FieldConversation,
}

// TurnColumns is the fixed column order of a DialogueTurn record.
var TurnColumns = []string{"turn_index", "role_ru", "role_en", "timestamp_local", "text"}

// CallHeader holds the metadata of one call. Nil pointers are absent values.
type CallHeader struct {
	CallDatetimeRaw *string
	CallDatetime    *time.Time
	LineNumber      *string
	Caller          *string
	Callee          *string
	DurationRaw     *string
	DurationSeconds *int

	// Conversation is the numbered transcript, one line per turn.
	Conversation string

	// Extra holds label/value rows whose label has no canonical field.
	Extra      map[string]string
	extraOrder []string
}

// DialogueTurn is one utterance of the call.
type DialogueTurn struct {
	TurnIndex      int    `json:"turn_index"`
	RoleRU         string `json:"role_ru"`
	RoleEN         Role   `json:"role_en"`
	TimestampLocal string `json:"timestamp_local"`
	Text           string `json:"text"`
}

// Field is one named value of a flattened header. Value is nil when absent.
type Field struct {
	Name  string
	Value any
}

// ExtraKeys returns the extra field names in the order they were first seen.
func (h CallHeader) ExtraKeys() []string {
	out := make([]string, len(h.extraOrder))
	copy(out, h.extraOrder)
	return out
}

// Get returns the value stored under a field name, canonical or extra.
func (h CallHeader) Get(name string) (any, bool) {
	switch name {
	case FieldCallDatetimeRaw:
		return derefString(h.CallDatetimeRaw)
	case FieldCallDatetime:
		if h.CallDatetime == nil {
			return nil, false
		}
		return *h.CallDatetime, true
	case FieldLineNumber:
		return derefString(h.LineNumber)
	case FieldCaller:
		return derefString(h.Caller)
	case FieldCallee:
		return derefString(h.Callee)
	case FieldDurationRaw:
		return derefString(h.DurationRaw)
	case FieldDurationSeconds:
		if h.DurationSeconds == nil {
			return nil, false
		}
		return *h.DurationSeconds, true
	case FieldConversation:
		return h.Conversation, true
	}
	v, ok := h.Extra[name]
	if !ok {
		return nil, false
	}
	return v, true
}

// Fields flattens the header into fixed columns followed by extra fields.
func (h CallHeader) Fields() []Field {
	fields := make([]Field, 0, len(HeaderColumns)+len(h.extraOrder))
	for _, name := range HeaderColumns {
		v, _ := h.Get(name)
		fields = append(fields, Field{Name: name, Value: v})
	}
	for _, name := range h.extraOrder {
		fields = append(fields, Field{Name: name, Value: h.Extra[name]})
	}
	return fields
}

// MarshalJSON encodes the header as one flat object.
func (h CallHeader) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(HeaderColumns)+len(h.extraOrder))
	for _, f := range h.Fields() {
		m[f.Name] = f.Value
	}
	return json.Marshal(m)
}

// Set stores a value under a canonical field name or, for any other name,
// as an extra field. Setting an existing extra field keeps its position.
// Derived fields are reserved and cannot be set.
func (h *CallHeader) Set(name, value string) {
	v := value
	switch name {
	case FieldCallDatetimeRaw, FieldCallDatetime, FieldDurationSeconds, FieldConversation:
		return
	case FieldLineNumber:
		h.LineNumber = &v
	case FieldCaller:
		h.Caller = &v
	case FieldCallee:
		h.Callee = &v
	case FieldDurationRaw:
		h.DurationRaw = &v
	default:
		if h.Extra == nil {
			h.Extra = make(map[string]string)
		}
		if _, seen := h.Extra[name]; !seen {
			h.extraOrder = append(h.extraOrder, name)
		}
		h.Extra[name] = v
	}
}

func derefString(s *string) (any, bool) {
	if s == nil {
		return nil, false
	}
	return *s, true
}

// Stats counts how the rows of a document were classified.
type Stats struct {
	Rows           int `json:"rows"`
	BannerRows     int `json:"banner_rows"`
	LabelValueRows int `json:"label_value_rows"`
	DialogueRows   int `json:"dialogue_rows"`
	IgnoredRows    int `json:"ignored_rows"`
}

// Result is the outcome of parsing one document.
type Result struct {
	Header CallHeader
	Turns  []DialogueTurn
	Stats  Stats
}
