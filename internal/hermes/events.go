package hermes

import (
	"time"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

// SubjectCallParsed is the NATS subject a parsed call is announced on.
const SubjectCallParsed = "mango.call.parsed"

// CallParsedEvent summarises a parsed call for downstream consumers.
// CallID is empty when the call was not persisted.
type CallParsedEvent struct {
	CallID          string     `json:"call_id,omitempty"`
	SourceName      string     `json:"source_name"`
	CallDatetime    *time.Time `json:"call_datetime"`
	LineNumber      *string    `json:"line_number"`
	Caller          *string    `json:"caller"`
	Callee          *string    `json:"callee"`
	DurationSeconds *int       `json:"duration_seconds"`
	Turns           int        `json:"turns"`
	ClientTurns     int        `json:"client_turns"`
	EmployeeTurns   int        `json:"employee_turns"`
	Timestamp       time.Time  `json:"timestamp"`
}

// NewCallParsedEvent builds the event for a parsed call.
func NewCallParsedEvent(callID, sourceName string, res *callparse.Result) CallParsedEvent {
	evt := CallParsedEvent{
		CallID:          callID,
		SourceName:      sourceName,
		CallDatetime:    res.Header.CallDatetime,
		LineNumber:      res.Header.LineNumber,
		Caller:          res.Header.Caller,
		Callee:          res.Header.Callee,
		DurationSeconds: res.Header.DurationSeconds,
		Turns:           len(res.Turns),
		Timestamp:       time.Now().UTC(),
	}
	for _, t := range res.Turns {
		if t.RoleEN == callparse.RoleClient {
			evt.ClientTurns++
		} else {
			evt.EmployeeTurns++
		}
	}
	return evt
}
