package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

// SaveCall writes a parsed call and its turns in one transaction.
func (s *Store) SaveCall(ctx context.Context, sourceName string, res *callparse.Result) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	h := res.Header
	extra := h.Extra
	if extra == nil {
		extra = map[string]string{}
	}

	callID := uuid.New()
	_, err = tx.Exec(ctx, `
		INSERT INTO calls (id, source_name, call_datetime_raw, call_datetime, line_number, caller, callee,
			duration_raw, duration_seconds, conversation, extra, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())`,
		callID, sourceName, h.CallDatetimeRaw, h.CallDatetime, h.LineNumber, h.Caller, h.Callee,
		h.DurationRaw, h.DurationSeconds, h.Conversation, extra,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert call: %w", err)
	}

	if len(res.Turns) > 0 {
		rows := make([][]any, len(res.Turns))
		for i, t := range res.Turns {
			rows[i] = []any{callID, t.TurnIndex, t.RoleRU, string(t.RoleEN), t.TimestampLocal, t.Text}
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"call_turns"},
			[]string{"call_id", "turn_index", "role_ru", "role_en", "timestamp_local", "text"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert turns: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("commit: %w", err)
	}

	return callID, nil
}

// ErrCallNotFound is returned by GetCall for an unknown id.
var ErrCallNotFound = errors.New("call not found")

// CallRow is a stored call with its turns.
type CallRow struct {
	ID         uuid.UUID
	SourceName string
	Header     callparse.CallHeader
	Turns      []callparse.DialogueTurn
	CreatedAt  time.Time
}

// GetCall fetches a stored call by ID.
func (s *Store) GetCall(ctx context.Context, id uuid.UUID) (*CallRow, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, source_name, call_datetime_raw, call_datetime, line_number, caller, callee,
			duration_raw, duration_seconds, conversation, extra, created_at
		FROM calls WHERE id = $1`, id)

	var (
		c     CallRow
		extra map[string]string
	)
	h := &c.Header
	err := row.Scan(&c.ID, &c.SourceName, &h.CallDatetimeRaw, &h.CallDatetime, &h.LineNumber, &h.Caller, &h.Callee,
		&h.DurationRaw, &h.DurationSeconds, &h.Conversation, &extra, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query call: %w", err)
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Set(k, extra[k])
	}

	rows, err := s.pool.Query(ctx, `
		SELECT turn_index, role_ru, role_en, timestamp_local, text
		FROM call_turns WHERE call_id = $1
		ORDER BY turn_index`, id)
	if err != nil {
		return nil, fmt.Errorf("query turns: %w", err)
	}
	c.Turns, err = pgx.CollectRows(rows, func(r pgx.CollectableRow) (callparse.DialogueTurn, error) {
		var t callparse.DialogueTurn
		var role string
		err := r.Scan(&t.TurnIndex, &t.RoleRU, &role, &t.TimestampLocal, &t.Text)
		t.RoleEN = callparse.Role(role)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan turns: %w", err)
	}

	return &c, nil
}
