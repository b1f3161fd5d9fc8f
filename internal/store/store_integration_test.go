//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestIntegration_SaveAndGetCall(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	res, err := callparse.Parse(`<table>
<tr><td>Запись разговоров<br>05.Mar.2024 14:03:27</td></tr>
<tr><td>Кто звонил:</td><td>101</td></tr>
<tr><td>Длительность:</td><td>00:00:42</td></tr>
<tr><td>Отдел:</td><td>Продажи</td></tr>
<tr><td>Сотрудник</td><td>14:03:30</td><td>Добрый день</td></tr>
<tr><td>Клиент</td><td>14:03:35</td><td>Здравствуйте</td></tr>
</table>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	source := "integration-test-" + uuid.New().String()[:8] + ".html"
	id, err := s.SaveCall(ctx, source, res)
	if err != nil {
		t.Fatalf("SaveCall failed: %v", err)
	}
	if id == uuid.Nil {
		t.Fatal("expected non-nil call ID")
	}

	got, err := s.GetCall(ctx, id)
	if err != nil {
		t.Fatalf("GetCall failed: %v", err)
	}
	if got.SourceName != source {
		t.Errorf("expected source %q, got %q", source, got.SourceName)
	}
	if got.Header.Caller == nil || *got.Header.Caller != "101" {
		t.Errorf("expected caller 101, got %v", got.Header.Caller)
	}
	if got.Header.DurationSeconds == nil || *got.Header.DurationSeconds != 42 {
		t.Errorf("expected duration 42, got %v", got.Header.DurationSeconds)
	}
	if got.Header.CallDatetime == nil || !got.Header.CallDatetime.Equal(*res.Header.CallDatetime) {
		t.Errorf("expected call datetime %v, got %v", res.Header.CallDatetime, got.Header.CallDatetime)
	}
	if got.Header.Conversation != res.Header.Conversation {
		t.Errorf("conversation mismatch: %q", got.Header.Conversation)
	}
	if got.Header.Extra["Отдел"] != "Продажи" {
		t.Errorf("expected extra field, got %v", got.Header.Extra)
	}
	if len(got.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(got.Turns))
	}
	if got.Turns[1].TurnIndex != 2 || got.Turns[1].RoleEN != callparse.RoleClient {
		t.Errorf("unexpected second turn: %+v", got.Turns[1])
	}
}

func TestIntegration_SaveCallWithoutTurns(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	res, err := callparse.Parse(`<table></table>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	id, err := s.SaveCall(ctx, "empty.html", res)
	if err != nil {
		t.Fatalf("SaveCall failed: %v", err)
	}
	got, err := s.GetCall(ctx, id)
	if err != nil {
		t.Fatalf("GetCall failed: %v", err)
	}
	if len(got.Turns) != 0 {
		t.Errorf("expected no turns, got %d", len(got.Turns))
	}
	if got.Header.Caller != nil {
		t.Errorf("expected NULL caller, got %q", *got.Header.Caller)
	}
}

func TestIntegration_GetCallNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetCall(context.Background(), uuid.New())
	if !errors.Is(err, ErrCallNotFound) {
		t.Fatalf("expected ErrCallNotFound, got %v", err)
	}
}
