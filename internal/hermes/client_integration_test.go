//go:build integration

package hermes

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
)

func skipWithoutNATS(t *testing.T) string {
	t.Helper()
	url := os.Getenv("NATS_URL")
	if url == "" {
		t.Skip("NATS_URL not set, skipping integration test")
	}
	return url
}

func TestIntegration_PublishCallParsed(t *testing.T) {
	natsURL := skipWithoutNATS(t)
	ctx := context.Background()

	client, err := NewClient(ctx, natsURL, os.Getenv("NATS_TOKEN"), slog.Default())
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	received := make(chan CallParsedEvent, 1)
	err = client.Subscribe(SubjectCallParsed, func(subject string, data []byte) {
		var evt CallParsedEvent
		json.Unmarshal(data, &evt)
		received <- evt
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Give subscription time to propagate
	time.Sleep(100 * time.Millisecond)

	res, err := callparse.Parse(`<table><tr><td>Клиент</td><td>1</td><td>Алло</td></tr></table>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := client.PublishCallParsed(NewCallParsedEvent("", "integration.html", res)); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case evt := <-received:
		if evt.SourceName != "integration.html" || evt.ClientTurns != 1 {
			t.Errorf("unexpected event: %+v", evt)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
	}
}
