// Package ingest turns raw call exports into parsed records and hands them
// to the optional persistence and event sinks.
package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/mangoconv/internal/callparse"
	"github.com/MikeSquared-Agency/mangoconv/internal/hermes"
	"github.com/MikeSquared-Agency/mangoconv/internal/metrics"
	"github.com/MikeSquared-Agency/mangoconv/internal/source"
)

// Surfaces label where a document came in.
const (
	SurfaceCLI   = "cli"
	SurfaceBatch = "batch"
	SurfaceWeb   = "web"
	SurfaceAPI   = "api"
)

// CallStore persists parsed calls.
type CallStore interface {
	SaveCall(ctx context.Context, sourceName string, res *callparse.Result) (uuid.UUID, error)
}

// EventPublisher announces parsed calls.
type EventPublisher interface {
	PublishCallParsed(evt hermes.CallParsedEvent) error
}

// Call is one parsed document.
type Call struct {
	Name    string
	Charset string
	ID      uuid.UUID // uuid.Nil unless stored
	Result  *callparse.Result
}

// Service parses documents. Store and events are optional.
type Service struct {
	parser  *callparse.Parser
	charset string
	store   CallStore
	events  EventPublisher
	metrics *metrics.ParseMetrics
	logger  *slog.Logger
}

type Option func(*Service)

func WithStore(s CallStore) Option { return func(svc *Service) { svc.store = s } }

func WithEvents(p EventPublisher) Option { return func(svc *Service) { svc.events = p } }

func WithMetrics(m *metrics.ParseMetrics) Option { return func(svc *Service) { svc.metrics = m } }

// WithCharset forces the input charset instead of sniffing it.
func WithCharset(name string) Option { return func(svc *Service) { svc.charset = name } }

func New(parser *callparse.Parser, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{parser: parser, logger: logger}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Parse decodes and parses one document. Sink failures are logged and do
// not fail the call.
func (s *Service) Parse(ctx context.Context, surface, name string, data []byte) (*Call, error) {
	start := time.Now()
	doc, err := source.Read(bytes.NewReader(data), name, s.charset)
	if err != nil {
		s.metrics.RecordFailure(surface, metrics.OutcomeFailed)
		return nil, err
	}
	return s.parseDocument(ctx, surface, doc, start)
}

// ParseFile reads path from disk and parses it.
func (s *Service) ParseFile(ctx context.Context, surface, path string) (*Call, error) {
	start := time.Now()
	doc, err := source.ReadFile(path, s.charset)
	if err != nil {
		s.metrics.RecordFailure(surface, metrics.OutcomeFailed)
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s.parseDocument(ctx, surface, doc, start)
}

func (s *Service) parseDocument(ctx context.Context, surface string, doc *source.Document, start time.Time) (*Call, error) {
	res, err := s.parser.ParseBytes(doc.Content)
	if err != nil {
		outcome := metrics.OutcomeFailed
		if errors.Is(err, callparse.ErrNoTableFound) {
			outcome = metrics.OutcomeNoTable
		}
		s.metrics.RecordFailure(surface, outcome)
		return nil, fmt.Errorf("parse %s: %w", doc.Name, err)
	}
	s.metrics.RecordParsed(surface, res, time.Since(start).Seconds())

	call := &Call{Name: doc.Name, Charset: doc.Charset, Result: res}
	s.sink(ctx, call)
	return call, nil
}

func (s *Service) sink(ctx context.Context, call *Call) {
	if s.store != nil {
		id, err := s.store.SaveCall(ctx, call.Name, call.Result)
		if err != nil {
			s.logger.Error("failed to store call", "source", call.Name, "error", err)
		} else {
			call.ID = id
		}
	}

	if s.events != nil {
		callID := ""
		if call.ID != uuid.Nil {
			callID = call.ID.String()
		}
		if err := s.events.PublishCallParsed(hermes.NewCallParsedEvent(callID, call.Name, call.Result)); err != nil {
			s.logger.Error("failed to publish call", "source", call.Name, "error", err)
		}
	}

	s.logger.Debug("call parsed",
		"source", call.Name,
		"charset", call.Charset,
		"turns", len(call.Result.Turns),
		"ignored_rows", call.Result.Stats.IgnoredRows,
	)
}
