package store

import (
	"context"
	"time"

	"github.com/ludovico/transcriber-backend/internal/observability/metrics"
)

// instrumented wraps a Store and records per-operation metrics.
type instrumented struct {
	inner Store
	m     *metrics.Metrics
}

// Instrument returns a Store that reports operation counts, errors and
// latency to the default metrics registry.
func Instrument(inner Store) Store {
	return &instrumented{inner: inner, m: metrics.DefaultMetrics}
}

func (s *instrumented) Write(ctx context.Context, path string, fields map[string]any) error {
	start := time.Now()
	err := s.inner.Write(ctx, path, fields)
	s.m.RecordStoreOp("write", err, start)
	return err
}

func (s *instrumented) Read(ctx context.Context, path string) (map[string]any, error) {
	start := time.Now()
	fields, err := s.inner.Read(ctx, path)
	s.m.RecordStoreOp("read", err, start)
	return fields, err
}

func (s *instrumented) QueryOrdered(ctx context.Context, collection, orderBy string, limit int) ([]Document, error) {
	start := time.Now()
	docs, err := s.inner.QueryOrdered(ctx, collection, orderBy, limit)
	s.m.RecordStoreOp("query", err, start)
	return docs, err
}

func (s *instrumented) BatchWrite(ctx context.Context, ops []Op) error {
	start := time.Now()
	err := s.inner.BatchWrite(ctx, ops)
	s.m.RecordStoreOp("batch", err, start)
	return err
}

func (s *instrumented) NewID() string {
	return s.inner.NewID()
}

func (s *instrumented) Close() error {
	return s.inner.Close()
}
