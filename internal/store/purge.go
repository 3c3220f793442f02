package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ludovico/transcriber-backend/internal/observability/metrics"
)

// DeleteCollection removes every document directly under path, batchSize
// documents at a time. Each iteration queries up to batchSize documents
// ordered by id, deletes them in one atomic batch and loops until a query
// comes back empty. The explicit loop keeps stack depth constant no
// matter how large the collection is; do not rewrite this as recursion.
//
// Any failed query or batch aborts the purge with the store error;
// already-committed batches stand.
func DeleteCollection(ctx context.Context, s Store, path string, batchSize int) error {
	if batchSize <= 0 {
		return fmt.Errorf("delete collection %s: batch size must be positive, got %d", path, batchSize)
	}

	m := metrics.DefaultMetrics
	deleted := 0
	for {
		docs, err := s.QueryOrdered(ctx, path, DocumentID, batchSize)
		if err != nil {
			return fmt.Errorf("delete collection %s: %w", path, err)
		}
		if len(docs) == 0 {
			log.Debug().Str("path", path).Int("deleted", deleted).Msg("Collection purge complete")
			return nil
		}

		ops := make([]Op, 0, len(docs))
		for _, doc := range docs {
			ops = append(ops, Op{Kind: OpDelete, Path: doc.Path})
		}
		if err := s.BatchWrite(ctx, ops); err != nil {
			return fmt.Errorf("delete collection %s: %w", path, err)
		}

		deleted += len(docs)
		m.PurgeBatches.Inc()
		m.PurgeDocuments.Add(float64(len(docs)))
	}
}
