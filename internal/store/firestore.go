package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
)

// Firestore implements Store against Google Cloud Firestore.
// Requires GOOGLE_APPLICATION_CREDENTIALS to be set.
type Firestore struct {
	client *firestore.Client
}

// NewFirestore creates a Firestore-backed store for the given project.
func NewFirestore(ctx context.Context, projectID string) (*Firestore, error) {
	c, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return &Firestore{client: c}, nil
}

func (s *Firestore) Write(ctx context.Context, path string, fields map[string]any) error {
	_, err := s.client.Doc(path).Set(ctx, translateSentinels(fields), firestore.MergeAll)
	return classify("write", path, err)
}

func (s *Firestore) Read(ctx context.Context, path string) (map[string]any, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		return nil, classify("read", path, err)
	}
	return snap.Data(), nil
}

func (s *Firestore) QueryOrdered(ctx context.Context, collection, orderBy string, limit int) ([]Document, error) {
	q := s.client.Collection(collection).OrderBy(orderBy, firestore.Asc)
	if orderBy != DocumentID {
		// Deterministic order for equal keys.
		q = q.OrderBy(firestore.DocumentID, firestore.Asc)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []Document
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, classify("query", collection, err)
		}
		docs = append(docs, Document{
			ID:     snap.Ref.ID,
			Path:   collection + "/" + snap.Ref.ID,
			Fields: snap.Data(),
		})
	}
	return docs, nil
}

func (s *Firestore) BatchWrite(ctx context.Context, ops []Op) error {
	batch := s.client.Batch()
	for _, op := range ops {
		ref := s.client.Doc(op.Path)
		switch op.Kind {
		case OpCreate:
			batch.Create(ref, translateSentinels(op.Fields))
		case OpSet:
			batch.Set(ref, translateSentinels(op.Fields), firestore.MergeAll)
		case OpDelete:
			batch.Delete(ref)
		}
	}
	if _, err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("%v: %w", classify("batch", fmt.Sprintf("%d ops", len(ops)), err), ErrBatchFailed)
	}
	return nil
}

func (s *Firestore) NewID() string {
	return uuid.NewString()
}

func (s *Firestore) Close() error {
	return s.client.Close()
}

// translateSentinels swaps the package's Delete sentinel for the
// Firestore client's, recursing into nested maps.
func translateSentinels(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch t := v.(type) {
		case deleteSentinel:
			out[k] = firestore.Delete
		case map[string]any:
			out[k] = translateSentinels(t)
		default:
			out[k] = v
		}
	}
	return out
}
