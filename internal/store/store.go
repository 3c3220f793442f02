// Package store wraps the hosted document database behind a narrow
// adapter: merge writes, point reads, ordered queries and atomic batches.
package store

import "context"

// DocumentID is the pseudo-field used to order a query by document
// identifier instead of a record field.
const DocumentID = "__name__"

// Delete is a sentinel value. Placing it in a merge write removes the
// corresponding field from the stored document.
var Delete = deleteSentinel{}

type deleteSentinel struct{}

// Document is one stored record together with its location.
type Document struct {
	ID     string
	Path   string
	Fields map[string]any
}

// OpKind discriminates the operations accepted by BatchWrite.
type OpKind int

const (
	// OpCreate creates a new document; it fails if the path already exists.
	OpCreate OpKind = iota
	// OpSet merge-writes fields into a document, creating it if absent.
	OpSet
	// OpDelete removes a document.
	OpDelete
)

// Op is a single operation inside an atomic batch.
type Op struct {
	Kind   OpKind
	Path   string
	Fields map[string]any
}

// Store is the document database adapter. Implementations must not
// retry failed operations; transport errors surface to the caller.
type Store interface {
	// Write merge-upserts fields at path. Fields absent from the map are
	// left untouched; nested maps merge recursively. A Delete sentinel
	// removes the field.
	Write(ctx context.Context, path string, fields map[string]any) error

	// Read returns the fields of the document at path, or an error
	// wrapping ErrNotFound.
	Read(ctx context.Context, path string) (map[string]any, error)

	// QueryOrdered returns up to limit documents of the collection,
	// ordered ascending by orderBy and tie-broken by document id.
	// A limit <= 0 returns the whole collection.
	QueryOrdered(ctx context.Context, collection, orderBy string, limit int) ([]Document, error)

	// BatchWrite applies ops as one all-or-nothing unit. On failure no
	// operation is applied and the error wraps ErrBatchFailed.
	BatchWrite(ctx context.Context, ops []Op) error

	// NewID returns a fresh document identifier.
	NewID() string

	// Close releases the underlying client.
	Close() error
}
