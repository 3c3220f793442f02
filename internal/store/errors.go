package store

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Errors surfaced by Store implementations. Callers match with errors.Is.
var (
	ErrNotFound         = errors.New("document not found")
	ErrUnavailable      = errors.New("store unavailable")
	ErrPermissionDenied = errors.New("store permission denied")
	ErrAlreadyExists    = errors.New("document already exists")
	ErrBatchFailed      = errors.New("batch write failed")
)

// classify maps a gRPC status from the Firestore client onto the store
// error taxonomy. Unknown codes pass through unchanged.
func classify(op, path string, err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%s %s: %w", op, path, ErrNotFound)
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return fmt.Errorf("%s %s: %v: %w", op, path, err, ErrUnavailable)
	case codes.PermissionDenied, codes.Unauthenticated:
		return fmt.Errorf("%s %s: %v: %w", op, path, err, ErrPermissionDenied)
	case codes.AlreadyExists:
		return fmt.Errorf("%s %s: %w", op, path, ErrAlreadyExists)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
