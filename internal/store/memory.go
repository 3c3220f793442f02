package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Memory implements Store in process memory. It mirrors the merge,
// sentinel and batch semantics of the Firestore adapter and backs tests
// and the STORE_PROVIDER=memory mode.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]map[string]any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]map[string]any)}
}

func (s *Memory) Write(ctx context.Context, path string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.merge(path, fields)
	return nil
}

func (s *Memory) Read(ctx context.Context, path string) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, ErrNotFound)
	}
	return deepCopy(doc), nil
}

func (s *Memory) QueryOrdered(ctx context.Context, collection, orderBy string, limit int) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := collection + "/"
	var docs []Document
	for path, fields := range s.docs {
		id, ok := strings.CutPrefix(path, prefix)
		if !ok || strings.Contains(id, "/") {
			continue
		}
		docs = append(docs, Document{ID: id, Path: path, Fields: deepCopy(fields)})
	}

	sort.Slice(docs, func(i, j int) bool {
		if orderBy != DocumentID {
			a, b := docs[i].Fields[orderBy], docs[j].Fields[orderBy]
			if c := compareValues(a, b); c != 0 {
				return c < 0
			}
		}
		return docs[i].ID < docs[j].ID
	})

	if limit > 0 && len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

func (s *Memory) BatchWrite(ctx context.Context, ops []Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate before mutating so a failed batch applies nothing.
	for _, op := range ops {
		if op.Kind == OpCreate {
			if _, exists := s.docs[op.Path]; exists {
				return fmt.Errorf("create %s: %v: %w", op.Path, ErrAlreadyExists, ErrBatchFailed)
			}
		}
	}

	for _, op := range ops {
		switch op.Kind {
		case OpCreate, OpSet:
			s.merge(op.Path, op.Fields)
		case OpDelete:
			delete(s.docs, op.Path)
		}
	}
	return nil
}

func (s *Memory) NewID() string {
	return uuid.NewString()
}

func (s *Memory) Close() error {
	return nil
}

// merge upserts fields into the document at path. Caller holds the lock.
func (s *Memory) merge(path string, fields map[string]any) {
	doc, ok := s.docs[path]
	if !ok {
		doc = make(map[string]any)
		s.docs[path] = doc
	}
	mergeInto(doc, fields)
}

func mergeInto(dst map[string]any, src map[string]any) {
	for k, v := range src {
		switch t := v.(type) {
		case deleteSentinel:
			delete(dst, k)
		case map[string]any:
			nested, ok := dst[k].(map[string]any)
			if !ok {
				nested = make(map[string]any)
				dst[k] = nested
			}
			mergeInto(nested, t)
		default:
			dst[k] = v
		}
	}
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopy(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// compareValues orders query keys: numbers before strings, matching the
// limited set of field types the service stores.
func compareValues(a, b any) int {
	af, aNum := asNumber(a)
	bf, bNum := asNumber(b)
	switch {
	case aNum && bNum:
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		}
		return 0
	case aNum:
		return -1
	case bNum:
		return 1
	}
	as, _ := a.(string)
	bs, _ := b.(string)
	return strings.Compare(as, bs)
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	return 0, false
}
