package transcript

import "errors"

// ErrorRecord is the serializable form of a failure, stored under
// status.error. It is a fixed set of fields rather than a reflection of
// an arbitrary error value, so everything in it can be written to the
// store.
type ErrorRecord struct {
	Kind    string
	Message string
	Op      string
	Cause   *ErrorRecord
}

// maxCauseDepth bounds the recorded unwrap chain.
const maxCauseDepth = 5

// NewErrorRecord flattens err and its unwrap chain into a record.
func NewErrorRecord(op string, err error) ErrorRecord {
	rec := ErrorRecord{
		Kind:    "error",
		Message: err.Error(),
		Op:      op,
	}
	depth := 0
	cur := &rec
	for cause := errors.Unwrap(err); cause != nil && depth < maxCauseDepth; cause = errors.Unwrap(cause) {
		cur.Cause = &ErrorRecord{Kind: "cause", Message: cause.Error()}
		cur = cur.Cause
		depth++
	}
	return rec
}

// Fields renders the record as a store map. Empty fields are omitted
// entirely, never written as null; the store rejects undefined values.
func (r ErrorRecord) Fields() map[string]any {
	fields := make(map[string]any)
	if r.Kind != "" {
		fields["kind"] = r.Kind
	}
	if r.Message != "" {
		fields["message"] = r.Message
	}
	if r.Op != "" {
		fields["op"] = r.Op
	}
	if r.Cause != nil {
		fields["cause"] = r.Cause.Fields()
	}
	return fields
}

func errorRecordFromFields(fields map[string]any) *ErrorRecord {
	rec := &ErrorRecord{}
	rec.Kind, _ = fields["kind"].(string)
	rec.Message, _ = fields["message"].(string)
	rec.Op, _ = fields["op"].(string)
	if cause, ok := fields["cause"].(map[string]any); ok {
		rec.Cause = errorRecordFromFields(cause)
	}
	return rec
}
