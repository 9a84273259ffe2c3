// Package docstore defines the document store contract consumed by services.
// Both the in-memory emulator store and the SQL-backed store implement it.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/darasahq/darasa/core/document"
)

var (
	// errors
	NotFoundErr       = errors.New("document not found")
	UndefinedValueErr = errors.New("record contains undefined values")
	EmptyKeyErr       = errors.New("record contains empty field names")
)

type Store interface {
	// Get retrieves a document by id. The id is the store's own key and is
	// not duplicated inside the returned record body.
	Get(ctx context.Context, collection, id string) (document.Record, error)
	// Set writes a document under the given id, replacing any existing one.
	Set(ctx context.Context, collection, id string, rec document.Record) error
	// Add writes a document under a freshly generated id and returns it.
	Add(ctx context.Context, collection string, rec document.Record) (string, error)
	// Delete removes a document; deleting a missing document is a no-op.
	Delete(ctx context.Context, collection, id string) error
	// QueryAll returns every document in a collection, keyed by id.
	QueryAll(ctx context.Context, collection string) (map[string]document.Record, error)
}

// CheckWriteRules enforces what the live store enforces server-side: records
// carrying Undefined markers or empty field names are rejected outright.
// Callers are expected to have run document.ForWrite first.
func CheckWriteRules(rec document.Record) error {
	return checkWriteValue(rec)
}

func checkWriteValue(v interface{}) error {
	switch val := v.(type) {
	case document.Record:
		return checkWriteMap(val)
	case map[string]interface{}:
		return checkWriteMap(val)
	case []interface{}:
		for _, el := range val {
			if err := checkWriteValue(el); err != nil {
				return err
			}
		}
	default:
		if v == document.Undefined {
			return UndefinedValueErr
		}
	}
	return nil
}

func checkWriteMap(m map[string]interface{}) error {
	for k, v := range m {
		if k == "" {
			return EmptyKeyErr
		}
		if err := checkWriteValue(v); err != nil {
			return err
		}
	}
	return nil
}

// ResolveServerTimestamps replaces every ServerTimestamp placeholder with a
// concrete timestamp taken at commit time, mirroring the live store's
// deferred server-side assignment.
func ResolveServerTimestamps(rec document.Record, at time.Time) document.Record {
	if rec == nil {
		return nil
	}
	return resolveMap(rec, at)
}

func resolveValue(v interface{}, at time.Time) interface{} {
	switch val := v.(type) {
	case document.Record:
		return resolveMap(val, at)
	case map[string]interface{}:
		// preserve the input's dynamic type, as deepCloneValue does
		return map[string]interface{}(resolveMap(val, at))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = resolveValue(el, at)
		}
		return out
	default:
		if v == document.ServerTimestamp {
			ts := document.FromTime(at)
			return &ts
		}
	}
	return v
}

func resolveMap(m map[string]interface{}, at time.Time) document.Record {
	out := make(document.Record, len(m))
	for k, v := range m {
		out[k] = resolveValue(v, at)
	}
	return out
}
