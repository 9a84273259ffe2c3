package document

import (
	"fmt"
	"time"

	"github.com/darasahq/darasa/core"
)

type undefined struct{}

// Undefined marks a value as absent. The store rejects writes carrying such
// markers, so they must be stripped (RemoveUndefinedDeep) before persistence.
// nil is NOT absent: the store accepts null as a meaningful value.
var Undefined = undefined{}

// SanitizeForResponse prepares a record for crossing a serialization
// boundary: every value identified as a timestamp, by type or by structural
// shape, is replaced with its wire encoding; arrays and nested objects are
// walked recursively; all other scalars pass through. The input is never
// mutated. Idempotent.
func SanitizeForResponse(rec Record) Record {
	if rec == nil {
		return nil
	}
	return sanitizeValue(rec).(Record)
}

func sanitizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Timestamp:
		return val.Wire()
	case *Timestamp:
		if val == nil {
			return nil
		}
		return val.Wire()
	case Record:
		return sanitizeMap(val)
	case map[string]interface{}:
		return sanitizeMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = sanitizeValue(el)
		}
		return out
	}
	return v
}

func sanitizeMap(m map[string]interface{}) Record {
	// a map shaped like a serialized timestamp IS one; this also rewrites the
	// admin SDK's seconds/nanoseconds keys to the wire naming
	if ts := timestampFromMap(m); ts != nil {
		return Record{"_seconds": ts.Seconds, "_nanoseconds": ts.Nanos}
	}
	out := make(Record, len(m))
	for k, v := range m {
		out[k] = sanitizeValue(v)
	}
	return out
}

// RemoveUndefinedDeep strips every key whose value is the Undefined marker.
// Nested objects emptied by the stripping are omitted from their parent: an
// empty map where the field was conceptually populated carries no
// information. Array elements that are Undefined are dropped and remaining
// object elements cleaned. nil values are preserved, as are timestamps and
// native time values (they are not plain objects to recurse into).
func RemoveUndefinedDeep(rec Record) Record {
	if rec == nil {
		return nil
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		if cleaned, keep := removeUndefinedValue(v); keep {
			out[k] = cleaned
		}
	}
	return out
}

func removeUndefinedValue(v interface{}) (interface{}, bool) {
	switch val := v.(type) {
	case undefined:
		return nil, false
	case Timestamp, *Timestamp, WireTimestamp, *WireTimestamp, time.Time, *time.Time, serverPlaceholder:
		return v, true
	case Record:
		return removeUndefinedMap(val)
	case map[string]interface{}:
		return removeUndefinedMap(val)
	case []interface{}:
		out := make([]interface{}, 0, len(val))
		for _, el := range val {
			if _, drop := el.(undefined); drop {
				continue
			}
			if nested, ok := asRecord(el); ok {
				// cleaned in place, not omitted: an array slot is positional
				out = append(out, RemoveUndefinedDeep(nested))
				continue
			}
			if arr, ok := el.([]interface{}); ok {
				cleaned, _ := removeUndefinedValue(arr)
				out = append(out, cleaned)
				continue
			}
			out = append(out, el)
		}
		return out, true
	}
	return v, true
}

func removeUndefinedMap(m map[string]interface{}) (interface{}, bool) {
	cleaned := RemoveUndefinedDeep(Record(m))
	if len(cleaned) == 0 && len(m) > 0 {
		// became empty after removal: omit from parent
		return nil, false
	}
	return cleaned, true
}

// RemoveEmptyKeys drops any field whose name is the empty string: the store
// rejects zero-length field names. The offending path is logged as a warning
// and processing continues; one corrupt key should not reject the whole
// record.
func RemoveEmptyKeys(rec Record, log core.Logger) Record {
	if rec == nil {
		return nil
	}
	return removeEmptyKeys(rec, "", log)
}

func removeEmptyKeys(rec Record, path string, log core.Logger) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		if k == "" {
			if log != nil {
				log.Warn(fmt.Sprintf("document: dropping empty field name at %q", path))
			}
			continue
		}
		fldPath := k
		if path != "" {
			fldPath = path + "." + k
		}
		out[k] = removeEmptyKeysValue(v, fldPath, log)
	}
	return out
}

func removeEmptyKeysValue(v interface{}, path string, log core.Logger) interface{} {
	switch val := v.(type) {
	case Record:
		return removeEmptyKeys(val, path, log)
	case map[string]interface{}:
		return removeEmptyKeys(Record(val), path, log)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = removeEmptyKeysValue(el, fmt.Sprintf("%s[%d]", path, i), log)
		}
		return out
	}
	return v
}

// ForWrite composes the full pre-persistence pipeline in the contract order:
// timestamps first (so they are not mistaken for plain nested objects and
// gutted by the undefined pass), then absent markers, then empty field names.
func ForWrite(rec Record, log core.Logger) Record {
	return RemoveEmptyKeys(RemoveUndefinedDeep(SanitizeForResponse(rec)), log)
}
