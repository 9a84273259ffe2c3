// Package document normalizes raw store documents: it reconciles the various
// timestamp encodings found in the wild, gap-fills records against a declared
// schema and sanitizes records before they cross a serialization boundary.
package document

// Record is an un-normalized key-value document as read from or destined for
// the document store. Keys are field names; values are heterogeneous.
type Record map[string]interface{}

// Clone returns a shallow copy of the record. A nil record clones to nil.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DeepClone returns a copy sharing no mutable state with the record: nested
// maps, slices and timestamp pointers are copied recursively. Stores hand out
// deep clones so callers cannot reach into their state through a returned
// record.
func (r Record) DeepClone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = deepCloneValue(v)
	}
	return out
}

func deepCloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case Record:
		return val.DeepClone()
	case map[string]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, el := range val {
			out[k] = deepCloneValue(el)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, el := range val {
			out[i] = deepCloneValue(el)
		}
		return out
	case *Timestamp:
		if val == nil {
			return val
		}
		ts := *val
		return &ts
	}
	return v
}
