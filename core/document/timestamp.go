package document

import (
	"encoding/json"
	"math"
	"time"
)

var NowFunc = time.Now // mockable

type (
	// Timestamp is the canonical in-process representation of a point in time.
	// Seconds are since the Unix epoch; Nanos is the sub-second remainder.
	Timestamp struct {
		Seconds int64
		Nanos   int32
	}

	// WireTimestamp is the JSON-serializable encoding of a Timestamp used
	// across API boundaries and at rest.
	WireTimestamp struct {
		Seconds int64 `json:"_seconds"`
		Nanos   int32 `json:"_nanoseconds"`
	}

	serverPlaceholder struct{}
)

// ServerTimestamp is an opaque sentinel instructing the live store to assign
// the actual timestamp at commit time. It carries no value of its own: do not
// read it back before the write completes.
var ServerTimestamp = serverPlaceholder{}

// isoLayout matches JS `Date.prototype.toISOString`: millisecond precision, UTC.
const isoLayout = "2006-01-02T15:04:05.000Z07:00"

// string layouts accepted by ToTimestamp, tried in order
var parseLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func FromTime(t time.Time) Timestamp {
	return Timestamp{Seconds: t.Unix(), Nanos: int32(t.Nanosecond())}
}

func fromEpochMillis(ms int64) Timestamp {
	return FromTime(time.Unix(ms/1000, (ms%1000)*int64(time.Millisecond)))
}

// Time returns the native moment, in UTC.
func (ts Timestamp) Time() time.Time {
	return time.Unix(ts.Seconds, int64(ts.Nanos)).UTC()
}

func (ts Timestamp) Wire() WireTimestamp {
	return WireTimestamp{Seconds: ts.Seconds, Nanos: ts.Nanos}
}

// ISOString formats the timestamp the way JS `Date.prototype.toISOString` does.
func (ts Timestamp) ISOString() string {
	return ts.Time().Format(isoLayout)
}

// Now returns the value to write for a "current time" field.
// Against the local emulator there is no deferred server-side assignment, so a
// concrete Timestamp is taken now; against the live store the ServerTimestamp
// placeholder is returned and the store assigns the value at commit.
func Now(emulated bool) interface{} {
	if emulated {
		ts := FromTime(NowFunc())
		return &ts
	}
	return ServerTimestamp
}

// ToTimestamp converts any supported timestamp representation to its canonical
// form. It is total: nil, unparseable strings and unrecognized shapes all
// yield nil, never a panic. Callers must treat nil as "timestamp absent".
//
// Recognized shapes, tried in a fixed order: canonical value/pointer, wire
// struct, native time.Time, a map carrying numeric `_seconds`/`_nanoseconds`
// (web SDK) or `seconds`/`nanoseconds` (admin SDK), an ISO-8601 string, and
// numeric epoch-millis.
func ToTimestamp(v interface{}) *Timestamp {
	switch val := v.(type) {
	case nil:
		return nil
	case Timestamp:
		return &val
	case *Timestamp:
		return val
	case WireTimestamp:
		return &Timestamp{Seconds: val.Seconds, Nanos: val.Nanos}
	case *WireTimestamp:
		if val == nil {
			return nil
		}
		return &Timestamp{Seconds: val.Seconds, Nanos: val.Nanos}
	case time.Time:
		ts := FromTime(val)
		return &ts
	case *time.Time:
		if val == nil {
			return nil
		}
		ts := FromTime(*val)
		return &ts
	case Record:
		return timestampFromMap(val)
	case map[string]interface{}:
		return timestampFromMap(val)
	case string:
		for _, layout := range parseLayouts {
			if t, err := time.Parse(layout, val); err == nil {
				ts := FromTime(t)
				return &ts
			}
		}
		return nil
	case json.Number:
		if ms, err := val.Int64(); err == nil {
			ts := fromEpochMillis(ms)
			return &ts
		}
		return nil
	case int:
		ts := fromEpochMillis(int64(val))
		return &ts
	case int64:
		ts := fromEpochMillis(val)
		return &ts
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		ts := fromEpochMillis(int64(val))
		return &ts
	}
	return nil
}

// timestampFromMap sniffs a serialized timestamp out of a plain map. Both the
// web SDK (`_seconds`/`_nanoseconds`) and admin SDK (`seconds`/`nanoseconds`)
// key namings are recognized; a missing nanosecond component defaults to 0.
// The predicate is exact: a map carrying any key besides the pair is an
// ordinary object, not a timestamp, and must keep its sibling fields.
func timestampFromMap(m map[string]interface{}) *Timestamp {
	for _, keys := range [][2]string{{"_seconds", "_nanoseconds"}, {"seconds", "nanoseconds"}} {
		sec, ok := asInt64(m[keys[0]])
		if !ok {
			continue
		}
		raw, present := m[keys[1]]
		if len(m) != 1 && !(len(m) == 2 && present) {
			continue // sibling keys: not a serialized timestamp
		}
		var nanos int64
		if present {
			if nanos, ok = asInt64(raw); !ok {
				return nil // named like a timestamp but nanos are junk
			}
		}
		return &Timestamp{Seconds: sec, Nanos: int32(nanos)}
	}
	return nil
}

func asInt64(v interface{}) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int32:
		return int64(val), true
	case int64:
		return val, true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return 0, false
		}
		return int64(val), true
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return n, true
		}
	}
	return 0, false
}

// ProcessTimestamps replaces each named field present in the record with its
// canonical form. A field that is present but unparseable is dropped from the
// output rather than propagated as a corrupt value; whether its absence is
// acceptable is left to schema validation. Other fields pass through.
func ProcessTimestamps(rec Record, fields ...string) Record {
	if rec == nil {
		return nil
	}
	out := rec.Clone()
	for _, name := range fields {
		raw, ok := rec[name]
		if !ok {
			continue
		}
		if ts := ToTimestamp(raw); ts != nil {
			out[name] = ts
		} else {
			delete(out, name)
		}
	}
	return out
}

// SerializeTimestamps is the inverse direction: each named field holding a
// canonical timestamp is replaced by its wire encoding; all other values,
// including other timestamp representations, pass through unchanged.
func SerializeTimestamps(rec Record, fields ...string) Record {
	if rec == nil {
		return nil
	}
	out := rec.Clone()
	for _, name := range fields {
		switch val := rec[name].(type) {
		case Timestamp:
			out[name] = val.Wire()
		case *Timestamp:
			if val != nil {
				out[name] = val.Wire()
			}
		}
	}
	return out
}
