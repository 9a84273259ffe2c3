package document

import (
	"fmt"
	"reflect"
	"testing"
	"time"
)

type warnRecorder struct {
	warnings []string
}

func (l *warnRecorder) Enable(bool)                  {}
func (l *warnRecorder) Debug(string, ...interface{}) {}
func (l *warnRecorder) Info(string, ...interface{})  {}
func (l *warnRecorder) Error(string, ...interface{}) {}
func (l *warnRecorder) Fatal(string, ...interface{}) {}

func (l *warnRecorder) Warn(msg string, _ ...interface{}) {
	l.warnings = append(l.warnings, msg)
}

func TestSanitizeForResponse(t *testing.T) {
	ts := Timestamp{1700000000, 42}
	rec := Record{
		"createdAt": &ts,
		"updatedAt": ts,
		"history": []interface{}{
			map[string]interface{}{"at": map[string]interface{}{"seconds": 1700000000.0, "nanoseconds": 0.0}},
			"plain",
		},
		"nested": map[string]interface{}{"gradedAt": &ts, "score": 87.5},
		"title":  "Essay 1",
	}

	got := SanitizeForResponse(rec)

	wire := WireTimestamp{1700000000, 42}
	if !reflect.DeepEqual(got["createdAt"], wire) || !reflect.DeepEqual(got["updatedAt"], wire) {
		t.Errorf("timestamps not converted to wire form: %#v", got)
	}
	// admin SDK key naming is rewritten to the wire naming
	history := got["history"].([]interface{})
	at := history[0].(Record)["at"].(Record)
	if at["_seconds"] != int64(1700000000) {
		t.Errorf("shape-sniffed timestamp = %#v, want _seconds keys", at)
	}
	if history[1] != "plain" {
		t.Errorf("scalar array element changed: %v", history[1])
	}
	nested := got["nested"].(Record)
	if !reflect.DeepEqual(nested["gradedAt"], wire) || nested["score"] != 87.5 {
		t.Errorf("nested object not sanitized correctly: %#v", nested)
	}

	// input must not be mutated
	if _, ok := rec["createdAt"].(*Timestamp); !ok {
		t.Error("SanitizeForResponse mutated its input")
	}

	// idempotence
	again := SanitizeForResponse(got)
	if !reflect.DeepEqual(again, got) {
		t.Errorf("sanitize not idempotent:\nonce:  %#v\ntwice: %#v", got, again)
	}
}

func TestSanitizeForResponseKeepsNonTimestampMaps(t *testing.T) {
	// a numeric _seconds key alone does not make a map a timestamp; sibling
	// fields must survive sanitization
	in := Record{"stats": map[string]interface{}{"_seconds": 90.0, "label": "reading time"}}

	got := SanitizeForResponse(in)

	stats := got["stats"].(Record)
	if stats["label"] != "reading time" {
		t.Errorf("sibling key dropped: %#v", stats)
	}
	if stats["_seconds"] != 90.0 {
		t.Errorf("_seconds = %v, want untouched 90.0", stats["_seconds"])
	}
	if _, present := stats["_nanoseconds"]; present {
		t.Errorf("map rewritten as a timestamp: %#v", stats)
	}
}

func TestRemoveUndefinedDeep(t *testing.T) {
	tests := []struct {
		name string
		in   Record
		want Record
	}{
		{
			name: "strips keys, emptied maps and array elements",
			in:   Record{"a": Undefined, "b": Record{"c": Undefined}, "d": []interface{}{Undefined, 1}},
			want: Record{"d": []interface{}{1}},
		},
		{
			name: "null is meaningful and preserved",
			in:   Record{"a": nil, "b": Undefined},
			want: Record{"a": nil},
		},
		{
			name: "originally empty map survives",
			in:   Record{"meta": Record{}},
			want: Record{"meta": Record{}},
		},
		{
			name: "object array elements are cleaned",
			in:   Record{"items": []interface{}{map[string]interface{}{"keep": 1, "drop": Undefined}}},
			want: Record{"items": []interface{}{Record{"keep": 1}}},
		},
		{
			name: "nested arrays are cleaned recursively",
			in:   Record{"grid": []interface{}{[]interface{}{Undefined, 1}, 2}},
			want: Record{"grid": []interface{}{[]interface{}{1}, 2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RemoveUndefinedDeep(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RemoveUndefinedDeep() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRemoveUndefinedDeepPreservesTimestamps(t *testing.T) {
	ts := Timestamp{1700000000, 0}
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	in := Record{"createdAt": &ts, "at": now, "wire": ts.Wire(), "pending": ServerTimestamp}
	got := RemoveUndefinedDeep(in)
	if !reflect.DeepEqual(got, in) {
		t.Errorf("timestamp values must be preserved verbatim: %#v", got)
	}
}

func TestRemoveEmptyKeys(t *testing.T) {
	log := &warnRecorder{}
	in := Record{"": 1, "valid": map[string]interface{}{"": 2, "x": 3}}

	got := RemoveEmptyKeys(in, log)

	want := Record{"valid": Record{"x": 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveEmptyKeys() = %#v, want %#v", got, want)
	}
	if len(log.warnings) != 2 {
		t.Errorf("warnings = %v, want one per dropped key", log.warnings)
	}
	// a nil logger must not panic
	if got := RemoveEmptyKeys(in, nil); !reflect.DeepEqual(got, want) {
		t.Errorf("RemoveEmptyKeys(nil logger) = %#v, want %#v", got, want)
	}
}

func TestForWriteOrdering(t *testing.T) {
	ts := Timestamp{1700000000, 42}
	in := Record{
		"gradedAt": ts,
		"draft":    Undefined,
		"notes":    Record{"stale": Undefined},
	}

	got := ForWrite(in, nil)

	// the timestamp ran through wire conversion BEFORE undefined-removal, so
	// its internal fields were not misread as a plain object and filtered
	if !reflect.DeepEqual(got["gradedAt"], ts.Wire()) {
		t.Errorf("gradedAt = %#v, want intact wire timestamp", got["gradedAt"])
	}
	if _, present := got["draft"]; present {
		t.Error("undefined marker survived ForWrite")
	}
	if _, present := got["notes"]; present {
		t.Error("emptied nested object survived ForWrite")
	}
}

func TestSanitizeValueTotality(t *testing.T) {
	// none of these may panic
	inputs := []interface{}{nil, "", 0, false, []interface{}{nil}, map[string]interface{}{"": nil}, (*Timestamp)(nil)}
	for i, in := range inputs {
		t.Run(fmt.Sprintf("input_%d", i), func(t *testing.T) {
			_ = sanitizeValue(in)
			if _, keep := removeUndefinedValue(in); in != nil && !keep {
				t.Errorf("removeUndefinedValue(%v) dropped a defined value", in)
			}
		})
	}
}
