package document

import (
	"fmt"
	"strings"

	"github.com/darasahq/darasa/core"
)

// ValidationError reports schema violations found in a record after
// gap-filling. Error() only names the schema and the failing field paths; the
// offending records are available through Diagnostic() and belong in logs,
// never in a response surfaced to untrusted callers.
type ValidationError struct {
	Schema string
	Fields []core.FieldError

	raw    Record
	filled Record
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return fmt.Sprintf("%s: invalid document: %s", e.Schema, strings.Join(parts, "; "))
}

// Diagnostic dumps the raw and gap-filled records alongside the violations,
// for debug logging.
func (e *ValidationError) Diagnostic() string {
	return fmt.Sprintf("%v\nraw: %#v\nfilled: %#v", e, e.raw, e.filled)
}

// Normalize makes a raw store document safe to consume: the store omits
// fields rather than persisting null/undefined values, so every declared
// field absent from the record is synthesized with a type-appropriate default
// before the record is validated against the schema.
//
// id, when non-empty, overrides the record's identifier field; the read path
// supplies the store's document key since the key is not duplicated inside
// the document body.
//
// Defaults by kind: a declared Default producer wins; otherwise arrays get an
// empty slice, numbers 0, booleans false, strings "", null-kinded fields nil.
// Optional fields stay unset. Required objects and timestamps are NOT
// synthesized: inventing a complex value without domain knowledge risks
// masking data corruption, so validation is left to fail loudly instead.
func Normalize(raw Record, s *Schema, id string) (Record, error) {
	rec := raw.Clone()
	if rec == nil {
		rec = make(Record)
	}
	if id != "" {
		rec[s.idField()] = id
	}

	for _, f := range s.Fields {
		if _, present := rec[f.Name]; present {
			continue
		}
		switch {
		case f.Optional:
			// stays unset
		case f.Default != nil:
			rec[f.Name] = f.Default()
		case f.Kind == KindArray:
			rec[f.Name] = []interface{}{}
		case f.Kind == KindNumber:
			rec[f.Name] = 0
		case f.Kind == KindBool:
			rec[f.Name] = false
		case f.Kind == KindString:
			rec[f.Name] = ""
		case f.Kind == KindNull:
			rec[f.Name] = nil
		case f.Kind == KindObject, f.Kind == KindTimestamp:
			// not synthesized; validation reports the gap
		}
	}

	if errs := s.validate(rec, ""); len(errs) > 0 {
		return nil, &ValidationError{Schema: s.Name, Fields: errs, raw: raw, filled: rec}
	}
	return rec, nil
}

// NormalizeOrFallback wraps Normalize for call sites that prefer graceful
// degradation over a hard failure: on validation failure the supplied
// fallback (nil if none) is returned instead of an error.
func NormalizeOrFallback(raw Record, s *Schema, id string, fallback Record) Record {
	rec, err := Normalize(raw, s, id)
	if err != nil {
		return fallback
	}
	return rec
}
