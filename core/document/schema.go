package document

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/darasahq/darasa/core"
)

// Kind tags the expected shape of a schema field.
type Kind int

const (
	KindString Kind = iota + 1
	KindNumber
	KindBool
	KindArray
	KindObject
	KindTimestamp
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindTimestamp:
		return "timestamp"
	case KindNull:
		return "null"
	}
	return "unknown"
}

type (
	// Field declares a single schema field. Schemas are static descriptor
	// tables defined by the caller; the normalizer only reads them.
	Field struct {
		Name     string
		Kind     Kind
		Optional bool
		// Default overrides the kind's zero default for gap-filling.
		Default func() interface{}
		// Elem describes the nested object's own fields when Kind is KindObject.
		Elem *Schema
	}

	Schema struct {
		Name string
		// IDField is the record field receiving the store's document key on
		// reads; defaults to "id".
		IDField string
		Fields  []Field
	}
)

func (s *Schema) idField() string {
	if s.IDField == "" {
		return "id"
	}
	return s.IDField
}

// TimestampFields returns the names of all timestamp-kinded fields, for use
// with ProcessTimestamps / SerializeTimestamps.
func (s *Schema) TimestampFields() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Kind == KindTimestamp {
			names = append(names, f.Name)
		}
	}
	return names
}

// validate checks every declared field of the (gap-filled) record against its
// kind. Undeclared record fields pass through unreported: the store is
// schemaless and callers routinely carry extra fields.
func (s *Schema) validate(rec Record, path string) []core.FieldError {
	var errs []core.FieldError
	for _, f := range s.Fields {
		fldPath := f.Name
		if path != "" {
			fldPath = path + "." + f.Name
		}

		val, present := rec[f.Name]
		if !present {
			if !f.Optional {
				errs = append(errs, core.FieldError{Field: fldPath, Error: "this field is required"})
			}
			continue
		}
		if val == nil {
			if f.Kind != KindNull && !f.Optional {
				errs = append(errs, core.FieldError{Field: fldPath, Error: "must be a " + f.Kind.String()})
			}
			continue
		}

		switch f.Kind {
		case KindString:
			if _, ok := val.(string); !ok {
				errs = append(errs, kindError(fldPath, f.Kind, val))
			}
		case KindNumber:
			if !isNumeric(val) {
				errs = append(errs, kindError(fldPath, f.Kind, val))
			}
		case KindBool:
			if _, ok := val.(bool); !ok {
				errs = append(errs, kindError(fldPath, f.Kind, val))
			}
		case KindArray:
			if k := reflect.ValueOf(val).Kind(); k != reflect.Slice && k != reflect.Array {
				errs = append(errs, kindError(fldPath, f.Kind, val))
			}
		case KindObject:
			nested, ok := asRecord(val)
			if !ok {
				errs = append(errs, kindError(fldPath, f.Kind, val))
				continue
			}
			if f.Elem != nil {
				errs = append(errs, f.Elem.validate(nested, fldPath)...)
			}
		case KindTimestamp:
			if ToTimestamp(val) == nil {
				errs = append(errs, kindError(fldPath, f.Kind, val))
			}
		case KindNull:
			errs = append(errs, kindError(fldPath, f.Kind, val))
		}
	}
	return errs
}

func kindError(path string, kind Kind, val interface{}) core.FieldError {
	return core.FieldError{Field: path, Error: fmt.Sprintf("must be a %s (got %T)", kind, val)}
}

func isNumeric(v interface{}) bool {
	switch val := v.(type) {
	case int, int32, int64, float32, float64:
		return true
	case json.Number:
		_, err := val.Float64()
		return err == nil
	}
	return false
}

func asRecord(v interface{}) (Record, bool) {
	switch val := v.(type) {
	case Record:
		return val, true
	case map[string]interface{}:
		return Record(val), true
	}
	return nil, false
}
