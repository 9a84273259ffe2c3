package testutil

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/darasahq/darasa/core/document"
)

// NopLogger discards everything. For wiring services under test.
type NopLogger struct{}

func (NopLogger) Enable(bool)                  {}
func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// AssertRecordsEqual fails the test with a unified diff of the two records'
// JSON when they differ.
func AssertRecordsEqual(t *testing.T, want, got document.Record) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(mustJSON(t, want)),
		B:        difflib.SplitLines(mustJSON(t, got)),
		FromFile: "want",
		ToFile:   "got",
		Context:  3,
	})
	if err != nil {
		t.Fatalf("diffing records: %v", err)
	}
	t.Errorf("records differ:\n%s", diff)
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshaling %v: %v", v, err)
	}
	return string(data) + "\n"
}
