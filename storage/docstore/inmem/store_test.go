package inmemstore

import (
	"context"
	"testing"
	"time"

	"github.com/darasahq/darasa/core/document"
	"github.com/darasahq/darasa/storage/docstore"
	"github.com/darasahq/darasa/tests"
)

func TestStoreCRUD(t *testing.T) {
	ctx := context.Background()
	store := Open()

	if _, err := store.Get(ctx, "assignments", "nope"); err != docstore.NotFoundErr {
		t.Errorf("Get() error = %v, want NotFoundErr", err)
	}

	rec := document.Record{"title": "Essay 1", "maxPoints": 50.0}
	if err := store.Set(ctx, "assignments", "a1", rec); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "assignments", "a1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	testutil.AssertRecordsEqual(t, rec, got)

	// mutating the returned record must not touch the stored one
	got["title"] = "hacked"
	again, _ := store.Get(ctx, "assignments", "a1")
	if again["title"] != "Essay 1" {
		t.Error("Get() returned a record sharing state with the store")
	}

	id, err := store.Add(ctx, "assignments", document.Record{"title": "Essay 2"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if id == "" || id == "a1" {
		t.Errorf("Add() id = %q, want a fresh generated id", id)
	}

	all, err := store.QueryAll(ctx, "assignments")
	if err != nil {
		t.Fatalf("QueryAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("QueryAll() returned %d records, want 2", len(all))
	}

	if err := store.Delete(ctx, "assignments", "a1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, "assignments", "a1"); err != docstore.NotFoundErr {
		t.Errorf("Get() after delete error = %v, want NotFoundErr", err)
	}
	// deleting a missing document is a no-op
	if err := store.Delete(ctx, "assignments", "a1"); err != nil {
		t.Errorf("Delete() of missing document error = %v", err)
	}
}

func TestStoreClonesNestedState(t *testing.T) {
	ctx := context.Background()
	store := Open()

	rec := document.Record{
		"name":    "Alice",
		"contact": map[string]interface{}{"email": "alice@example.com"},
		"tags":    []interface{}{"essay", map[string]interface{}{"weight": 1.0}},
	}
	if err := store.Set(ctx, "students", "s1", rec); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// mutating the caller's record after the write must not touch the store
	rec["contact"].(map[string]interface{})["email"] = "hacked"
	got, err := store.Get(ctx, "students", "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if email := got["contact"].(map[string]interface{})["email"]; email != "alice@example.com" {
		t.Errorf("stored record shares nested state with the written one: email = %v", email)
	}

	// mutating nested values on a returned record must not corrupt the store
	got["contact"].(map[string]interface{})["email"] = "hacked"
	got["tags"].([]interface{})[1].(map[string]interface{})["weight"] = 0.0

	again, _ := store.Get(ctx, "students", "s1")
	if email := again["contact"].(map[string]interface{})["email"]; email != "alice@example.com" {
		t.Errorf("stored record corrupted through a returned copy: email = %v", email)
	}
	if weight := again["tags"].([]interface{})[1].(map[string]interface{})["weight"]; weight != 1.0 {
		t.Errorf("stored record corrupted through a returned array element: weight = %v", weight)
	}
}

func TestStoreWriteRules(t *testing.T) {
	ctx := context.Background()
	store := Open()

	err := store.Set(ctx, "assignments", "a1", document.Record{"draft": document.Undefined})
	if err != docstore.UndefinedValueErr {
		t.Errorf("Set() error = %v, want UndefinedValueErr", err)
	}
	err = store.Set(ctx, "assignments", "a1", document.Record{"": 1})
	if err != docstore.EmptyKeyErr {
		t.Errorf("Set() error = %v, want EmptyKeyErr", err)
	}
	if _, err := store.Get(ctx, "assignments", "a1"); err != docstore.NotFoundErr {
		t.Error("rejected write must not persist anything")
	}
}

func TestStoreResolvesServerTimestamps(t *testing.T) {
	ctx := context.Background()
	store := Open()

	frozen := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	document.NowFunc = func() time.Time { return frozen }
	defer func() { document.NowFunc = time.Now }()

	rec := document.Record{"createdAt": document.ServerTimestamp}
	if err := store.Set(ctx, "assignments", "a1", rec); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, err := store.Get(ctx, "assignments", "a1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := document.FromTime(frozen)
	if ts, ok := got["createdAt"].(*document.Timestamp); !ok || *ts != want {
		t.Errorf("createdAt = %v, want commit-time %v", got["createdAt"], want)
	}
}
