// Package sqlxstore persists documents as JSONB rows in Postgres. Records are
// stored in wire form: canonical timestamps are serialized on write and come
// back as plain `{_seconds,_nanoseconds}` maps, which the document package's
// shape-sniffing converts back on read paths.
package sqlxstore

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core/document"
	"github.com/darasahq/darasa/storage/docstore"
)

type Store struct {
	db *sqlx.DB
}

var _ docstore.Store = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, collection, id string) (document.Record, error) {
	var data []byte
	err := s.db.GetContext(ctx, &data,
		`SELECT data FROM document WHERE collection = $1 AND id = $2`, collection, id)
	if err == sql.ErrNoRows {
		return nil, docstore.NotFoundErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "querying document")
	}
	return decode(data)
}

func (s *Store) Set(ctx context.Context, collection, id string, rec document.Record) error {
	if err := docstore.CheckWriteRules(rec); err != nil {
		return err
	}
	rec = docstore.ResolveServerTimestamps(rec, document.NowFunc())
	// wire form at rest: JSONB cannot hold the canonical struct
	data, err := json.Marshal(document.SanitizeForResponse(rec))
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO document (collection, id, data) VALUES ($1, $2, $3)
         ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`,
		collection, id, data)
	return errors.Wrap(err, "writing document")
}

func (s *Store) Add(ctx context.Context, collection string, rec document.Record) (string, error) {
	id := uuid.New().String()
	if err := s.Set(ctx, collection, id, rec); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM document WHERE collection = $1 AND id = $2`, collection, id)
	return errors.Wrap(err, "deleting document")
}

func (s *Store) QueryAll(ctx context.Context, collection string) (map[string]document.Record, error) {
	var rows []struct {
		ID   string `db:"id"`
		Data []byte `db:"data"`
	}
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, data FROM document WHERE collection = $1`, collection)
	if err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}

	out := make(map[string]document.Record, len(rows))
	for _, row := range rows {
		rec, err := decode(row.Data)
		if err != nil {
			return nil, err
		}
		out[row.ID] = rec
	}
	return out, nil
}

func decode(data []byte) (document.Record, error) {
	var rec document.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	return rec, nil
}
