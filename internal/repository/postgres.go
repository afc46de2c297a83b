package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// PostgresDocumentStore keeps each document as one JSONB row of the
// documents table.
type PostgresDocumentStore struct {
	// DB is the database handle for executing queries.
	DB    *sql.DB
	names []string
	log   *zap.Logger
}

// NewPostgresDocumentStore creates a store over an initialized database
// (see db.InitPostgres). names lists the documents Init bootstraps.
func NewPostgresDocumentStore(db *sql.DB, log *zap.Logger, names ...string) *PostgresDocumentStore {
	return &PostgresDocumentStore{DB: db, names: names, log: log}
}

// Init inserts an empty row for each managed document that has none yet.
func (s *PostgresDocumentStore) Init(ctx context.Context) error {
	for _, name := range s.names {
		_, err := s.DB.ExecContext(ctx,
			`INSERT INTO documents (name, body) VALUES ($1, '{}') ON CONFLICT (name) DO NOTHING`,
			name,
		)
		if err != nil {
			return fmt.Errorf("init document %s: %w", name, err)
		}
	}
	return nil
}

// Load returns an empty document when the row is missing or its body does
// not decode. Query failures are returned.
func (s *PostgresDocumentStore) Load(ctx context.Context, name string) (Document, error) {
	var body string
	err := s.DB.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = $1`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load document %s: %w", name, err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil || doc == nil {
		s.log.Warn("corrupt document body, using empty document", zap.String("document", name), zap.Error(err))
		return Document{}, nil
	}
	return doc, nil
}

// Save upserts the document's row with doc as its body.
func (s *PostgresDocumentStore) Save(ctx context.Context, name string, doc Document) error {
	if doc == nil {
		doc = Document{}
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", name, err)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = NOW()
	`, name, string(body))
	if err != nil {
		return fmt.Errorf("save document %s: %w", name, err)
	}
	return nil
}
