package repository

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	selectDocumentSQL = `SELECT body FROM documents WHERE name = $1`
	upsertDocumentSQL = `INSERT INTO documents (name, body, updated_at) VALUES ($1, $2, NOW())`
	initDocumentSQL   = `INSERT INTO documents (name, body) VALUES ($1, '{}') ON CONFLICT (name) DO NOTHING`
)

func setupDocumentMock(t *testing.T) (*PostgresDocumentStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to open sqlmock database")
	t.Cleanup(func() { db.Close() })
	return NewPostgresDocumentStore(db, zap.NewNop(), DocUsers, DocPlanner), mock
}

func TestPostgresDocumentStore_Init(t *testing.T) {
	store, mock := setupDocumentMock(t)

	mock.ExpectExec(regexp.QuoteMeta(initDocumentSQL)).WithArgs(DocUsers).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(initDocumentSQL)).WithArgs(DocPlanner).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Init(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStore_InitError(t *testing.T) {
	store, mock := setupDocumentMock(t)

	mock.ExpectExec(regexp.QuoteMeta(initDocumentSQL)).WithArgs(DocUsers).WillReturnError(errors.New("read-only"))

	err := store.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init document users")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStore_Load(t *testing.T) {
	store, mock := setupDocumentMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDocumentSQL)).
		WithArgs(DocUsers).
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(`{"a@clases.edu.sv": {"name": "A"}}`))

	doc, err := store.Load(context.Background(), DocUsers)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "A"}`, string(doc["a@clases.edu.sv"]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStore_LoadMissingRow(t *testing.T) {
	store, mock := setupDocumentMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDocumentSQL)).
		WithArgs(DocPlanner).
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	doc, err := store.Load(context.Background(), DocPlanner)
	require.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Empty(t, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStore_LoadCorruptBody(t *testing.T) {
	store, mock := setupDocumentMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDocumentSQL)).
		WithArgs(DocUsers).
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow(`"just a string"`))

	doc, err := store.Load(context.Background(), DocUsers)
	require.NoError(t, err)
	assert.Empty(t, doc)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStore_LoadQueryError(t *testing.T) {
	store, mock := setupDocumentMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectDocumentSQL)).
		WithArgs(DocUsers).
		WillReturnError(errors.New("connection refused"))

	_, err := store.Load(context.Background(), DocUsers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load document users")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStore_Save(t *testing.T) {
	store, mock := setupDocumentMock(t)
	doc := Document{"a@clases.edu.sv": json.RawMessage(`{"tasks":[]}`)}

	mock.ExpectExec(regexp.QuoteMeta(upsertDocumentSQL)).
		WithArgs(DocPlanner, `{"a@clases.edu.sv":{"tasks":[]}}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), DocPlanner, doc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDocumentStore_SaveError(t *testing.T) {
	store, mock := setupDocumentMock(t)

	mock.ExpectExec(regexp.QuoteMeta(upsertDocumentSQL)).
		WithArgs(DocPlanner, `{}`).
		WillReturnError(errors.New("disk full"))

	err := store.Save(context.Background(), DocPlanner, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save document planner")
	assert.NoError(t, mock.ExpectationsWereMet())
}
