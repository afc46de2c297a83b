// Package repository provides persistence for the users and planner
// documents. A document is a JSON object keyed by user email; it is kept
// either in a JSON file or in a PostgreSQL row.
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Document names.
const (
	DocUsers   = "users"
	DocPlanner = "planner"
)

var (
	// ErrNotFound is returned when a key is absent from a document.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when creating a key that is present.
	ErrAlreadyExists = errors.New("already exists")
	// ErrUnknownDocument is returned for a document name the store does not manage.
	ErrUnknownDocument = errors.New("unknown document")
)

// Document maps an email to that user's raw JSON value.
type Document map[string]json.RawMessage

// DocumentStore loads and saves whole documents.
type DocumentStore interface {
	// Load returns the named document. A missing or unreadable document
	// yields an empty one.
	Load(ctx context.Context, name string) (Document, error)
	// Save replaces the named document in full.
	Save(ctx context.Context, name string, doc Document) error
}

// LoadJSON decodes filename into a T. If the file does not exist, cannot be
// read or does not hold valid JSON for T, def is returned instead. Corrupt
// files are reported to log when it is non-nil.
func LoadJSON[T any](log *zap.Logger, filename string, def T) T {
	data, err := os.ReadFile(filename)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) && log != nil {
			log.Warn("unreadable json file, using default", zap.String("file", filename), zap.Error(err))
		}
		return def
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		if log != nil {
			log.Warn("corrupt json file, using default", zap.String("file", filename), zap.Error(err))
		}
		return def
	}
	return v
}

// encodeRaw encodes v without HTML escaping, matching the on-disk format.
func encodeRaw(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SaveJSON writes v to filename as 4-space indented JSON without HTML
// escaping. The data goes to a temporary file in the same directory which
// is then renamed over filename.
func SaveJSON(filename string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filename), filepath.Base(filename)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", filename, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", filename, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", filename, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod %s: %w", filename, err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filename, err)
	}
	return nil
}
