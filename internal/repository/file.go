package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// FileDocumentStore keeps each document in its own JSON file.
type FileDocumentStore struct {
	dir   string
	files map[string]string
	log   *zap.Logger
}

// NewFileDocumentStore returns a store rooted at dir. files maps document
// names to file names relative to dir. dir is created if needed.
func NewFileDocumentStore(dir string, files map[string]string, log *zap.Logger) (*FileDocumentStore, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory %s: %w", dir, err)
	}
	return &FileDocumentStore{dir: dir, files: files, log: log}, nil
}

func (s *FileDocumentStore) path(name string) (string, error) {
	file, ok := s.files[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownDocument, name)
	}
	return filepath.Join(s.dir, file), nil
}

// Init writes an empty document for every managed file that does not exist.
func (s *FileDocumentStore) Init(_ context.Context) error {
	for name := range s.files {
		p, err := s.path(name)
		if err != nil {
			return err
		}
		if _, err := os.Stat(p); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if err := SaveJSON(p, Document{}); err != nil {
			return err
		}
		s.log.Info("created empty document", zap.String("document", name), zap.String("file", p))
	}
	return nil
}

// Load never fails for a managed document: missing or corrupt files read
// as an empty document.
func (s *FileDocumentStore) Load(_ context.Context, name string) (Document, error) {
	p, err := s.path(name)
	if err != nil {
		return nil, err
	}
	doc := LoadJSON(s.log, p, Document{})
	if doc == nil {
		// file holds a JSON null
		doc = Document{}
	}
	return doc, nil
}

// Save rewrites the document's file in full. A nil doc is stored as {}.
func (s *FileDocumentStore) Save(_ context.Context, name string, doc Document) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = Document{}
	}
	return SaveJSON(p, doc)
}
