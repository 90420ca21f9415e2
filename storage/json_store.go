package storage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"house-finder/models"
	"house-finder/utils"
)

//go:embed schema/history.schema.json
var historySchema []byte

const historySchemaURL = "history.schema.json"

// JSONStore keeps the whole history in one JSON file, replaced atomically on
// every save.
type JSONStore struct {
	path   string
	schema *jsonschema.Schema
	logger *utils.Logger
}

// NewJSONStore creates a store backed by the file at path. The file does not
// need to exist yet.
func NewJSONStore(path string, logger *utils.Logger) (*JSONStore, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	if err := compiler.AddResource(historySchemaURL, bytes.NewReader(historySchema)); err != nil {
		return nil, fmt.Errorf("json store: add schema: %w", err)
	}
	schema, err := compiler.Compile(historySchemaURL)
	if err != nil {
		return nil, fmt.Errorf("json store: compile schema: %w", err)
	}

	return &JSONStore{path: path, schema: schema, logger: logger}, nil
}

// Load reads the history file. A missing file is an empty history; a file
// that is not valid JSON or does not match the history shape wraps
// ErrCorruptStore.
func (s *JSONStore) Load(_ context.Context) (models.History, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("[json] No history at %s, starting empty", s.path)
		return models.History{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("json store: read %s: %w", s.path, err)
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("json store: %s: %w: %w", s.path, ErrCorruptStore, err)
	}
	if err := s.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("json store: %s: %w: %w", s.path, ErrCorruptStore, err)
	}

	history := models.History{}
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("json store: %s: %w: %w", s.path, ErrCorruptStore, err)
	}

	s.logger.Debug("[json] Loaded %d search(es) from %s", len(history), s.path)
	return history, nil
}

// Save writes history to a temporary file next to the target and renames it
// over the target.
func (s *JSONStore) Save(_ context.Context, history models.History) error {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return fmt.Errorf("json store: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("json store: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("json store: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json store: write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("json store: sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("json store: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("json store: replace %s: %w", s.path, err)
	}

	s.logger.Debug("[json] Saved %d search(es) to %s", len(history), s.path)
	return nil
}

func (s *JSONStore) Close() error { return nil }
