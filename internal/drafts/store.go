// Package drafts persists conversations as one JSON file per draft.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/thomas-vilte/ticketmate/internal/errors"
	"github.com/thomas-vilte/ticketmate/internal/logger"
	"github.com/thomas-vilte/ticketmate/internal/models"
	"github.com/thomas-vilte/ticketmate/internal/storage"
	"github.com/xeipuuv/gojsonschema"
	"golang.org/x/sync/errgroup"
)

const (
	fileExt         = ".json"
	maxParallelRead = 8
)

type Store struct {
	dir    string
	schema *gojsonschema.Schema
	now    func() time.Time
}

func NewStore(dir string) (*Store, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(recordSchema))
	if err != nil {
		return nil, apperrors.ErrInternal.WithError(fmt.Errorf("compile draft schema: %w", err))
	}
	return &Store{
		dir:    dir,
		schema: schema,
		now:    func() time.Time { return time.Now().UTC().Round(0) },
	}, nil
}

func NewID() string {
	return uuid.NewString()
}

// Save writes the draft, replacing any previous version with the same ID.
// A missing ID or creation time is filled in; the stored draft is returned.
func (s *Store) Save(draft models.Draft) (models.Draft, error) {
	if draft.ID == "" {
		draft.ID = NewID()
	}
	if err := checkID(draft.ID); err != nil {
		return models.Draft{}, err
	}
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = s.now()
	}
	if draft.UpdatedAt.IsZero() {
		draft.UpdatedAt = draft.CreatedAt
	}

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return models.Draft{}, apperrors.ErrInternal.WithError(err)
	}
	if err := storage.WriteFileAtomic(s.path(draft.ID), data, 0600); err != nil {
		return models.Draft{}, apperrors.ErrStorageWrite.WithError(err).WithContext("draft", draft.ID)
	}
	return draft, nil
}

// Get returns the draft with the given ID.
func (s *Store) Get(id string) (models.Draft, error) {
	if err := checkID(id); err != nil {
		return models.Draft{}, err
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.Draft{}, apperrors.ErrDraftNotFound.WithContext("draft", id)
		}
		return models.Draft{}, apperrors.ErrStorageRead.WithError(err).WithContext("draft", id)
	}
	draft, err := s.decode(data)
	if err != nil {
		return models.Draft{}, apperrors.ErrStorageRead.WithError(err).WithContext("draft", id)
	}
	return draft, nil
}

// Delete removes the draft. Deleting a missing draft is not an error.
func (s *Store) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.ErrStorageWrite.WithError(err).WithContext("draft", id)
	}
	return nil
}

type loaded struct {
	draft   models.Draft
	modTime time.Time
}

// LoadAll returns every readable draft, most recently modified first.
// Corrupt or partial files are skipped.
func (s *Store) LoadAll(ctx context.Context) ([]models.Draft, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Draft{}, nil
		}
		return nil, apperrors.ErrStorageRead.WithError(err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		names = append(names, entry.Name())
	}

	results := make([]*loaded, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRead)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rec, err := s.load(filepath.Join(s.dir, name))
			if err != nil {
				logger.Warn(ctx, "skipping unreadable draft", "file", name, "error", err)
				return nil
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.ErrStorageRead.WithError(err)
	}

	records := make([]*loaded, 0, len(results))
	for _, rec := range results {
		if rec != nil {
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.modTime.Equal(b.modTime) {
			return a.modTime.After(b.modTime)
		}
		return a.draft.UpdatedAt.After(b.draft.UpdatedAt)
	})

	drafts := make([]models.Draft, len(records))
	for i, rec := range records {
		drafts[i] = rec.draft
	}
	logger.Debug(ctx, "drafts loaded", "count", len(drafts), "skipped", len(names)-len(drafts))
	return drafts, nil
}

func (s *Store) load(path string) (*loaded, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	draft, err := s.decode(data)
	if err != nil {
		return nil, err
	}
	return &loaded{draft: draft, modTime: info.ModTime()}, nil
}

func (s *Store) decode(data []byte) (models.Draft, error) {
	result, err := s.schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return models.Draft{}, fmt.Errorf("invalid JSON: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return models.Draft{}, fmt.Errorf("draft validation failed: %v", errs)
	}

	var draft models.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return models.Draft{}, err
	}
	return draft, nil
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

func checkID(id string) error {
	if id == "" || id != filepath.Base(id) || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return apperrors.ErrDraftNotFound.WithContext("draft", id)
	}
	return nil
}
