// Package store persists slot records as a single JSON document.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	// ErrNotExist is returned by a Backend when nothing has been written yet.
	ErrNotExist = errors.New("store: object doesn't exist")
	// ErrCorrupt marks persisted content that could not be decoded.
	ErrCorrupt = errors.New("store: corrupt document")
)

// Backend reads and writes the raw document bytes.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	Write(ctx context.Context, data []byte) error
	Name() string
}

// Store is the single writer for the slot document.
type Store struct {
	backend Backend
	mu      sync.Mutex
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

// Load returns the persisted document. Missing or unreadable state yields an empty document;
// the failure is logged and never returned.
func (s *Store) Load(ctx context.Context) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, _ := s.load(ctx)
	return doc
}

// Save overwrites the persisted document.
func (s *Store) Save(ctx context.Context, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, doc)
}

// Update loads the document, applies fn and saves the result, all under the writer lock.
// Nothing is written when fn returns an error, or when the document could not be read for any
// reason other than being missing or corrupt.
func (s *Store) Update(ctx context.Context, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("read document from %s: %w", s.backend.Name(), err)
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(ctx, doc)
}

// load reads the document. A missing or corrupt document comes back empty with a nil error;
// any other read failure comes back empty together with the error.
func (s *Store) load(ctx context.Context) (*Document, error) {
	start := time.Now()
	doc, err := s.read(ctx)
	switch {
	case err == nil:
		return doc, nil
	case errors.Is(err, ErrNotExist):
		slog.Debug("Store is empty",
			slog.String("type", "db"),
			slog.String("backend", s.backend.Name()))
		return &Document{Slots: []*Record{}}, nil
	case errors.Is(err, ErrCorrupt):
		slog.Error("Store is corrupt, continuing with an empty document",
			slog.String("type", "db"),
			slog.String("backend", s.backend.Name()),
			slog.Any("error", err))
		return &Document{Slots: []*Record{}}, nil
	default:
		slog.Error("Failed to read store",
			slog.String("type", "db"),
			slog.String("backend", s.backend.Name()),
			slog.Any("error", err),
			slog.Duration("took", time.Since(start)))
		return &Document{Slots: []*Record{}}, err
	}
}

func (s *Store) read(ctx context.Context) (*Document, error) {
	data, err := s.backend.Read(ctx)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if doc.Slots == nil {
		doc.Slots = []*Record{}
	}
	for i, r := range doc.Slots {
		if r == nil {
			return nil, fmt.Errorf("%w: null record at index %d", ErrCorrupt, i)
		}
	}
	return &doc, nil
}

func (s *Store) save(ctx context.Context, doc *Document) error {
	if doc.Slots == nil {
		doc.Slots = []*Record{}
	}
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if err := s.backend.Write(ctx, data); err != nil {
		return fmt.Errorf("write document to %s: %w", s.backend.Name(), err)
	}

	slog.Debug("Store saved",
		slog.String("type", "db"),
		slog.String("backend", s.backend.Name()),
		slog.Int("slots", len(doc.Slots)))
	return nil
}
