package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"answerking/domain"
)

// FileStore is an InMemoryStore that rewrites a JSON snapshot of every
// collection after each write.
type FileStore struct {
	*InMemoryStore
	path string
}

// compile-time assertion
var _ domain.Store = (*FileStore)(nil)

// fileSnapshot is the on-disk layout. Collections are ordered by id so the
// file is deterministic.
type fileSnapshot struct {
	Sequences  sequences    `json:"sequences"`
	Products   []productDoc `json:"products"`
	Categories []groupDoc   `json:"categories"`
	Tags       []groupDoc   `json:"tags"`
	Orders     []orderDoc   `json:"orders"`
	Payments   []paymentDoc `json:"payments"`
}

// NewFileStore constructs a FileStore at the given path. If the file exists it will be loaded.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{InMemoryStore: NewInMemoryStore(), path: path}
	if err := s.loadFromFile(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	s.commit = s.saveToFile
	return s, nil
}

// Path is the snapshot file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) loadFromFile() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// no file yet; that's fine
			return nil
		}
		return err
	}
	if len(b) == 0 {
		return nil
	}
	var snap fileSnapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return err
	}

	d := newDataset()
	for _, doc := range snap.Products {
		if _, err := doc.toDomain(); err != nil {
			return err
		}
		d.seq.Product = max(d.seq.Product, int64(doc.ID))
		d.products[doc.ID] = doc
	}
	for _, doc := range snap.Categories {
		if _, err := doc.toCategory(); err != nil {
			return err
		}
		d.seq.Category = max(d.seq.Category, doc.ID)
		d.categories[domain.CategoryID(doc.ID)] = doc
	}
	for _, doc := range snap.Tags {
		if _, err := doc.toTag(); err != nil {
			return err
		}
		d.seq.Tag = max(d.seq.Tag, doc.ID)
		d.tags[domain.TagID(doc.ID)] = doc
	}
	for _, doc := range snap.Orders {
		if _, err := doc.toDomain(); err != nil {
			return err
		}
		d.seq.Order = max(d.seq.Order, int64(doc.ID))
		d.orders[doc.ID] = doc
	}
	for _, doc := range snap.Payments {
		if _, err := doc.toDomain(); err != nil {
			return err
		}
		d.seq.Payment = max(d.seq.Payment, int64(doc.ID))
		d.payments[doc.ID] = doc
	}
	// Sequences never move backwards, even past deleted tail documents.
	d.seq.Product = max(d.seq.Product, snap.Sequences.Product)
	d.seq.Category = max(d.seq.Category, snap.Sequences.Category)
	d.seq.Tag = max(d.seq.Tag, snap.Sequences.Tag)
	d.seq.Order = max(d.seq.Order, snap.Sequences.Order)
	d.seq.Payment = max(d.seq.Payment, snap.Sequences.Payment)

	s.data = d
	return nil
}

func (s *FileStore) saveToFile(d *dataset) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	snap := fileSnapshot{
		Sequences:  d.seq,
		Products:   byID(d.products),
		Categories: byID(d.categories),
		Tags:       byID(d.tags),
		Orders:     byID(d.orders),
		Payments:   byID(d.payments),
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
