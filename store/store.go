package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/columnfella/Transcripting-webapp/models"
)

// ErrVideoNotFound is returned when no record matches a requested id.
var ErrVideoNotFound = errors.New("video not found")

// Document is the whole metadata file: a monotonically increasing upload
// counter plus the ordered list of video records. TotalUploads is the highest
// id ever issued, not the current record count; deletion never decrements it,
// so freed ids are never reused.
type Document struct {
	TotalUploads string               `json:"total_uploads"`
	Videos       []models.VideoRecord `json:"videos"`
}

// Store is a mutex-guarded handle over the single JSON metadata file. Every
// mutation is a full read-modify-truncate-rewrite cycle under the lock, so a
// reader never observes a partial write within this process. It is not safe
// for concurrent multi-process writers: there is no file lock, and correctness
// depends on all writers going through one Store instance.
type Store struct {
	path string
	mu   sync.Mutex
	log  *logrus.Logger
}

// New opens (creating if needed) the metadata file at path.
func New(path string, log *logrus.Logger) (*Store, error) {
	s := &Store{path: path, log: log}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metadata directory: %w", err)
		}
	}
	initial := Document{TotalUploads: "0", Videos: []models.VideoRecord{}}
	data, err := json.MarshalIndent(initial, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("initialize metadata file: %w", err)
	}
	s.log.Infof("Initialized metadata file at %s", s.path)
	return nil
}

// Load returns the current document.
func (s *Store) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() (Document, error) {
	var doc Document
	data, err := os.ReadFile(s.path)
	if err != nil {
		return doc, fmt.Errorf("read metadata file: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("decode metadata file: %w", err)
	}
	if doc.Videos == nil {
		doc.Videos = []models.VideoRecord{}
	}
	return doc, nil
}

// mutate applies fn to the document and rewrites the file in place. The file
// is truncated and rewritten in one scoped acquisition, so a subsequent reader
// sees either the old or the new document, never a torn one.
func (s *Store) mutate(fn func(*Document) error) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return doc, err
	}
	if err := fn(&doc); err != nil {
		return doc, err
	}

	f, err := os.OpenFile(s.path, os.O_RDWR, 0o644)
	if err != nil {
		return doc, fmt.Errorf("open metadata file for write: %w", err)
	}
	defer f.Close()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return doc, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return doc, err
	}
	if err := f.Truncate(0); err != nil {
		return doc, fmt.Errorf("truncate metadata file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		return doc, fmt.Errorf("write metadata file: %w", err)
	}
	return doc, nil
}

// ReserveID issues the next upload id by bumping the counter. The id is
// consumed even if the upload later fails; gaps are acceptable, reuse is not.
func (s *Store) ReserveID() (string, error) {
	var id string
	_, err := s.mutate(func(doc *Document) error {
		n, convErr := strconv.Atoi(doc.TotalUploads)
		if convErr != nil {
			return fmt.Errorf("corrupt total_uploads %q: %w", doc.TotalUploads, convErr)
		}
		id = strconv.Itoa(n + 1)
		doc.TotalUploads = id
		return nil
	})
	return id, err
}

// Append adds a record to the document.
func (s *Store) Append(rec models.VideoRecord) error {
	_, err := s.mutate(func(doc *Document) error {
		doc.Videos = append(doc.Videos, rec)
		return nil
	})
	return err
}

// Find returns the record with the given id.
func (s *Store) Find(id string) (models.VideoRecord, error) {
	doc, err := s.Load()
	if err != nil {
		return models.VideoRecord{}, err
	}
	for _, v := range doc.Videos {
		if sameID(v.ID, id) {
			return v, nil
		}
	}
	return models.VideoRecord{}, fmt.Errorf("id %s: %w", id, ErrVideoNotFound)
}

// Update applies fn to the matching record in place.
func (s *Store) Update(id string, fn func(*models.VideoRecord)) error {
	_, err := s.mutate(func(doc *Document) error {
		for i := range doc.Videos {
			if sameID(doc.Videos[i].ID, id) {
				fn(&doc.Videos[i])
				return nil
			}
		}
		return fmt.Errorf("id %s: %w", id, ErrVideoNotFound)
	})
	return err
}

// Remove deletes the matching record and returns it. The upload counter is
// left alone so the freed id is never reissued.
func (s *Store) Remove(id string) (models.VideoRecord, error) {
	var removed models.VideoRecord
	_, err := s.mutate(func(doc *Document) error {
		for i := range doc.Videos {
			if sameID(doc.Videos[i].ID, id) {
				removed = doc.Videos[i]
				doc.Videos = append(doc.Videos[:i], doc.Videos[i+1:]...)
				return nil
			}
		}
		return fmt.Errorf("id %s: %w", id, ErrVideoNotFound)
	})
	return removed, err
}

// Reset clears every record, returning the records that were present. The
// upload counter keeps its value.
func (s *Store) Reset() ([]models.VideoRecord, error) {
	var cleared []models.VideoRecord
	_, err := s.mutate(func(doc *Document) error {
		cleared = doc.Videos
		doc.Videos = []models.VideoRecord{}
		return nil
	})
	return cleared, err
}

// sameID compares ids by string equality after numeric canonicalization, so
// "01" and "1" refer to the same record.
func sameID(a, b string) bool {
	return canonicalID(a) == canonicalID(b)
}

func canonicalID(id string) string {
	id = strings.TrimSpace(id)
	if n, err := strconv.Atoi(id); err == nil {
		return strconv.Itoa(n)
	}
	return id
}
