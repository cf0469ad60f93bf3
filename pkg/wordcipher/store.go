package wordcipher

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoredRecord is a Record saved for later decryption. Neither the passphrase
// nor the plaintext is ever stored.
type StoredRecord struct {
	ID      uuid.UUID `json:"id"`
	Label   string    `json:"label,omitempty"`
	Created time.Time `json:"created"`
	Record
}

// Store persists records in a single JSON file.
type Store struct {
	mu      sync.RWMutex
	path    string
	Records map[uuid.UUID]*StoredRecord
}

func OpenStore(path string) (*Store, error) {
	s := &Store{
		path:    path,
		Records: make(map[uuid.UUID]*StoredRecord),
	}
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, ioErr("open store", err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, &Error{Kind: ErrFormat, Op: "open store", Err: err}
	}
	if s.Records == nil {
		s.Records = make(map[uuid.UUID]*StoredRecord)
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.persist()
}

// Put stores rec under a fresh id and persists the store.
func (s *Store) Put(label string, rec Record) (uuid.UUID, error) {
	if rec.Ciphertext == "" {
		return uuid.Nil, invalid("put", "empty record")
	}
	id := uuid.New()
	err := s.withWrite(func() error {
		s.Records[id] = &StoredRecord{ID: id, Label: label, Created: time.Now().UTC(), Record: rec}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

func (s *Store) Get(id uuid.UUID) (StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.Records[id]
	if !ok {
		return StoredRecord{}, ErrNotFound
	}
	return *r, nil
}

// List returns all records, oldest first.
func (s *Store) List() []StoredRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]StoredRecord, 0, len(s.Records))
	for _, r := range s.Records {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].Created.Before(out[j].Created)
	})
	return out
}

func (s *Store) Delete(id uuid.UUID) error {
	return s.withWrite(func() error {
		if _, ok := s.Records[id]; !ok {
			return ErrNotFound
		}
		delete(s.Records, id)
		return nil
	})
}

func (s *Store) withWrite(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(); err != nil {
		return err
	}
	return s.persist()
}

// persist must be called with s.mu held.
func (s *Store) persist() error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.path, b, 0o600); err != nil {
		return ioErr("save store", err)
	}
	return nil
}
