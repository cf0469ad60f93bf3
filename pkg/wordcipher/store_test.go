package wordcipher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestStoreHappyPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	store, err := OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}

	rec, err := EncryptWord("hello", "wonder")
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.Put("greeting", rec)
	if err != nil {
		t.Fatal(err)
	}
	second, err := store.Put("", Record{Ciphertext: "x", Tag: "y"})
	if err != nil {
		t.Fatal(err)
	}

	// reopen from disk
	store, err = OpenStore(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := store.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Label != "greeting" || got.Record != rec {
		t.Fatalf("unexpected record %+v", got)
	}
	plain, ok, err := got.Decrypt("wonder")
	if err != nil {
		t.Fatal(err)
	}
	if plain != "hello" || !ok {
		t.Fatalf("got (%q, %v)", plain, ok)
	}

	list := store.List()
	if len(list) != 2 {
		t.Fatalf("unexpected list %+v", list)
	}
	for _, r := range list {
		if r.ID != id && r.ID != second {
			t.Fatalf("unexpected id %s", r.ID)
		}
	}

	if err := store.Delete(id); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(b), "hello") || strings.Contains(string(b), "wonder") {
		t.Fatal("store must not contain plaintext or passphrase")
	}
}

func TestStoreRejectsEmptyRecord(t *testing.T) {
	store, err := OpenStore(filepath.Join(t.TempDir(), "records.json"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Put("x", Record{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.Get(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenStoreCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenStore(path); !errors.Is(err, ErrFormat) {
		t.Fatalf("expected ErrFormat, got %v", err)
	}
}
