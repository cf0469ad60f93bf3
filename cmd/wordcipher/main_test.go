package main

import (
	"bufio"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/japinder12/wordcipher-go/internal/config"
	"github.com/japinder12/wordcipher-go/internal/logging"
)

func newTestApp(t *testing.T, stdin string) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.StorePath = filepath.Join(t.TempDir(), "records.json")
	auditBuf := &bytes.Buffer{}
	audit, err := logging.NewAuditLogger("test", logging.WithoutStderr(), logging.WithWriter(auditBuf))
	if err != nil {
		t.Fatal(err)
	}
	out := &bytes.Buffer{}
	return &app{cfg: cfg, audit: audit, in: bufio.NewReader(strings.NewReader(stdin)), out: out}, out, auditBuf
}

func field(t *testing.T, out, name string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if v, ok := strings.CutPrefix(line, name+": "); ok {
			return v
		}
	}
	t.Fatalf("no %q in output %q", name, out)
	return ""
}

func TestEncryptDecryptWord(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	if err := a.run("encrypt", []string{"--word", "Hello", "--pass", "secret"}); err != nil {
		t.Fatal(err)
	}
	ct, tag := field(t, out.String(), "ciphertext"), field(t, out.String(), "tag")
	if ct != "Ppohl" {
		t.Fatalf("ciphertext = %q", ct)
	}

	out.Reset()
	if err := a.run("decrypt", []string{"--word", ct, "--tag", tag, "--pass", "secret"}); err != nil {
		t.Fatal(err)
	}
	if field(t, out.String(), "plaintext") != "Hello" || !strings.Contains(out.String(), "verified: the decrypted word is authentic") {
		t.Fatalf("unexpected output %q", out)
	}

	out.Reset()
	if err := a.run("decrypt", []string{"--word", ct, "--tag", tag, "--pass", "wrong"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "NOT verified") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestPassphraseFromStdin(t *testing.T) {
	a, out, _ := newTestApp(t, "secret\n")
	if err := a.run("encrypt", []string{"--word", "Hello"}); err != nil {
		t.Fatal(err)
	}
	if field(t, out.String(), "ciphertext") != "Ppohl" {
		t.Fatalf("unexpected output %q", out)
	}

	a, _, _ = newTestApp(t, "\n")
	if err := a.run("encrypt", []string{"--word", "Hello"}); err == nil {
		t.Fatal("expected error for empty passphrase")
	}
}

func TestSavedRecord(t *testing.T) {
	a, out, audit := newTestApp(t, "")
	if err := a.run("encrypt", []string{"--word", "Hello", "--pass", "secret", "--save", "--label", "greeting"}); err != nil {
		t.Fatal(err)
	}
	id := field(t, out.String(), "id")

	out.Reset()
	if err := a.run("list", nil); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), id) || !strings.Contains(out.String(), "greeting") {
		t.Fatalf("unexpected list output %q", out)
	}

	out.Reset()
	if err := a.run("decrypt", []string{"--id", id, "--pass", "secret"}); err != nil {
		t.Fatal(err)
	}
	if field(t, out.String(), "plaintext") != "Hello" {
		t.Fatalf("unexpected output %q", out)
	}

	if err := a.run("delete", []string{"--id", id}); err != nil {
		t.Fatal(err)
	}
	if err := a.run("decrypt", []string{"--id", id, "--pass", "secret"}); err == nil {
		t.Fatal("expected error for deleted record")
	}

	if strings.Contains(audit.String(), "secret") {
		t.Fatalf("passphrase leaked into audit log: %s", audit)
	}
	if !strings.Contains(audit.String(), string(logging.EventRecordSaved)) {
		t.Fatalf("missing record_saved event: %s", audit)
	}
}

func TestFileCommands(t *testing.T) {
	a, out, _ := newTestApp(t, "")
	dir := t.TempDir()
	plain := filepath.Join(dir, "in.txt")
	enc := filepath.Join(dir, "in.enc")
	dec := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(plain, []byte("Hello\n\nWorld"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := a.run("encrypt-file", []string{"--in", plain, "--out", enc, "--pass", "secret"}); err != nil {
		t.Fatal(err)
	}
	if err := a.run("decrypt-file", []string{"--in", enc, "--out", dec, "--pass", "secret"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "2/2 lines verified (100.0%)") {
		t.Fatalf("unexpected output %q", out)
	}
	b, err := os.ReadFile(dec)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "Hello\n\nWorld\n" {
		t.Fatalf("decrypted = %q", b)
	}

	if err := a.run("decrypt-file", []string{"--in", plain, "--out", dec, "--pass", "secret"}); err == nil {
		t.Fatal("expected error for a file without marker")
	}
	if err := a.run("encrypt-file", []string{"--in", plain}); err == nil {
		t.Fatal("expected error for missing --out")
	}
}

func TestUnknownCommand(t *testing.T) {
	a, _, _ := newTestApp(t, "")
	if err := a.run("bogus", nil); !errors.Is(err, errUsage) {
		t.Fatalf("expected errUsage, got %v", err)
	}
}
