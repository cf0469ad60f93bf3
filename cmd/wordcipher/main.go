package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/japinder12/wordcipher-go/internal/config"
	"github.com/japinder12/wordcipher-go/internal/logging"
	"github.com/japinder12/wordcipher-go/internal/server"
	"github.com/japinder12/wordcipher-go/pkg/wordcipher"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	cfg, err := config.Load()
	check(err)
	audit, err := newAudit(cfg)
	check(err)
	defer audit.Close()

	app := &app{
		cfg:   cfg,
		audit: audit.WithComponent("cli"),
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		tty:   term.IsTerminal(int(os.Stdin.Fd())),
	}
	if err := app.run(os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, errUsage) {
			usage()
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

type app struct {
	cfg   config.Config
	audit *logging.AuditLogger
	in    *bufio.Reader
	out   io.Writer
	tty   bool // stdin is a terminal
}

func (a *app) run(cmd string, args []string) error {
	switch cmd {
	case "encrypt":
		fs := flag.NewFlagSet("encrypt", flag.ExitOnError)
		word := fs.String("word", "", "word or phrase to encrypt")
		pass := fs.String("pass", "", "passphrase (prompted when empty)")
		save := fs.Bool("save", false, "keep the result in the record store")
		label := fs.String("label", "", "label for the saved record")
		fs.Parse(args)
		if *word == "" {
			return errors.New("word cannot be empty")
		}
		p, err := a.passphrase(*pass, "Passphrase: ")
		if err != nil {
			return err
		}
		rec, err := wordcipher.EncryptWord(*word, p)
		if err != nil {
			return err
		}
		a.emit(logging.EventWordEncrypt, logging.OutcomeOK, nil)
		fmt.Fprintf(a.out, "ciphertext: %s\ntag: %s\n", rec.Ciphertext, rec.Tag)
		if *save {
			store, err := wordcipher.OpenStore(a.cfg.StorePath)
			if err != nil {
				return err
			}
			id, err := store.Put(*label, rec)
			if err != nil {
				return err
			}
			a.emit(logging.EventRecordSaved, logging.OutcomeOK, map[string]any{"id": id.String()})
			fmt.Fprintf(a.out, "id: %s\n", id)
		}
	case "decrypt":
		fs := flag.NewFlagSet("decrypt", flag.ExitOnError)
		ct := fs.String("word", "", "ciphertext")
		tag := fs.String("tag", "", "verification tag")
		id := fs.String("id", "", "id of a saved record")
		pass := fs.String("pass", "", "passphrase (prompted when empty)")
		fs.Parse(args)
		rec := wordcipher.Record{Ciphertext: *ct, Tag: *tag}
		if *id != "" {
			stored, err := a.loadRecord(*id)
			if err != nil {
				return err
			}
			rec = stored.Record
		}
		if rec.Ciphertext == "" || rec.Tag == "" {
			return errors.New("ciphertext and tag are required")
		}
		p, err := a.passphrase(*pass, "Passphrase: ")
		if err != nil {
			return err
		}
		plain, ok, err := rec.Decrypt(p)
		if err != nil {
			return err
		}
		outcome := logging.OutcomeOK
		if !ok {
			outcome = logging.OutcomeFailed
		}
		a.emit(logging.EventWordDecrypt, outcome, map[string]any{"verified": ok})
		fmt.Fprintf(a.out, "plaintext: %s\n", plain)
		if ok {
			fmt.Fprintln(a.out, "verified: the decrypted word is authentic")
		} else {
			fmt.Fprintln(a.out, "NOT verified: the passphrase is incorrect or the data has been tampered with")
		}
	case "encrypt-file":
		fs := flag.NewFlagSet("encrypt-file", flag.ExitOnError)
		in := fs.String("in", "", "input text file")
		out := fs.String("out", "", "encrypted output file")
		pass := fs.String("pass", "", "passphrase (prompted when empty)")
		fs.Parse(args)
		if *in == "" || *out == "" {
			return errors.New("--in and --out are required")
		}
		p, err := a.passphrase(*pass, "Passphrase: ")
		if err != nil {
			return err
		}
		if err := wordcipher.EncryptFile(*in, *out, p); err != nil {
			a.emit(logging.EventFileEncrypt, logging.OutcomeFailed, map[string]any{"reason": err.Error()})
			return err
		}
		a.emit(logging.EventFileEncrypt, logging.OutcomeOK, map[string]any{"in": *in, "out": *out})
		fmt.Fprintf(a.out, "file encrypted and saved to %s\n", *out)
	case "decrypt-file":
		fs := flag.NewFlagSet("decrypt-file", flag.ExitOnError)
		in := fs.String("in", "", "encrypted input file")
		out := fs.String("out", "", "decrypted output file")
		pass := fs.String("pass", "", "passphrase (prompted when empty)")
		fs.Parse(args)
		if *in == "" || *out == "" {
			return errors.New("--in and --out are required")
		}
		p, err := a.passphrase(*pass, "Passphrase: ")
		if err != nil {
			return err
		}
		counts, err := wordcipher.DecryptFile(*in, *out, p)
		if err != nil {
			a.emit(logging.EventFileDecrypt, logging.OutcomeFailed, map[string]any{"reason": err.Error()})
			return err
		}
		outcome := logging.OutcomeOK
		if counts.Failed > 0 {
			outcome = logging.OutcomeFailed
		}
		a.emit(logging.EventFileDecrypt, outcome, map[string]any{"total": counts.Total, "verified": counts.Verified, "failed": counts.Failed})
		fmt.Fprintf(a.out, "file decrypted and saved to %s\n", *out)
		if counts.Total > 0 {
			fmt.Fprintln(a.out, "verification summary:", counts.Summary())
		}
	case "list":
		store, err := wordcipher.OpenStore(a.cfg.StorePath)
		if err != nil {
			return err
		}
		for _, r := range store.List() {
			fmt.Fprintf(a.out, "%s  %s  %-12s %s\n", r.ID, r.Created.Format("2006-01-02 15:04"), r.Label, r.Ciphertext)
		}
	case "delete":
		fs := flag.NewFlagSet("delete", flag.ExitOnError)
		id := fs.String("id", "", "record id")
		fs.Parse(args)
		uid, err := uuid.Parse(*id)
		if err != nil {
			return fmt.Errorf("bad id %q: %w", *id, err)
		}
		store, err := wordcipher.OpenStore(a.cfg.StorePath)
		if err != nil {
			return err
		}
		if err := store.Delete(uid); err != nil {
			return err
		}
		a.emit(logging.EventRecordDeleted, logging.OutcomeOK, map[string]any{"id": uid.String()})
		fmt.Fprintln(a.out, "ok")
	case "serve":
		fs := flag.NewFlagSet("serve", flag.ExitOnError)
		addr := fs.String("addr", a.cfg.Server.Addr, "listen address")
		fs.Parse(args)
		router := server.NewRouter(server.NewHandler(a.audit), a.cfg.Server.AllowOrigins)
		fmt.Fprintf(a.out, "listening on %s\n", *addr)
		return router.Run(*addr)
	case "dump":
		// for debugging: print store
		store, err := wordcipher.OpenStore(a.cfg.StorePath)
		if err != nil {
			return err
		}
		b, _ := json.MarshalIndent(store, "", "  ")
		fmt.Fprintln(a.out, string(b))
	default:
		return errUsage
	}
	return nil
}

func (a *app) loadRecord(id string) (wordcipher.StoredRecord, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return wordcipher.StoredRecord{}, fmt.Errorf("bad id %q: %w", id, err)
	}
	store, err := wordcipher.OpenStore(a.cfg.StorePath)
	if err != nil {
		return wordcipher.StoredRecord{}, err
	}
	return store.Get(uid)
}

// passphrase returns flagValue when set, otherwise prompts for one. Input is
// not echoed when stdin is a terminal.
func (a *app) passphrase(flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(os.Stderr, prompt)
	var p string
	if a.tty {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		p = string(b)
	} else {
		line, err := a.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
		p = strings.TrimRight(line, "\r\n")
	}
	if p == "" {
		return "", errors.New("passphrase cannot be empty")
	}
	return p, nil
}

func (a *app) emit(event logging.EventType, outcome logging.Outcome, meta map[string]any) {
	_ = a.audit.Emit(logging.AuditEvent{EventType: event, Outcome: outcome, Metadata: meta})
}

func newAudit(cfg config.Config) (*logging.AuditLogger, error) {
	if cfg.AuditLog == "" {
		return logging.Discard(), nil
	}
	return logging.NewAuditLogger("wordcipher", logging.WithoutStderr(), logging.WithFile(cfg.AuditLog))
}

func usage() {
	fmt.Print(`wordcipher CLI
Usage:
  wordcipher encrypt      --word W [--pass P] [--save --label L]
  wordcipher decrypt      --word C --tag T [--pass P]
  wordcipher decrypt      --id ID [--pass P]
  wordcipher encrypt-file --in F --out G [--pass P]
  wordcipher decrypt-file --in G --out F [--pass P]
  wordcipher list
  wordcipher delete       --id ID
  wordcipher serve        [--addr HOST:PORT]
  wordcipher dump
`)
}

func check(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
