// Package logging writes JSON-lines audit events.
package logging

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventWordEncrypt   EventType = "word_encrypt"
	EventWordDecrypt   EventType = "word_decrypt"
	EventFileEncrypt   EventType = "file_encrypt"
	EventFileDecrypt   EventType = "file_decrypt"
	EventRecordSaved   EventType = "record_saved"
	EventRecordDeleted EventType = "record_deleted"
	EventHTTPRequest   EventType = "http_request"
)

type Outcome string

const (
	OutcomeOK       Outcome = "ok"
	OutcomeFailed   Outcome = "failed"
	OutcomeRejected Outcome = "rejected"
)

type AuditEvent struct {
	Timestamp time.Time      `json:"timestamp"`
	RequestID string         `json:"request_id"`
	Component string         `json:"component"`
	EventType EventType      `json:"event_type"`
	Outcome   Outcome        `json:"outcome,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Reason    string         `json:"reason,omitempty"`
}

type Option func(*config) error

type config struct {
	writers          []io.Writer
	closers          []io.Closer
	useDefaultWriter bool
}

func defaultConfig() *config {
	return &config{writers: []io.Writer{os.Stderr}, useDefaultWriter: true}
}

func WithWriter(w io.Writer) Option {
	return func(cfg *config) error {
		if w == nil {
			return errors.New("writer cannot be nil")
		}
		cfg.writers = append(cfg.writers, w)
		return nil
	}
}

func WithFile(path string) Option {
	return func(cfg *config) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("file path cannot be empty")
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		cfg.writers = append(cfg.writers, f)
		cfg.closers = append(cfg.closers, f)
		return nil
	}
}

// WithoutStderr drops the default stderr writer.
func WithoutStderr() Option {
	return func(cfg *config) error {
		cfg.useDefaultWriter = false
		filtered := cfg.writers[:0]
		for _, w := range cfg.writers {
			if w == os.Stderr {
				continue
			}
			filtered = append(filtered, w)
		}
		cfg.writers = filtered
		return nil
	}
}

type auditCore struct {
	mu      sync.Mutex
	encoder *json.Encoder
	closers []io.Closer
}

type AuditLogger struct {
	component   string
	core        *auditCore
	ownsClosers bool
}

func NewAuditLogger(component string, opts ...Option) (*AuditLogger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			for _, closer := range cfg.closers {
				_ = closer.Close()
			}
			return nil, err
		}
	}
	if !cfg.useDefaultWriter && len(cfg.writers) == 0 {
		return nil, errors.New("no writers configured for audit logger")
	}
	enc := json.NewEncoder(io.MultiWriter(cfg.writers...))
	enc.SetEscapeHTML(false)
	return &AuditLogger{
		component:   component,
		core:        &auditCore{encoder: enc, closers: cfg.closers},
		ownsClosers: true,
	}, nil
}

// Discard returns a logger that drops every event.
func Discard() *AuditLogger {
	l, _ := NewAuditLogger("discard", WithoutStderr(), WithWriter(io.Discard))
	return l
}

func (l *AuditLogger) Close() error {
	if l == nil || !l.ownsClosers || l.core == nil {
		return nil
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	var firstErr error
	for _, closer := range l.core.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.core.closers = nil
	return firstErr
}

// Emit writes event as one JSON line. Missing timestamp, component and
// request id are filled in; secret-looking metadata is redacted.
func (l *AuditLogger) Emit(event AuditEvent) error {
	if l == nil {
		return errors.New("nil audit logger")
	}
	if l.core == nil {
		return errors.New("nil audit logger core")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}
	if event.Component == "" {
		event.Component = l.component
	}
	if event.RequestID == "" {
		event.RequestID = uuid.NewString()
	}
	if len(event.Metadata) > 0 {
		event.Metadata = redact(event.Metadata)
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	return l.core.encoder.Encode(event)
}

func (l *AuditLogger) WithComponent(component string) *AuditLogger {
	if l == nil || l.core == nil {
		return nil
	}
	return &AuditLogger{
		component:   component,
		core:        l.core,
		ownsClosers: false,
	}
}

var secretKeys = []string{"pass", "secret", "plaintext", "word", "key", "token"}

func redact(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		lk := strings.ToLower(k)
		out[k] = v
		for _, s := range secretKeys {
			if strings.Contains(lk, s) {
				out[k] = "[REDACTED]"
				break
			}
		}
	}
	return out
}
