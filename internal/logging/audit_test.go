package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestAuditLoggerEmit(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewAuditLogger("test", WithoutStderr(), WithWriter(buf))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}

	event := AuditEvent{EventType: EventWordEncrypt, Outcome: OutcomeOK, Metadata: map[string]any{"runes": 5}}
	if err := logger.Emit(event); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	var decoded AuditEvent
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json.Unmarshal: %v", err)
	}

	if decoded.Component != "test" {
		t.Fatalf("expected component 'test', got %q", decoded.Component)
	}
	if decoded.EventType != EventWordEncrypt {
		t.Fatalf("expected event type %q, got %q", EventWordEncrypt, decoded.EventType)
	}
	if decoded.Outcome != OutcomeOK {
		t.Fatalf("expected outcome %q, got %q", OutcomeOK, decoded.Outcome)
	}
	if decoded.Timestamp.IsZero() {
		t.Fatalf("expected timestamp to be set")
	}
	if decoded.RequestID == "" {
		t.Fatalf("expected request id to be set")
	}
}

func TestAuditLoggerRedactsSecrets(t *testing.T) {
	buf := &bytes.Buffer{}
	logger, err := NewAuditLogger("test", WithoutStderr(), WithWriter(buf))
	if err != nil {
		t.Fatalf("NewAuditLogger: %v", err)
	}
	sub := logger.WithComponent("cli")
	err = sub.Emit(AuditEvent{
		EventType: EventWordDecrypt,
		Metadata:  map[string]any{"passphrase": "hunter2", "Plaintext": "Hello", "verified": true},
	})
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "hunter2") || strings.Contains(out, "Hello") {
		t.Fatalf("secret leaked into audit log: %s", out)
	}
	if !strings.Contains(out, `"component":"cli"`) || !strings.Contains(out, `"verified":true`) {
		t.Fatalf("unexpected event: %s", out)
	}
}

func TestNewAuditLoggerWithoutWriters(t *testing.T) {
	if _, err := NewAuditLogger("test", WithoutStderr()); err == nil {
		t.Fatal("expected error when no writers are configured")
	}
}
