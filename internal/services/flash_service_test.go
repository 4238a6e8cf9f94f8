package services

import (
	"strings"
	"testing"
)

func TestNewFlashService_GeneratesKey(t *testing.T) {
	svc := NewFlashService("")

	if svc == nil {
		t.Fatal("expected non-nil FlashService")
	}
	if len(svc.encryptionKey) != 32 {
		t.Errorf("expected 32-byte key, got %d bytes", len(svc.encryptionKey))
	}
}

func TestNewFlashService_DerivesKeyFromSecret(t *testing.T) {
	a := NewFlashService("short")
	b := NewFlashService("short")

	if len(a.encryptionKey) != 32 {
		t.Errorf("expected 32-byte key, got %d bytes", len(a.encryptionKey))
	}
	if string(a.encryptionKey) != string(b.encryptionKey) {
		t.Error("same secret must derive the same key")
	}
}

func TestSealOpen_RoundTrip(t *testing.T) {
	svc := NewFlashService("secret")

	original := Notification{Severity: SeverityWarning, Message: "Bucket 'logs' is not empty."}
	sealed, err := svc.Seal(original)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if strings.Contains(sealed, "logs") {
		t.Error("sealed value must not contain plaintext")
	}

	opened, err := NewFlashService("secret").Open(sealed)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if *opened != original {
		t.Errorf("expected %+v, got %+v", original, *opened)
	}
}

func TestOpen_RejectsOtherKey(t *testing.T) {
	sealed, err := NewFlashService("one").Seal(Notification{Severity: SeveritySuccess, Message: "ok"})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}

	if _, err := NewFlashService("two").Open(sealed); err == nil {
		t.Error("expected error when opening with a different key")
	}
}

func TestOpen_RejectsMalformed(t *testing.T) {
	svc := NewFlashService("secret")

	for _, value := range []string{"", "not-base64!", "YWJj"} {
		if _, err := svc.Open(value); err == nil {
			t.Errorf("expected error for %q", value)
		}
	}
}

func TestOpen_RejectsUnknownSeverity(t *testing.T) {
	svc := NewFlashService("secret")

	sealed, err := svc.Seal(Notification{Severity: "info", Message: "hi"})
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if _, err := svc.Open(sealed); err == nil {
		t.Error("expected error for unknown severity")
	}
}
