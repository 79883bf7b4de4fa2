package auth

import (
	"testing"
	"time"

	"github.com/psergee/authd/internal/errcode"
)

func TestNewSigner_ShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewSigner("too-short", time.Hour); err == nil {
		t.Fatalf("expected error for secret shorter than %d bytes", MinSecretLen)
	}
	if _, err := NewSigner("exactly-16-bytes", time.Hour); err != nil {
		t.Fatalf("16-byte secret rejected: %v", err)
	}
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("test-secret-0123456789", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner error: %v", err)
	}

	tok, err := s.Sign(42)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	got, err := s.Verify(tok)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if got != 42 {
		t.Fatalf("user id mismatch: got %d want 42", got)
	}
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	s, err := NewSigner("test-secret-0123456789", -1*time.Second)
	if err != nil {
		t.Fatalf("NewSigner error: %v", err)
	}

	tok, err := s.Sign(7)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	_, err = s.Verify(tok)
	if err == nil {
		t.Fatalf("expected error for expired token")
	}
	if errcode.CodeOf(err) != errcode.CodeTokenExpired {
		t.Fatalf("expected TokenExpired, got %v", errcode.CodeOf(err))
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	a, _ := NewSigner("right-secret-0123456789", time.Hour)
	b, _ := NewSigner("wrong-secret-0123456789", time.Hour)

	tok, err := a.Sign(1)
	if err != nil {
		t.Fatalf("Sign error: %v", err)
	}

	_, err = b.Verify(tok)
	if err == nil {
		t.Fatalf("expected error for wrong secret")
	}
	if errcode.CodeOf(err) != errcode.CodeInvalidToken {
		t.Fatalf("expected InvalidToken, got %v", errcode.CodeOf(err))
	}
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	s, _ := NewSigner("test-secret-0123456789", time.Hour)
	if _, err := s.Verify("not.a.jwt"); err == nil {
		t.Fatalf("expected error for malformed token")
	}
}
