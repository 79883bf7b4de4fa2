package mail

import (
	"strings"
	"testing"

	"github.com/psergee/authd/internal/models"
)

func TestRenderConfirm_Register(t *testing.T) {
	body, err := RenderConfirm(models.TokenTypeRegister, LinkData{
		UserName: "Alice",
		Link:     "https://front/verify-register?token=abc",
	})
	if err != nil {
		t.Fatalf("RenderConfirm error: %v", err)
	}
	if !strings.Contains(body, "Alice") {
		t.Errorf("body should contain the user name")
	}
	if !strings.Contains(body, "https://front/verify-register?token=abc") {
		t.Errorf("body should contain the confirmation link")
	}
}

func TestRenderConfirm_ForgotPwd(t *testing.T) {
	body, err := RenderConfirm(models.TokenTypeForgotPwd, LinkData{
		UserName: "Bob",
		Link:     "https://front/reset-pwd?token=xyz",
	})
	if err != nil {
		t.Fatalf("RenderConfirm error: %v", err)
	}
	if !strings.Contains(body, "https://front/reset-pwd?token=xyz") {
		t.Errorf("body should contain the reset link")
	}
}

func TestRenderConfirm_EscapesUserName(t *testing.T) {
	body, err := RenderConfirm(models.TokenTypeRegister, LinkData{
		UserName: "<script>alert(1)</script>",
		Link:     "https://front/verify-register?token=abc",
	})
	if err != nil {
		t.Fatalf("RenderConfirm error: %v", err)
	}
	if strings.Contains(body, "<script>") {
		t.Errorf("user name must be HTML-escaped")
	}
}

func TestRenderConfirm_RefreshHasNoTemplate(t *testing.T) {
	if _, err := RenderConfirm(models.TokenTypeRefresh, LinkData{}); err == nil {
		t.Errorf("expected an error for refresh tokens")
	}
}

func TestConfirmLink(t *testing.T) {
	tests := []struct {
		typ  models.TokenType
		want string
	}{
		{models.TokenTypeRegister, "https://front/verify-register?token=tok1"},
		{models.TokenTypeForgotPwd, "https://front/reset-pwd?token=tok1"},
	}

	for _, tt := range tests {
		got, err := ConfirmLink("https://front", "tok1", tt.typ)
		if err != nil {
			t.Fatalf("ConfirmLink(%s) error: %v", tt.typ, err)
		}
		if got != tt.want {
			t.Errorf("ConfirmLink(%s) = %q, want %q", tt.typ, got, tt.want)
		}
	}

	if _, err := ConfirmLink("https://front", "tok1", models.TokenTypeRefresh); err == nil {
		t.Errorf("expected an error for refresh tokens")
	}
}
