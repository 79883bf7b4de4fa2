package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/psergee/authd/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

var templates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// LinkData feeds the confirmation mail templates.
type LinkData struct {
	UserName string
	Link     string
}

// templateName maps a token type to its mail template file.
func templateName(typ models.TokenType) (string, error) {
	switch typ {
	case models.TokenTypeRegister:
		return "register_confirm.html", nil
	case models.TokenTypeForgotPwd:
		return "forgot_pwd.html", nil
	}
	return "", fmt.Errorf("no mail template for token type %q", typ)
}

// RenderConfirm renders the verification mail body for the given token type.
func RenderConfirm(typ models.TokenType, data LinkData) (string, error) {
	name, err := templateName(typ)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// ConfirmLink builds the frontend callback link carrying the token.
func ConfirmLink(callbackURL, token string, typ models.TokenType) (string, error) {
	switch typ {
	case models.TokenTypeRegister:
		return fmt.Sprintf("%s/verify-register?token=%s", callbackURL, token), nil
	case models.TokenTypeForgotPwd:
		return fmt.Sprintf("%s/reset-pwd?token=%s", callbackURL, token), nil
	}
	return "", fmt.Errorf("no confirm link for token type %q", typ)
}
