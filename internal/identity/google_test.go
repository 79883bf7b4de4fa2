package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc, clientID string) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewGoogleProvider(clientID)
	p.endpoint = srv.URL
	p.client = srv.Client()
	return p
}

func TestVerify_Success(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") != "cred-1" {
			t.Errorf("unexpected id_token %q", r.URL.Query().Get("id_token"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"aud":"client-1","sub":"sub-9","email":"g@example.com","email_verified":"true","name":"G User","picture":"https://img/p.png"}`))
	}, "client-1")

	payload, err := p.Verify(context.Background(), "cred-1")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if payload.Subject != "sub-9" || payload.Email != "g@example.com" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestVerify_AudienceMismatch(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"aud":"someone-else","sub":"s","email":"g@example.com","email_verified":"true"}`))
	}, "client-1")

	if _, err := p.Verify(context.Background(), "cred"); err == nil {
		t.Fatalf("expected audience mismatch error")
	}
}

func TestVerify_RejectedToken(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_token"}`, http.StatusBadRequest)
	}, "")

	if _, err := p.Verify(context.Background(), "bad"); err == nil {
		t.Fatalf("expected error for rejected token")
	}
}

func TestVerify_UnverifiedEmail(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"aud":"c","sub":"s","email":"g@example.com","email_verified":"false"}`))
	}, "")

	if _, err := p.Verify(context.Background(), "cred"); err == nil {
		t.Fatalf("expected error for unverified google email")
	}
}
