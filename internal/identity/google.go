package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const googleTokenInfoEndpoint = "https://oauth2.googleapis.com/tokeninfo"

// GoogleProvider validates Google ID tokens against the tokeninfo endpoint,
// which performs the signature and expiry checks server-side.
type GoogleProvider struct {
	clientID string
	client   *http.Client
	endpoint string
}

func NewGoogleProvider(clientID string) *GoogleProvider {
	return &GoogleProvider{
		clientID: clientID,
		client:   &http.Client{Timeout: 10 * time.Second},
		endpoint: googleTokenInfoEndpoint,
	}
}

type tokenInfoResponse struct {
	Audience string `json:"aud"`
	Subject  string `json:"sub"`
	Email    string `json:"email"`
	Verified string `json:"email_verified"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}

func (p *GoogleProvider) Verify(ctx context.Context, credential string) (*Payload, error) {
	u := p.endpoint + "?id_token=" + url.QueryEscape(credential)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building tokeninfo request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tokeninfo status %d: %s", resp.StatusCode, detail)
	}

	var info tokenInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding tokeninfo response: %w", err)
	}

	if p.clientID != "" && info.Audience != p.clientID {
		return nil, fmt.Errorf("token audience mismatch")
	}
	if info.Verified != "true" {
		return nil, fmt.Errorf("google account email not verified")
	}

	return &Payload{
		Subject: info.Subject,
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}
