// Package identity verifies federated login credentials from external
// identity providers.
package identity

import "context"

// Payload is the verified identity extracted from an external credential.
type Payload struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// Provider turns an opaque external credential (a Google ID token) into a
// verified Payload. Implementations own the cryptographic verification; the
// orchestrator trusts the payload it receives.
type Provider interface {
	Verify(ctx context.Context, credential string) (*Payload, error)
}
