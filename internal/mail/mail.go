// Package mail renders and delivers transactional mails. Delivery is behind
// the Sender interface so flows stay testable and the transport (SMTP or an
// HTTP mail API) is a deployment choice.
package mail

import "context"

// Message is one outbound mail.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message. Implementations must respect the context
// deadline; a timed-out send is reported as an error to the caller, which
// may trigger compensation.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
