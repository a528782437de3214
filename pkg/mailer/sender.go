package mailer

import "context"

// Sender is the delivery side of the mailer. Implementations receive a
// fully prepared Email with To, Subject, and HTML set.
type Sender interface {
	Send(ctx context.Context, email *Email) error
}
