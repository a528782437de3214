package mailer

import "fmt"

// Tags carries email categories. A value of struct{}{} marks a
// presence-only tag; string values form name-value pairs. Provider
// adapters map both shapes to whatever their API supports.
type Tags map[string]any

// SimpleTags builds presence-only tags from names.
func SimpleTags(names ...string) Tags {
	t := make(Tags, len(names))
	for _, n := range names {
		t[n] = struct{}{}
	}
	return t
}

// Recipient renders an RFC 5322 address: "Name <email>" when a name is
// given, the bare email otherwise.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}

// Email is a fully prepared message handed to a Sender.
type Email struct {
	Headers     map[string]string
	Tags        Tags
	Subject     string
	HTML        string
	Text        string // plain-text alternative
	From        string // overrides the provider default when set
	ReplyTo     string
	To          []string
	CC          []string
	BCC         []string
	Attachments []Attachment
}

// Attachment is a file attached to an Email. ContentID, when set,
// allows referencing the attachment inline from the HTML body.
type Attachment struct {
	Filename    string
	ContentType string
	ContentID   string
	Content     []byte
}
