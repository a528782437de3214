// Package mailer sends transactional email through pluggable providers,
// with markdown templates rendered to HTML.
//
// Delivery and rendering are independent concerns: a Sender talks to a
// provider's API, a Renderer turns markdown-plus-frontmatter templates into
// HTML, and the Mailer combines the two. Swapping providers never touches
// template code.
//
// # Getting Started
//
// With the bundled Resend provider:
//
//	import (
//		"context"
//		"os"
//
//		"github.com/lifeforge/forge/pkg/mailer"
//		"github.com/lifeforge/forge/pkg/mailer/resend"
//	)
//
//	func main() {
//		ctx := context.Background()
//
//		sender := resend.New(resend.Config{
//			APIKey:      os.Getenv("RESEND_API_KEY"),
//			SenderEmail: "team@example.com",
//			SenderName:  "Team",
//		})
//
//		// templates live in an embedded filesystem
//		renderer := mailer.NewRenderer(emails.FS)
//
//		m := mailer.New(sender, renderer, mailer.Config{
//			FallbackSubject: "Notification",
//			DefaultLayout:   "base.html",
//		})
//
//		err := m.Send(ctx, mailer.SendParams{
//			To:       "user@example.com",
//			Template: "welcome.md",
//			Data:     map[string]any{"Name": "John"},
//		})
//		if err != nil {
//			panic(err)
//		}
//	}
//
// # Templates
//
// A template is a markdown file, optionally prefixed with YAML frontmatter.
// The Subject field accepts Go template syntax so subjects can interpolate
// the same data as the body:
//
//	---
//	Subject: Welcome {{.Name}}!
//	---
//
//	# Welcome
//
//	Hello {{.Name}}, welcome to our service!
//
//	[!button|Get Started]({{.URL}})
//
// # Sending
//
// [Mailer.Send] renders a template and delivers the result; [Mailer.SendRaw]
// delivers a pre-built [Email] untouched. SendParams carries per-message
// overrides: subject, layout, sender, reply-to, CC, BCC, and attachments.
//
// # Tags
//
// Providers that support categorization receive tags from the Email:
//
//	email := &mailer.Email{
//		To:      []string{"user@example.com"},
//		Subject: "Welcome",
//		HTML:    "<p>Hello!</p>",
//		Tags:    mailer.SimpleTags("welcome", "onboarding"),
//	}
//
// # Writing a Provider
//
// A provider is anything with a Send method. Implement [Sender] and pass it
// to [New]:
//
//	type MySender struct{}
//
//	func (s *MySender) Send(ctx context.Context, email *mailer.Email) error {
//		// call your provider's API here
//		return nil
//	}
//
//	m := mailer.New(&MySender{}, renderer, cfg)
//
// # Background Delivery
//
// For async delivery, wrap the mailer in a typed job task:
//
//	type SendWelcomeTask struct {
//		mailer *mailer.Mailer
//	}
//
//	type WelcomePayload struct {
//		Email string
//		Name  string
//	}
//
//	func (t *SendWelcomeTask) Name() string { return "send_welcome" }
//
//	func (t *SendWelcomeTask) Handle(ctx context.Context, p WelcomePayload) error {
//		return t.mailer.Send(ctx, mailer.SendParams{
//			To:       p.Email,
//			Template: "welcome.md",
//			Data:     p,
//		})
//	}
//
// # Errors
//
// Failures map to sentinel errors:
//
//   - ErrNoRecipient: message has no recipient
//   - ErrNoSubject: no subject after rendering and fallback
//   - ErrNoContent: no HTML body
//   - ErrTemplateNotFound: template file missing from the filesystem
//   - ErrLayoutNotFound: layout file missing
//   - ErrRenderFailed: template execution failed
//   - ErrSendFailed: provider rejected the message
//   - ErrInvalidFrontmatter: frontmatter did not parse as YAML
package mailer
