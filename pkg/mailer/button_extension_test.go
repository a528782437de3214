package mailer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
)

func renderMarkdown(t *testing.T, source string) string {
	t.Helper()

	md := goldmark.New(goldmark.WithExtensions(NewButtonExtension()))

	var buf bytes.Buffer
	require.NoError(t, md.Convert([]byte(source), &buf))
	return buf.String()
}

func TestButtonExtension(t *testing.T) {
	t.Parallel()

	t.Run("renders anchor with btn class", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, `[!button|Click Me](https://example.com)`)
		require.Contains(t, out, `<a href="https://example.com" class="btn">Click Me</a>`)
	})

	t.Run("escapes label and URL", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, `[!button|<script>alert("xss")</script>](javascript:alert("xss"))`)
		require.NotContains(t, out, "<script>")
		require.Contains(t, out, "&lt;script&gt;")
	})

	t.Run("coexists with surrounding markdown", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, "# Welcome\n\nPlease verify your email:\n\n[!button|Verify Email](https://example.com/verify)\n\nThank you!")
		require.Contains(t, out, "<h1>Welcome</h1>")
		require.Contains(t, out, `<a href="https://example.com/verify" class="btn">Verify Email</a>`)
		require.Contains(t, out, "Thank you!")
	})

	t.Run("multiple buttons", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, "[!button|Accept](https://example.com/accept)\n[!button|Decline](https://example.com/decline)")
		require.Contains(t, out, `<a href="https://example.com/accept" class="btn">Accept</a>`)
		require.Contains(t, out, `<a href="https://example.com/decline" class="btn">Decline</a>`)
	})

	t.Run("regular links untouched", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, `[Regular Link](https://example.com)`)
		require.NotContains(t, out, `class="btn"`)
		require.Contains(t, out, `<a href="https://example.com">Regular Link</a>`)
	})

	t.Run("empty label allowed", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, `[!button|](https://example.com)`)
		require.Contains(t, out, `class="btn"`)
		require.Contains(t, out, `href="https://example.com"`)
	})

	t.Run("URL query parameters survive", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, `[!button|Verify](https://example.com/verify?token=abc123&user=john)`)
		require.Contains(t, out, `class="btn"`)
		require.Contains(t, out, "Verify")
		require.Contains(t, out, "token=abc123")
	})

	t.Run("long label", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, `[!button|Click Here to Verify Your Email Address and Activate Account](https://example.com)`)
		require.Contains(t, out, `class="btn"`)
		require.Contains(t, out, "Click Here to Verify Your Email Address and Activate Account")
	})

	t.Run("ampersand in label escaped", func(t *testing.T) {
		t.Parallel()

		out := renderMarkdown(t, `[!button|Accept & Continue](https://example.com)`)
		require.Contains(t, out, `class="btn"`)
		require.Contains(t, out, "Accept &amp; Continue")
	})
}

func TestButtonSyntaxRejected(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"missing URL":             `[!button|Click Me]`,
		"missing closing bracket": `[!button|Click Me(https://example.com)`,
		"wrong prefix":            `[button|Click Me](https://example.com)`,
	}

	for name, source := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			require.NotContains(t, renderMarkdown(t, source), `class="btn"`)
		})
	}
}

func TestButtonNode(t *testing.T) {
	t.Parallel()

	node := &ButtonNode{
		URL:   []byte("https://example.com"),
		Label: []byte("Test"),
	}

	require.Equal(t, KindButton, node.Kind())
	require.NotPanics(t, func() {
		node.Dump([]byte("source"), 0)
	})
}

func TestButtonParserTrigger(t *testing.T) {
	t.Parallel()

	require.Equal(t, []byte{'['}, NewButtonParser().Trigger())
}
