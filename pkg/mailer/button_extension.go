package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ButtonNode is an inline AST node for the [!button|Label](URL) syntax.
type ButtonNode struct {
	ast.BaseInline
	URL   []byte
	Label []byte
}

// KindButton identifies ButtonNode in the goldmark AST.
var KindButton = ast.NewNodeKind("Button")

func (n *ButtonNode) Kind() ast.NodeKind {
	return KindButton
}

func (n *ButtonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

const buttonPrefix = "[!button|"

type buttonParser struct{}

// NewButtonParser returns the inline parser for button syntax.
func NewButtonParser() parser.InlineParser {
	return &buttonParser{}
}

func (p *buttonParser) Trigger() []byte {
	return []byte{'['}
}

func (p *buttonParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(buttonPrefix)) {
		return nil
	}

	labelEnd := bytes.IndexByte(line[len(buttonPrefix):], ']')
	if labelEnd == -1 {
		return nil
	}
	labelEnd += len(buttonPrefix)
	label := line[len(buttonPrefix):labelEnd]

	if labelEnd+1 >= len(line) || line[labelEnd+1] != '(' {
		return nil
	}

	urlStart := labelEnd + 2
	urlLen := bytes.IndexByte(line[urlStart:], ')')
	if urlLen == -1 {
		return nil
	}

	block.Advance(urlStart + urlLen + 1)

	return &ButtonNode{
		URL:   line[urlStart : urlStart+urlLen],
		Label: label,
	}
}

type buttonRenderer struct {
	html.Config
}

// NewButtonRenderer returns the HTML renderer for ButtonNode.
func NewButtonRenderer(opts ...html.Option) renderer.NodeRenderer {
	r := &buttonRenderer{
		Config: html.NewConfig(),
	}
	for _, opt := range opts {
		opt.SetHTMLOption(&r.Config)
	}
	return r
}

func (r *buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindButton, r.renderButton)
}

func (r *buttonRenderer) renderButton(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}

	n := node.(*ButtonNode)

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(n.URL))
	_, _ = w.WriteString(`" class="btn">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)

	return ast.WalkContinue, nil
}

// ButtonExtension wires the button parser and renderer into goldmark.
type ButtonExtension struct{}

// NewButtonExtension creates the goldmark extender for button links.
func NewButtonExtension() goldmark.Extender {
	return &ButtonExtension{}
}

func (e *ButtonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(NewButtonParser(), 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(NewButtonRenderer(), 50),
	))
}
