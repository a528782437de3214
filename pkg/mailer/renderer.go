package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// Renderer turns markdown templates with YAML frontmatter into HTML.
// Parsed templates and layouts are cached; rendering executes them with
// fresh data each time, so a Renderer is safe for concurrent use.
type Renderer struct {
	fs fs.FS
	md goldmark.Markdown

	templates   map[string]*parsedTemplate
	layouts     map[string]*template.Template
	templateDir string
	layoutDir   string

	mu sync.RWMutex
}

// parsedTemplate is the cacheable part of a template file.
type parsedTemplate struct {
	meta map[string]any
	tmpl *texttemplate.Template
}

// RendererConfig sets template lookup directories.
type RendererConfig struct {
	TemplateDir string // default "."
	LayoutDir   string // default "layouts"
}

// NewRenderer creates a renderer with default directories.
func NewRenderer(filesystem fs.FS) *Renderer {
	return NewRendererWithConfig(filesystem, RendererConfig{})
}

// NewRendererWithConfig creates a renderer reading templates and
// layouts from the configured directories of filesystem.
func NewRendererWithConfig(filesystem fs.FS, opts RendererConfig) *Renderer {
	if opts.TemplateDir == "" {
		opts.TemplateDir = "."
	}
	if opts.LayoutDir == "" {
		opts.LayoutDir = "layouts"
	}

	return &Renderer{
		fs:          filesystem,
		templateDir: opts.TemplateDir,
		layoutDir:   opts.LayoutDir,
		md: goldmark.New(
			goldmark.WithExtensions(NewButtonExtension()),
		),
		templates: make(map[string]*parsedTemplate),
		layouts:   make(map[string]*template.Template),
	}
}

// RenderResult is the output of Render.
type RenderResult struct {
	Metadata map[string]any
	HTML     string
	Text     string // processed markdown before HTML conversion
}

// Render executes templateName with data, converts the markdown to
// HTML, and wraps it in the named layout. The layout receives the
// converted body as .Content and the template's frontmatter as
// .Metadata.
func (r *Renderer) Render(layout, templateName string, data any) (*RenderResult, error) {
	parsed, err := r.loadTemplate(templateName)
	if err != nil {
		return nil, err
	}

	var markdown bytes.Buffer
	if err := parsed.tmpl.Execute(&markdown, data); err != nil {
		return nil, fmt.Errorf("%w: failed to execute template: %v", ErrRenderFailed, err)
	}

	// The executed markdown doubles as the plain-text alternative.
	plainText := markdown.String()

	var body bytes.Buffer
	if err := r.md.Convert(markdown.Bytes(), &body); err != nil {
		return nil, fmt.Errorf("%w: failed to convert markdown: %v", ErrRenderFailed, err)
	}

	layoutTmpl, err := r.loadLayout(layout)
	if err != nil {
		return nil, err
	}

	var page bytes.Buffer
	err = layoutTmpl.Execute(&page, map[string]any{
		"Content":  template.HTML(body.String()),
		"Metadata": parsed.meta,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute layout: %v", ErrRenderFailed, err)
	}

	return &RenderResult{
		HTML:     page.String(),
		Text:     plainText,
		Metadata: parsed.meta,
	}, nil
}

func (r *Renderer) loadTemplate(name string) (*parsedTemplate, error) {
	r.mu.RLock()
	cached, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have parsed it between the locks.
	if cached, ok := r.templates[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, filepath.Join(r.templateDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateNotFound, name, err)
	}

	parsed, err := ParseTemplate(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrRenderFailed, name, err)
	}

	tmpl, err := texttemplate.New(name).Parse(parsed.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse template body: %v", ErrRenderFailed, err)
	}

	entry := &parsedTemplate{meta: parsed.Metadata, tmpl: tmpl}
	r.templates[name] = entry
	return entry, nil
}

func (r *Renderer) loadLayout(name string) (*template.Template, error) {
	r.mu.RLock()
	cached, ok := r.layouts[name]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.layouts[name]; ok {
		return cached, nil
	}

	content, err := fs.ReadFile(r.fs, filepath.Join(r.layoutDir, name))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLayoutNotFound, name, err)
	}

	layoutTmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse layout: %v", ErrRenderFailed, err)
	}

	r.layouts[name] = layoutTmpl
	return layoutTmpl, nil
}
