package federation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result is the assembled module set.
type Result struct {
	// Modules in mount order: core modules first, then resolved
	// remote modules in manifest order.
	Modules []Module

	// Providers collects startup hooks in registration order.
	Providers []Provider

	// Categories in display order: pinned-first categories, then
	// server order, then alphabetical leftovers, then pinned-last.
	Categories []Category

	// Failed maps module names to the reason they were skipped.
	Failed map[string]error
}

// Loader resolves the module set for an app. Remote manifests name
// modules; implementations come from the explicit plugin registry,
// never from downloaded code.
type Loader struct {
	httpClient  *http.Client
	logger      *slog.Logger
	plugins     map[string]Module
	manifestURL string
	categoryURL string
	pinnedFirst []string
	pinnedLast  []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient overrides the HTTP client used for manifest fetches.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) {
		if c != nil {
			l.httpClient = c
		}
	}
}

// WithManifestURL sets the remote module manifest list endpoint.
// Without it, Load only assembles core modules.
func WithManifestURL(url string) Option {
	return func(l *Loader) {
		l.manifestURL = url
	}
}

// WithCategoryOrderURL sets the category-order endpoint returning
// category keys mapped to per-language labels, in display order.
func WithCategoryOrderURL(url string) Option {
	return func(l *Loader) {
		l.categoryURL = url
	}
}

// WithLogger sets the logger for skipped-module reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithPinnedCategories pins system categories to the start and end of
// the display order regardless of server order.
func WithPinnedCategories(first, last []string) Option {
	return func(l *Loader) {
		l.pinnedFirst = first
		l.pinnedLast = last
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		plugins:    make(map[string]Module),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Register adds module implementations to the plugin registry.
// Remote manifests resolve against this registry by name.
func (l *Loader) Register(mods ...Module) error {
	for _, m := range mods {
		name := m.Manifest().Name
		if name == "" {
			return fmt.Errorf("federation: module with empty name")
		}
		if _, exists := l.plugins[name]; exists {
			return fmt.Errorf("federation: module %q registered twice", name)
		}
		l.plugins[name] = m
	}
	return nil
}

// Load assembles the module set. Core modules always mount; remote
// manifests resolve against the plugin registry. A module that fails
// to resolve is logged and skipped. Duplicate top-level route keys
// are rejected outright.
func (l *Loader) Load(ctx context.Context, core ...Module) (*Result, error) {
	result := &Result{Failed: make(map[string]error)}
	routeKeys := make(map[string]string)

	addModule := func(m Module) error {
		manifest := m.Manifest()
		key := RouteKey(manifest)
		if owner, taken := routeKeys[key]; taken {
			return fmt.Errorf("federation: modules %q and %q both claim route key %q", owner, manifest.Name, key)
		}
		routeKeys[key] = manifest.Name
		result.Modules = append(result.Modules, m)
		if p, ok := m.(Provider); ok {
			result.Providers = append(result.Providers, p)
		}
		return nil
	}

	for _, m := range core {
		if err := addModule(m); err != nil {
			return nil, err
		}
	}

	var (
		manifests  []Manifest
		categories []Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		manifests, err = l.fetchManifests(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = l.fetchCategories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, manifest := range manifests {
		impl, ok := l.plugins[manifest.Name]
		if !ok {
			err := fmt.Errorf("federation: no registered implementation for module %q", manifest.Name)
			l.logger.Warn("skipping module", slog.String("module", manifest.Name), slog.Any("error", err))
			result.Failed[manifest.Name] = err
			continue
		}
		if err := addModule(impl); err != nil {
			return nil, err
		}
	}

	result.Categories = l.orderCategories(categories, result.Modules)
	return result, nil
}

// fetchManifests retrieves the remote module manifest list.
func (l *Loader) fetchManifests(ctx context.Context) ([]Manifest, error) {
	if l.manifestURL == "" {
		return nil, nil
	}
	body, err := l.fetch(ctx, l.manifestURL)
	if err != nil {
		return nil, fmt.Errorf("federation: fetch manifests: %w", err)
	}
	var manifests []Manifest
	if err := json.Unmarshal(body, &manifests); err != nil {
		return nil, fmt.Errorf("federation: decode manifests: %w", err)
	}
	return manifests, nil
}

// fetchCategories retrieves the category-order map, preserving the
// server's key order.
func (l *Loader) fetchCategories(ctx context.Context) ([]Category, error) {
	if l.categoryURL == "" {
		return nil, nil
	}
	body, err := l.fetch(ctx, l.categoryURL)
	if err != nil {
		return nil, fmt.Errorf("federation: fetch categories: %w", err)
	}
	categories, err := parseCategoryOrder(body)
	if err != nil {
		return nil, fmt.Errorf("federation: decode categories: %w", err)
	}
	return categories, nil
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 4<<20))
}

// parseCategoryOrder decodes {"category": {"en": "Label", ...}, ...}
// keeping the object's declaration order, which carries the server's
// preferred display order.
func parseCategoryOrder(data []byte) ([]Category, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("category order must be a JSON object")
	}

	var categories []Category
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected category key %v", keyTok)
		}
		var labels map[string]string
		if err := dec.Decode(&labels); err != nil {
			return nil, err
		}
		categories = append(categories, Category{Key: key, Labels: labels})
	}
	return categories, nil
}

// orderCategories merges pinned system categories, the server's
// order, and the categories modules actually declare. Categories no
// module uses are dropped; categories the server doesn't know get an
// alphabetical fallback slot before the pinned tail.
func (l *Loader) orderCategories(serverOrder []Category, modules []Module) []Category {
	used := make(map[string]bool)
	for _, m := range modules {
		if cat := m.Manifest().Category; cat != "" {
			used[cat] = true
		}
	}

	known := make(map[string]Category, len(serverOrder))
	for _, c := range serverOrder {
		known[c.Key] = c
	}
	lookup := func(key string) Category {
		if c, ok := known[key]; ok {
			return c
		}
		return Category{Key: key}
	}

	pinned := make(map[string]bool)
	for _, key := range l.pinnedFirst {
		pinned[key] = true
	}
	for _, key := range l.pinnedLast {
		pinned[key] = true
	}

	var ordered []Category
	taken := make(map[string]bool)
	add := func(key string) {
		if taken[key] || !used[key] {
			return
		}
		taken[key] = true
		ordered = append(ordered, lookup(key))
	}

	for _, key := range l.pinnedFirst {
		add(key)
	}
	for _, c := range serverOrder {
		if !pinned[c.Key] {
			add(c.Key)
		}
	}
	var leftovers []string
	for key := range used {
		if !taken[key] && !pinned[key] {
			leftovers = append(leftovers, key)
		}
	}
	slices.Sort(leftovers)
	for _, key := range leftovers {
		add(key)
	}
	for _, key := range l.pinnedLast {
		add(key)
	}
	return ordered
}
