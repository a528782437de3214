package federation

import (
	"context"
	"strings"

	"golang.org/x/text/language"

	"github.com/lifeforge/forge/pkg/schema"
)

// Manifest describes a feature module's entry points and metadata.
// Name doubles as the module's top-level route key; third-party
// modules use the "author--module" form, which also drives their
// collection namespacing.
type Manifest struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"displayName"`
	Version        string   `json:"version"`
	Description    string   `json:"description"`
	Author         string   `json:"author"`
	Icon           string   `json:"icon"`
	Category       string   `json:"category"`
	RemoteEntryURL string   `json:"remoteEntryUrl,omitempty"`
	APIKeyAccess   []string `json:"APIKeyAccess,omitempty"`
	IsInternal     bool     `json:"isInternal"`
}

// Module is the capability interface every feature module implements.
// Modules are statically linked and registered explicitly; there is
// no runtime code loading.
type Module interface {
	// Manifest returns the module's metadata. Manifest().Name is the
	// module ID used for collection resolution and the route key the
	// module mounts under.
	Manifest() Manifest

	// Collections returns the module's schema definitions. They are
	// registered under the module's ID at mount time.
	Collections() []schema.Collection

	// Routes returns the module's route tree: a nested map from path
	// segment to controller, subtree, or http.Handler.
	Routes() map[string]any
}

// Provider is implemented by modules that need a startup hook, run
// in registration order before the server accepts traffic.
type Provider interface {
	Module

	// Startup prepares module state (warm caches, open connections).
	Startup(ctx context.Context) error
}

// Category is one navigation group with translated labels keyed by
// language code.
type Category struct {
	Labels map[string]string
	Key    string
}

// Label picks the best label for an Accept-Language header. Falls
// back to the category key when nothing matches.
func (c Category) Label(acceptLanguage string) string {
	if len(c.Labels) == 0 {
		return c.Key
	}

	tags := make([]language.Tag, 0, len(c.Labels))
	codes := make([]string, 0, len(c.Labels))
	for code := range c.Labels {
		tag, err := language.Parse(code)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		codes = append(codes, code)
	}
	if len(tags) == 0 {
		return c.Key
	}

	matcher := language.NewMatcher(tags)
	desired, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(desired) == 0 {
		desired = []language.Tag{language.English}
	}
	_, index, _ := matcher.Match(desired...)
	return c.Labels[codes[index]]
}

// RouteKey returns the path segment a module mounts under, with the
// "$" to "__" namespacing rewrite applied.
func RouteKey(m Manifest) string {
	return strings.ReplaceAll(m.Name, "$", "__")
}
