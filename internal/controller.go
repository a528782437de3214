package internal

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/lifeforge/forge/pkg/media"
	"github.com/lifeforge/forge/pkg/schema"
)

// CallbackFunc is the terminal handler of a controller. Its return
// value becomes the data field of the success envelope unless the
// controller opts out of the default response.
type CallbackFunc func(c Context) (any, error)

// ExistenceIn selects which validated input an existence check reads.
type ExistenceIn string

const (
	ExistenceInBody  ExistenceIn = "body"
	ExistenceInQuery ExistenceIn = "query"
)

// ExistenceCheck requires a field to reference an existing record
// before the callback runs. Optional checks are skipped when the
// field is absent or empty.
type ExistenceCheck struct {
	Field      string
	Collection string // logical name, resolved against the owning module
	In         ExistenceIn
	Optional   bool
}

// Input declares the validated shapes of a controller's inputs.
// Either side may be nil.
type Input struct {
	Body  schema.Shape
	Query schema.Shape
}

// Forge is a module-scoped controller factory. The module ID is
// supplied explicitly at construction and stamps every controller
// built from it, scoping collection resolution and API-key access.
type Forge struct {
	moduleID string
}

// NewForge creates a controller factory for the given module.
func NewForge(moduleID string) Forge {
	return Forge{moduleID: moduleID}
}

// Query starts a GET controller.
func (f Forge) Query() Builder {
	return Builder{method: http.MethodGet, moduleID: f.moduleID}
}

// Mutation starts a POST controller. Use Method to switch to PATCH
// or DELETE for update and delete routes.
func (f Forge) Mutation() Builder {
	return Builder{method: http.MethodPost, moduleID: f.moduleID}
}

// Builder accumulates route configuration through method chaining.
// Every mutator is a clone-with-override: the receiver is copied and
// exactly the named field changes, so two routes built from a shared
// prefix can never interfere.
type Builder struct {
	bodyShape         schema.Shape
	queryShape        schema.Shape
	mediaFields       map[string]media.Config
	method            string
	moduleID          string
	description       string
	checks            []ExistenceCheck
	statusCode        int
	noAuth            bool
	noEncryption      bool
	noDefaultResponse bool
	downloadable      bool
}

// Method overrides the HTTP method, e.g. for PATCH or DELETE mutations.
func (b Builder) Method(method string) Builder {
	b.method = strings.ToUpper(method)
	return b
}

// Input merges body and query shapes into the builder. Later calls
// add fields; a field declared twice is overridden by the later call.
func (b Builder) Input(in Input) Builder {
	if len(in.Body) > 0 {
		merged := make(schema.Shape, len(b.bodyShape)+len(in.Body))
		maps.Copy(merged, b.bodyShape)
		maps.Copy(merged, in.Body)
		b.bodyShape = merged
	}
	if len(in.Query) > 0 {
		merged := make(schema.Shape, len(b.queryShape)+len(in.Query))
		maps.Copy(merged, b.queryShape)
		maps.Copy(merged, in.Query)
		b.queryShape = merged
	}
	return b
}

// Media declares upload fields. Declaring any makes the mounted route
// multipart-aware; required fields reject non-multipart requests.
// Multipart bodies cannot pass through payload encryption, so a media
// route must also call NoEncryption or it fails at mount time.
func (b Builder) Media(fields map[string]media.Config) Builder {
	merged := make(map[string]media.Config, len(b.mediaFields)+len(fields))
	maps.Copy(merged, b.mediaFields)
	maps.Copy(merged, fields)
	b.mediaFields = merged
	return b
}

// ExistenceCheck requires the named fields to reference existing
// records in the given collections before the callback runs.
// Wrapping a collection name in brackets ("[entries]") makes the
// check optional: it is skipped when the field is absent or empty.
func (b Builder) ExistenceCheck(in ExistenceIn, fields map[string]string) Builder {
	checks := slices.Clone(b.checks)
	for _, field := range slices.Sorted(maps.Keys(fields)) {
		collection := fields[field]
		check := ExistenceCheck{Field: field, Collection: collection, In: in}
		if strings.HasPrefix(collection, "[") && strings.HasSuffix(collection, "]") {
			check.Collection = collection[1 : len(collection)-1]
			check.Optional = true
		}
		checks = append(checks, check)
	}
	b.checks = checks
	return b
}

// StatusCode overrides the success status code (default 200).
func (b Builder) StatusCode(code int) Builder {
	b.statusCode = code
	return b
}

// NoDefaultResponse leaves response writing to the callback.
func (b Builder) NoDefaultResponse() Builder {
	b.noDefaultResponse = true
	return b
}

// NoAuth makes the route public. The callback still receives a store
// handle bound to the anonymous identity.
func (b Builder) NoAuth() Builder {
	b.noAuth = true
	return b
}

// NoEncryption disables payload encryption for this route.
func (b Builder) NoEncryption() Builder {
	b.noEncryption = true
	return b
}

// Downloadable marks the route as streaming a file to the caller.
// Implies no default response envelope.
func (b Builder) Downloadable() Builder {
	b.downloadable = true
	return b
}

// Description sets human-readable route documentation, surfaced by
// the route listing and the client generator.
func (b Builder) Description(text string) Builder {
	b.description = text
	return b
}

// Callback finalizes the builder into an immutable Controller.
// Configuration errors surface when the controller is mounted, not
// per request.
func (b Builder) Callback(fn CallbackFunc) *Controller {
	return &Controller{
		method:            b.method,
		moduleID:          b.moduleID,
		bodyShape:         b.bodyShape,
		queryShape:        b.queryShape,
		mediaFields:       b.mediaFields,
		checks:            b.checks,
		statusCode:        b.statusCode,
		description:       b.description,
		noAuth:            b.noAuth,
		noEncryption:      b.noEncryption,
		noDefaultResponse: b.noDefaultResponse,
		downloadable:      b.downloadable,
		callback:          fn,
	}
}

// Controller is a finalized route descriptor. It is immutable after
// construction; the registrar only reads it.
type Controller struct {
	callback          CallbackFunc
	bodyShape         schema.Shape
	queryShape        schema.Shape
	mediaFields       map[string]media.Config
	method            string
	moduleID          string
	description       string
	checks            []ExistenceCheck
	statusCode        int
	noAuth            bool
	noEncryption      bool
	noDefaultResponse bool
	downloadable      bool
}

// HTTPMethod returns the method the controller mounts under.
func (ct *Controller) HTTPMethod() string { return ct.method }

// ModuleID returns the owning module's identifier.
func (ct *Controller) ModuleID() string { return ct.moduleID }

// DescriptionText returns the route documentation string.
func (ct *Controller) DescriptionText() string { return ct.description }

// Encrypted reports whether the route's payloads are encrypted.
func (ct *Controller) Encrypted() bool { return !ct.noEncryption }

// Public reports whether the route skips authentication.
func (ct *Controller) Public() bool { return ct.noAuth }

// IsDownloadable reports whether the route streams a file.
func (ct *Controller) IsDownloadable() bool { return ct.downloadable }

// BodyShape returns the declared body shape, nil when absent.
func (ct *Controller) BodyShape() schema.Shape { return ct.bodyShape }

// QueryShape returns the declared query shape, nil when absent.
func (ct *Controller) QueryShape() schema.Shape { return ct.queryShape }

// successCode returns the status the default response uses.
func (ct *Controller) successCode() int {
	if ct.statusCode != 0 {
		return ct.statusCode
	}
	return http.StatusOK
}

// validate checks the controller configuration against the schema
// registry. Called by the registrar at mount time.
func (ct *Controller) validate(registry *schema.Registry) error {
	if ct.callback == nil {
		return fmt.Errorf("controller %s: no callback", ct.method)
	}
	switch ct.method {
	case http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
	default:
		return fmt.Errorf("controller: unsupported method %q", ct.method)
	}
	if ct.statusCode != 0 && (ct.statusCode < 100 || ct.statusCode > 599) {
		return fmt.Errorf("controller: invalid status code %d", ct.statusCode)
	}
	if ct.method == http.MethodGet && len(ct.mediaFields) > 0 {
		return fmt.Errorf("controller: GET routes cannot declare media fields")
	}
	if ct.Encrypted() && len(ct.mediaFields) > 0 {
		return fmt.Errorf("controller: media fields require NoEncryption")
	}

	for field := range ct.mediaFields {
		if _, ok := ct.bodyShape[field]; ok {
			return fmt.Errorf("controller: field %q is both a media field and a body field", field)
		}
	}

	for _, check := range ct.checks {
		shape := ct.bodyShape
		if check.In == ExistenceInQuery {
			shape = ct.queryShape
		}
		if shape != nil {
			if _, ok := shape[check.Field]; !ok {
				return fmt.Errorf("controller: existence check on undeclared %s field %q", check.In, check.Field)
			}
		}
		if registry != nil {
			key := schema.ResolveCollection(check.Collection, ct.moduleID)
			if _, ok := registry.Lookup(key); !ok {
				return fmt.Errorf("controller: existence check field %q references unknown collection %q", check.Field, key)
			}
		}
	}
	return nil
}
