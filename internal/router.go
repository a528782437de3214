package internal

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Node is one entry in a route tree. It is exactly one of:
// a *Controller leaf, a nested Tree, or a pre-built http.Handler.
// Anything else fails at mount time.
type Node = any

// Tree is a nested mapping from path segment to Node. Modules declare
// their routes as trees; the registrar walks them recursively and
// mounts each controller onto the router. A "$" in a segment is
// rewritten to "__", namespacing third-party modules' route groups.
type Tree map[string]Node

// mountedRoute records one mounted controller for route listing and
// client generation.
type mountedRoute struct {
	controller *Controller
	path       string
}

// mountTree walks a route tree and mounts it onto r. Mount failures
// are startup errors: a module with a malformed tree does not serve.
func (a *App) mountTree(r chi.Router, prefix string, tree Tree) error {
	seen := make(map[string]string, len(tree))

	for _, key := range slices.Sorted(maps.Keys(tree)) {
		if key == "" {
			return fmt.Errorf("route tree %q: empty segment", prefix)
		}
		if strings.Contains(key, "/") {
			return fmt.Errorf("route tree %q: segment %q must not contain a slash", prefix, key)
		}

		segment := strings.ReplaceAll(key, "$", "__")
		if prior, ok := seen[segment]; ok {
			return fmt.Errorf("route tree %q: segments %q and %q collide after rewrite", prefix, prior, key)
		}
		seen[segment] = key

		path := prefix + "/" + segment
		switch node := tree[key].(type) {
		case *Controller:
			if err := node.validate(a.registry); err != nil {
				return fmt.Errorf("route %q: %w", path, err)
			}
			a.routes = append(a.routes, mountedRoute{path: path, controller: node})
			r.Method(node.method, "/"+segment, a.wrapHandler(node.handler(a)))
		case Tree:
			sub := chi.NewRouter()
			if err := a.mountTree(sub, path, node); err != nil {
				return err
			}
			r.Mount("/"+segment, sub)
		case map[string]any:
			sub := chi.NewRouter()
			if err := a.mountTree(sub, path, Tree(node)); err != nil {
				return err
			}
			r.Mount("/"+segment, sub)
		case http.Handler:
			r.Mount("/"+segment, node)
		case nil:
			return fmt.Errorf("route %q: nil node", path)
		default:
			return fmt.Errorf("route %q: unsupported node type %T", path, node)
		}
	}
	return nil
}

// Router is the interface handlers use to declare plain routes
// outside the controller tree (key exchange, webhooks, static mounts).
type Router interface {
	// GET registers a handler for GET requests.
	GET(path string, h HandlerFunc, mw ...Middleware)

	// POST registers a handler for POST requests.
	POST(path string, h HandlerFunc, mw ...Middleware)

	// PUT registers a handler for PUT requests.
	PUT(path string, h HandlerFunc, mw ...Middleware)

	// PATCH registers a handler for PATCH requests.
	PATCH(path string, h HandlerFunc, mw ...Middleware)

	// DELETE registers a handler for DELETE requests.
	DELETE(path string, h HandlerFunc, mw ...Middleware)

	// Group creates an inline route group.
	// All routes defined inside fn share no common pattern prefix.
	Group(fn func(r Router))

	// Route creates a route group with a pattern prefix.
	// All routes defined inside fn share the pattern prefix.
	Route(pattern string, fn func(r Router))

	// Use appends middleware to the router's middleware stack.
	Use(mw ...Middleware)

	// Mount attaches an http.Handler at the given pattern.
	// Use this for legacy handlers or third-party routers.
	Mount(pattern string, h http.Handler)
}

// routerAdapter wraps chi.Router to implement the Router interface.
type routerAdapter struct {
	router chi.Router
	app    *App
}

func (r *routerAdapter) GET(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Get(path, r.wrap(h, mw...))
}

func (r *routerAdapter) POST(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Post(path, r.wrap(h, mw...))
}

func (r *routerAdapter) PUT(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Put(path, r.wrap(h, mw...))
}

func (r *routerAdapter) PATCH(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Patch(path, r.wrap(h, mw...))
}

func (r *routerAdapter) DELETE(path string, h HandlerFunc, mw ...Middleware) {
	r.router.Delete(path, r.wrap(h, mw...))
}

func (r *routerAdapter) Group(fn func(Router)) {
	r.router.Group(func(cr chi.Router) {
		fn(&routerAdapter{router: cr, app: r.app})
	})
}

func (r *routerAdapter) Route(pattern string, fn func(Router)) {
	r.router.Route(pattern, func(cr chi.Router) {
		fn(&routerAdapter{router: cr, app: r.app})
	})
}

func (r *routerAdapter) Use(mw ...Middleware) {
	for _, m := range mw {
		r.router.Use(r.app.adaptMiddleware(m))
	}
}

func (r *routerAdapter) Mount(pattern string, h http.Handler) {
	r.router.Mount(pattern, h)
}

func (r *routerAdapter) wrap(h HandlerFunc, mw ...Middleware) http.HandlerFunc {
	// Apply route-specific middleware in reverse order (last registered = first executed)
	slices.Reverse(mw)
	for _, m := range mw {
		h = m(h)
	}
	return r.app.wrapHandler(h)
}

// wrapHandler adapts a HandlerFunc into an http.HandlerFunc with
// uniform error handling.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		c := newContext(w, req, a)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// adaptMiddleware converts a forge Middleware to chi middleware.
// This adapter allows middleware to be written using the forge Context interface
// while satisfying chi's http.Handler-based middleware signature.
func (a *App) adaptMiddleware(mw Middleware) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Create a HandlerFunc that calls the next http.Handler
			nextFunc := func(c Context) error {
				next.ServeHTTP(c.Response(), c.Request())
				return nil
			}
			// Apply the forge middleware
			wrapped := mw(nextFunc)
			// Execute with a new context
			c := newContext(w, r, a)
			if err := wrapped(c); err != nil {
				a.handleError(c, err)
			}
		})
	}
}
