package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// None marks an endpoint slot as unused: no body, no query, or no
// decoded result.
type None struct{}

// endpointConfig holds per-endpoint flags.
type endpointConfig struct {
	encrypted bool
}

// EndpointOption configures a typed endpoint.
type EndpointOption func(*endpointConfig)

// Encrypted marks the endpoint's payloads as encrypted.
func Encrypted() EndpointOption {
	return func(cfg *endpointConfig) {
		cfg.encrypted = true
	}
}

// Endpoint is a typed request builder for one server route. Input and
// Query clone the builder, so a package-level endpoint value can be
// shared across goroutines.
type Endpoint[Body, Query, Out any] struct {
	client    *Client
	body      *Body
	query     *Query
	method    string
	path      string
	encrypted bool
}

// NewEndpoint declares a typed endpoint on c. Generated bindings call
// this; hand-written declarations are equally fine.
func NewEndpoint[Body, Query, Out any](c *Client, method, path string, opts ...EndpointOption) *Endpoint[Body, Query, Out] {
	var cfg endpointConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Endpoint[Body, Query, Out]{
		client:    c,
		method:    method,
		path:      path,
		encrypted: cfg.encrypted,
	}
}

// Input sets the request body.
func (e Endpoint[Body, Query, Out]) Input(body Body) *Endpoint[Body, Query, Out] {
	e.body = &body
	return &e
}

// Query sets the query parameters.
func (e Endpoint[Body, Query, Out]) Query(query Query) *Endpoint[Body, Query, Out] {
	e.query = &query
	return &e
}

// Fetch executes a read. The endpoint must have been declared with
// http.MethodGet.
func (e *Endpoint[Body, Query, Out]) Fetch(ctx context.Context) (Out, error) {
	var out Out
	if e.method != http.MethodGet {
		return out, fmt.Errorf("client: Fetch on %s endpoint %s", e.method, e.path)
	}
	return out, e.execute(ctx, &out)
}

// Mutate executes a write. The endpoint must have been declared with
// a non-GET method.
func (e *Endpoint[Body, Query, Out]) Mutate(ctx context.Context) (Out, error) {
	var out Out
	if e.method == http.MethodGet {
		return out, fmt.Errorf("client: Mutate on GET endpoint %s", e.path)
	}
	return out, e.execute(ctx, &out)
}

func (e *Endpoint[Body, Query, Out]) execute(ctx context.Context, out *Out) error {
	query, err := e.queryMap()
	if err != nil {
		return err
	}

	var body any
	if e.body != nil {
		body = e.body
	}

	var decoded any = out
	if _, none := any(*out).(None); none {
		decoded = nil
	}
	return e.client.do(ctx, e.method, e.path, e.encrypted, body, query, decoded)
}

// queryMap flattens the typed query value through its JSON form.
func (e *Endpoint[Body, Query, Out]) queryMap() (map[string]any, error) {
	if e.query == nil {
		return nil, nil
	}
	if m, ok := any(*e.query).(map[string]any); ok {
		return m, nil
	}
	raw, err := json.Marshal(e.query)
	if err != nil {
		return nil, fmt.Errorf("client: encode query: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("client: query of endpoint %s is not an object", e.path)
	}
	return m, nil
}
