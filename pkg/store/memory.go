package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/lifeforge/forge/pkg/id"
	"github.com/lifeforge/forge/pkg/schema"
)

// Memory is an in-memory Store. It evaluates the same filter grammar as
// the PostgreSQL backend and is the test double for the request pipeline.
// Safe for concurrent use.
type Memory struct {
	mu       sync.RWMutex
	registry *schema.Registry
	data     map[string]map[string]Record
	order    map[string][]string // insertion order per collection
}

// NewMemory creates an empty in-memory store. The registry is used to
// resolve relation targets during expansion; it may be nil when expansion
// is not needed.
func NewMemory(registry *schema.Registry) *Memory {
	return &Memory{
		registry: registry,
		data:     make(map[string]map[string]Record),
		order:    make(map[string][]string),
	}
}

// BindRegistry attaches the schema registry used for relation expansion.
func (m *Memory) BindRegistry(r *schema.Registry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registry = r
}

func (m *Memory) Create(_ context.Context, collection string, data map[string]any) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := make(Record, len(data)+3)
	for k, v := range data {
		rec[k] = v
	}
	now := time.Now().UTC().Format(time.RFC3339)
	rec["id"] = id.New()
	rec["created"] = now
	rec["updated"] = now

	if m.data[collection] == nil {
		m.data[collection] = make(map[string]Record)
	}
	m.data[collection][rec.ID()] = rec
	m.order[collection] = append(m.order[collection], rec.ID())
	return rec.Clone(), nil
}

func (m *Memory) GetOne(ctx context.Context, collection, id string, q Query) (Record, error) {
	// Clone before releasing the lock: a concurrent Update mutates the
	// same record map in place.
	m.mu.RLock()
	rec, ok := m.data[collection][id]
	if ok {
		rec = rec.Clone()
	}
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	if err := m.expand(ctx, collection, []Record{rec}, q.Expand); err != nil {
		return nil, err
	}
	return parseFieldSelection(q.Fields).apply(rec), nil
}

func (m *Memory) GetList(ctx context.Context, collection string, page, perPage int, q Query) (ListResult, error) {
	matched, err := m.match(ctx, collection, q)
	if err != nil {
		return ListResult{}, err
	}

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}
	total := len(matched)
	totalPages := (total + perPage - 1) / perPage

	start := min((page-1)*perPage, total)
	end := min(start+perPage, total)

	return ListResult{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		Items:      matched[start:end],
	}, nil
}

func (m *Memory) GetFullList(ctx context.Context, collection string, q Query) ([]Record, error) {
	return m.match(ctx, collection, q)
}

func (m *Memory) GetFirstListItem(ctx context.Context, collection string, q Query) (Record, error) {
	matched, err := m.match(ctx, collection, q)
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, ErrNotFound
	}
	return matched[0], nil
}

func (m *Memory) Update(_ context.Context, collection, id string, data map[string]any) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.data[collection][id]
	if !ok {
		return nil, ErrNotFound
	}
	for k, v := range data {
		rec[k] = v
	}
	rec["updated"] = time.Now().UTC().Format(time.RFC3339)
	return rec.Clone(), nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[collection][id]; !ok {
		return ErrNotFound
	}
	delete(m.data[collection], id)

	ids := m.order[collection]
	for i, existing := range ids {
		if existing == id {
			m.order[collection] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) Exists(_ context.Context, collection, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.data[collection][id]
	return ok, nil
}

// match evaluates the query against a collection and returns cloned,
// sorted, expanded, field-narrowed records.
func (m *Memory) match(ctx context.Context, collection string, q Query) ([]Record, error) {
	node, err := parseFilter(q.Filter)
	if err != nil {
		return nil, err
	}
	if err := validateParams(node, q.Params); err != nil {
		return nil, err
	}

	m.mu.RLock()
	matched := make([]Record, 0, len(m.order[collection]))
	for _, id := range m.order[collection] {
		rec := m.data[collection][id]
		if node == nil || evalFilter(node, rec, q.Params) {
			matched = append(matched, rec.Clone())
		}
	}
	m.mu.RUnlock()

	sortRecords(matched, q.Sort)
	if err := m.expand(ctx, collection, matched, q.Expand); err != nil {
		return nil, err
	}

	sel := parseFieldSelection(q.Fields)
	if sel != nil {
		for i, rec := range matched {
			matched[i] = sel.apply(rec)
		}
	}
	return matched, nil
}

// expand resolves relation fields into nested records under "expand".
func (m *Memory) expand(ctx context.Context, collection string, recs []Record, expandExpr string) error {
	return expandRecords(ctx, m.registry, collection, recs, expandExpr,
		func(ctx context.Context, collection, id string) (Record, error) {
			return m.GetOne(ctx, collection, id, Query{})
		})
}

// evalFilter evaluates a parsed filter node against a record.
func evalFilter(node filterNode, rec Record, params map[string]any) bool {
	switch n := node.(type) {
	case boolNode:
		if n.op == "&&" {
			return evalFilter(n.left, rec, params) && evalFilter(n.right, rec, params)
		}
		return evalFilter(n.left, rec, params) || evalFilter(n.right, rec, params)
	case cmpNode:
		return evalComparison(n, rec, params)
	}
	return false
}

func evalComparison(n cmpNode, rec Record, params map[string]any) bool {
	val := rec[n.field]
	want := params[n.param]

	// Equality against array fields matches any element.
	if items, ok := val.([]any); ok && (n.op == "=" || n.op == "!=") {
		found := false
		for _, item := range items {
			if compareValues(item, want) == 0 {
				found = true
				break
			}
		}
		if n.op == "=" {
			return found
		}
		return !found
	}

	switch n.op {
	case "=":
		return compareValues(val, want) == 0
	case "!=":
		return compareValues(val, want) != 0
	case ">":
		return compareValues(val, want) > 0
	case ">=":
		return compareValues(val, want) >= 0
	case "<":
		return compareValues(val, want) < 0
	case "<=":
		return compareValues(val, want) <= 0
	case "~":
		return strings.Contains(strings.ToLower(stringify(val)), strings.ToLower(stringify(want)))
	case "!~":
		return !strings.Contains(strings.ToLower(stringify(val)), strings.ToLower(stringify(want)))
	}
	return false
}
