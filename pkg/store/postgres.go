package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lifeforge/forge/pkg/id"
	"github.com/lifeforge/forge/pkg/schema"
)

// Postgres is a Store backed by a single JSONB records table. Filters are
// compiled to parameterized SQL; values never enter the query text.
type Postgres struct {
	pool     *pgxpool.Pool
	registry *schema.Registry
}

// NewPostgres creates a PostgreSQL-backed store. The records table must
// exist; run the bundled goose migrations at startup. The registry may
// be nil when relation expansion is bound later via BindRegistry.
func NewPostgres(pool *pgxpool.Pool, registry *schema.Registry) *Postgres {
	return &Postgres{pool: pool, registry: registry}
}

// BindRegistry attaches the schema registry used for relation
// expansion. The app calls this after aggregating module schemas, so
// the store can be constructed before the modules are known.
func (p *Postgres) BindRegistry(r *schema.Registry) { p.registry = r }

func (p *Postgres) Create(ctx context.Context, collection string, data map[string]any) (Record, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	recordID := id.New()
	now := time.Now().UTC()
	_, err = p.pool.Exec(ctx,
		`INSERT INTO records (collection, id, data, created, updated) VALUES ($1, $2, $3, $4, $4)`,
		collection, recordID, payload, now)
	if err != nil {
		return nil, fmt.Errorf("insert record: %w", err)
	}

	rec := Record(data).Clone()
	rec["id"] = recordID
	rec["created"] = now.Format(time.RFC3339)
	rec["updated"] = now.Format(time.RFC3339)
	return rec, nil
}

func (p *Postgres) GetOne(ctx context.Context, collection, recordID string, q Query) (Record, error) {
	rec, err := p.fetchOne(ctx, collection, recordID)
	if err != nil {
		return nil, err
	}
	if err := p.expand(ctx, collection, []Record{rec}, q.Expand); err != nil {
		return nil, err
	}
	return parseFieldSelection(q.Fields).apply(rec), nil
}

func (p *Postgres) GetList(ctx context.Context, collection string, page, perPage int, q Query) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 30
	}

	where, args, err := p.compileWhere(collection, q)
	if err != nil {
		return ListResult{}, err
	}
	orderBy := compileSort(q.Sort)

	sql := fmt.Sprintf(
		`SELECT id, data, created, updated, count(*) OVER() AS total FROM records WHERE %s ORDER BY %s LIMIT %d OFFSET %d`,
		where, orderBy, perPage, (page-1)*perPage)

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var (
		items []Record
		total int
	)
	for rows.Next() {
		rec, rowTotal, err := scanRecord(rows, true)
		if err != nil {
			return ListResult{}, err
		}
		items = append(items, rec)
		total = rowTotal
	}
	if err := rows.Err(); err != nil {
		return ListResult{}, fmt.Errorf("list records: %w", err)
	}

	if err := p.expand(ctx, collection, items, q.Expand); err != nil {
		return ListResult{}, err
	}
	applySelection(items, q.Fields)

	return ListResult{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
		Items:      items,
	}, nil
}

func (p *Postgres) GetFullList(ctx context.Context, collection string, q Query) ([]Record, error) {
	where, args, err := p.compileWhere(collection, q)
	if err != nil {
		return nil, err
	}
	orderBy := compileSort(q.Sort)

	sql := fmt.Sprintf(
		`SELECT id, data, created, updated FROM records WHERE %s ORDER BY %s`, where, orderBy)

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var items []Record
	for rows.Next() {
		rec, _, err := scanRecord(rows, false)
		if err != nil {
			return nil, err
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	if err := p.expand(ctx, collection, items, q.Expand); err != nil {
		return nil, err
	}
	applySelection(items, q.Fields)
	return items, nil
}

func (p *Postgres) GetFirstListItem(ctx context.Context, collection string, q Query) (Record, error) {
	where, args, err := p.compileWhere(collection, q)
	if err != nil {
		return nil, err
	}
	orderBy := compileSort(q.Sort)

	sql := fmt.Sprintf(
		`SELECT id, data, created, updated FROM records WHERE %s ORDER BY %s LIMIT 1`, where, orderBy)

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("first record: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("first record: %w", err)
		}
		return nil, ErrNotFound
	}
	rec, _, err := scanRecord(rows, false)
	if err != nil {
		return nil, err
	}

	if err := p.expand(ctx, collection, []Record{rec}, q.Expand); err != nil {
		return nil, err
	}
	return parseFieldSelection(q.Fields).apply(rec), nil
}

func (p *Postgres) Update(ctx context.Context, collection, recordID string, data map[string]any) (Record, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	tag, err := p.pool.Exec(ctx,
		`UPDATE records SET data = data || $3::jsonb, updated = $4 WHERE collection = $1 AND id = $2`,
		collection, recordID, payload, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	return p.fetchOne(ctx, collection, recordID)
}

func (p *Postgres) Delete(ctx context.Context, collection, recordID string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM records WHERE collection = $1 AND id = $2`, collection, recordID)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Exists(ctx context.Context, collection, recordID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM records WHERE collection = $1 AND id = $2)`,
		collection, recordID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check record: %w", err)
	}
	return exists, nil
}

func (p *Postgres) fetchOne(ctx context.Context, collection, recordID string) (Record, error) {
	var (
		payload          []byte
		created, updated time.Time
	)
	err := p.pool.QueryRow(ctx,
		`SELECT data, created, updated FROM records WHERE collection = $1 AND id = $2`,
		collection, recordID).Scan(&payload, &created, &updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	rec["id"] = recordID
	rec["created"] = created.Format(time.RFC3339)
	rec["updated"] = updated.Format(time.RFC3339)
	return rec, nil
}

func (p *Postgres) expand(ctx context.Context, collection string, recs []Record, expandExpr string) error {
	return expandRecords(ctx, p.registry, collection, recs, expandExpr,
		func(ctx context.Context, collection, id string) (Record, error) {
			return p.fetchOne(ctx, collection, id)
		})
}

// compileWhere builds the WHERE clause: collection match plus the parsed
// filter AST rendered as parameterized JSONB comparisons.
func (p *Postgres) compileWhere(collection string, q Query) (string, []any, error) {
	node, err := parseFilter(q.Filter)
	if err != nil {
		return "", nil, err
	}
	if err := validateParams(node, q.Params); err != nil {
		return "", nil, err
	}

	args := []any{collection}
	clause := "collection = $1"
	if node != nil {
		sub, err := compileNode(node, q.Params, &args)
		if err != nil {
			return "", nil, err
		}
		clause += " AND " + sub
	}
	return clause, args, nil
}

func compileNode(node filterNode, params map[string]any, args *[]any) (string, error) {
	switch n := node.(type) {
	case boolNode:
		left, err := compileNode(n.left, params, args)
		if err != nil {
			return "", err
		}
		right, err := compileNode(n.right, params, args)
		if err != nil {
			return "", err
		}
		joiner := " AND "
		if n.op == "||" {
			joiner = " OR "
		}
		return "(" + left + joiner + right + ")", nil
	case cmpNode:
		return compileComparison(n, params, args)
	}
	return "", fmt.Errorf("%w: unknown filter node", ErrBadFilter)
}

func compileComparison(n cmpNode, params map[string]any, args *[]any) (string, error) {
	value := params[n.param]
	field := fmt.Sprintf("data->'%s'", n.field)
	text := fmt.Sprintf("data->>'%s'", n.field)

	switch n.op {
	case "=", "!=":
		encoded, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encode filter param %q: %w", n.param, err)
		}
		*args = append(*args, string(encoded))
		ph := fmt.Sprintf("$%d::jsonb", len(*args))
		// Scalar equality, or array membership when the field holds an array.
		expr := fmt.Sprintf("(%s = %s OR (jsonb_typeof(%s) = 'array' AND %s @> %s))",
			field, ph, field, field, ph)
		if n.op == "!=" {
			return "NOT " + expr, nil
		}
		return expr, nil

	case ">", ">=", "<", "<=":
		if num, ok := toNumber(value); ok {
			*args = append(*args, num)
			return fmt.Sprintf("(%s)::numeric %s $%d", text, n.op, len(*args)), nil
		}
		*args = append(*args, stringify(value))
		return fmt.Sprintf("%s %s $%d", text, n.op, len(*args)), nil

	case "~", "!~":
		*args = append(*args, "%"+escapeLike(stringify(value))+"%")
		expr := fmt.Sprintf("%s ILIKE $%d", text, len(*args))
		if n.op == "!~" {
			return "NOT " + expr, nil
		}
		return expr, nil
	}
	return "", fmt.Errorf("%w: unsupported operator %q", ErrBadFilter, n.op)
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	return strings.ReplaceAll(s, `_`, `\_`)
}

// compileSort renders the sort expression against JSONB fields with a
// deterministic id tiebreaker. Field names come from route code, not
// user input, but are still sanity-checked to identifier characters.
func compileSort(sortExpr string) string {
	var parts []string
	for _, key := range parseSortKeys(sortExpr) {
		if !isIdent(key.field) {
			continue
		}
		dir := "ASC"
		if key.desc {
			dir = "DESC"
		}
		switch key.field {
		case "created", "updated", "id":
			parts = append(parts, key.field+" "+dir)
		default:
			parts = append(parts, fmt.Sprintf("data->'%s' %s", key.field, dir))
		}
	}
	parts = append(parts, "id ASC")
	return strings.Join(parts, ", ")
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			continue
		}
		return false
	}
	return true
}

func applySelection(items []Record, fields string) {
	sel := parseFieldSelection(fields)
	if sel == nil {
		return
	}
	for i, rec := range items {
		items[i] = sel.apply(rec)
	}
}

type recordScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row recordScanner, withTotal bool) (Record, int, error) {
	var (
		recordID         string
		payload          []byte
		created, updated time.Time
		total            int
	)
	dest := []any{&recordID, &payload, &created, &updated}
	if withTotal {
		dest = append(dest, &total)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, 0, fmt.Errorf("scan record: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, 0, fmt.Errorf("decode record: %w", err)
	}
	rec["id"] = recordID
	rec["created"] = created.Format(time.RFC3339)
	rec["updated"] = updated.Format(time.RFC3339)
	return rec, total, nil
}
