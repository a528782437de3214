package store

import (
	"context"
	"strings"

	"github.com/lifeforge/forge/pkg/schema"
)

type fetchFunc func(ctx context.Context, collection, id string) (Record, error)

// expandRecords resolves relation fields into nested records under the
// "expand" key. Relation targets come from the registry; dangling ids are
// skipped rather than failing the whole query.
func expandRecords(ctx context.Context, registry *schema.Registry, collection string, recs []Record, expandExpr string, fetch fetchFunc) error {
	expandExpr = strings.TrimSpace(expandExpr)
	if expandExpr == "" || registry == nil || len(recs) == 0 {
		return nil
	}

	col, ok := registry.Lookup(collection)
	if !ok {
		return nil
	}
	owner, _ := registry.Owner(collection)
	targets := col.ExpandTargets()

	for rel := range strings.SplitSeq(expandExpr, ",") {
		rel = strings.TrimSpace(rel)
		target, ok := targets[rel]
		if !ok {
			continue
		}
		targetKey := schema.ResolveCollection(target, owner)

		for _, rec := range recs {
			expanded, err := expandField(ctx, targetKey, rec[rel], fetch)
			if err != nil {
				return err
			}
			if expanded == nil {
				continue
			}
			exp, _ := rec["expand"].(map[string]any)
			if exp == nil {
				exp = make(map[string]any)
				rec["expand"] = exp
			}
			exp[rel] = expanded
		}
	}
	return nil
}

func expandField(ctx context.Context, targetKey string, value any, fetch fetchFunc) (any, error) {
	switch v := value.(type) {
	case string:
		rec, err := fetch(ctx, targetKey, v)
		if err != nil {
			return nil, nil
		}
		return rec, nil
	case []any:
		out := make([]Record, 0, len(v))
		for _, item := range v {
			id, ok := item.(string)
			if !ok {
				continue
			}
			rec, err := fetch(ctx, targetKey, id)
			if err != nil {
				continue
			}
			out = append(out, rec)
		}
		return out, nil
	}
	return nil, nil
}
