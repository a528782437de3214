package store

import (
	"fmt"
	"sort"
	"strings"
)

// fieldSelection is the parsed form of a comma-joined field list.
// Top-level names select record fields; "expand.<rel>.<field>" entries
// narrow expanded relations.
type fieldSelection struct {
	top    map[string]struct{}
	expand map[string]map[string]struct{}
}

func parseFieldSelection(fields string) *fieldSelection {
	fields = strings.TrimSpace(fields)
	if fields == "" {
		return nil
	}

	sel := &fieldSelection{
		top:    make(map[string]struct{}),
		expand: make(map[string]map[string]struct{}),
	}
	for f := range strings.SplitSeq(fields, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(f, "expand."); ok {
			rel, field, ok := strings.Cut(rest, ".")
			if !ok {
				// "expand.rel" keeps the whole expanded record
				sel.top["expand"] = struct{}{}
				continue
			}
			if sel.expand[rel] == nil {
				sel.expand[rel] = make(map[string]struct{})
			}
			sel.expand[rel][field] = struct{}{}
			continue
		}
		sel.top[f] = struct{}{}
	}
	return sel
}

// apply returns a copy of the record narrowed to the selection.
func (s *fieldSelection) apply(rec Record) Record {
	if s == nil {
		return rec
	}

	out := make(Record, len(s.top)+1)
	for f := range s.top {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}

	if len(s.expand) == 0 {
		return out
	}

	exp, ok := rec["expand"].(map[string]any)
	if !ok {
		return out
	}
	narrowed := make(map[string]any, len(s.expand))
	for rel, fields := range s.expand {
		switch related := exp[rel].(type) {
		case Record:
			narrowed[rel] = pickFields(related, fields)
		case []Record:
			picked := make([]Record, len(related))
			for i, r := range related {
				picked[i] = pickFields(r, fields)
			}
			narrowed[rel] = picked
		}
	}
	out["expand"] = narrowed
	return out
}

func pickFields(rec Record, fields map[string]struct{}) Record {
	out := make(Record, len(fields))
	for f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

// sortRecords orders records in place by a comma-joined sort expression.
// A "-" prefix sorts that key descending. The sort is stable so repeated
// queries return records in a deterministic order.
func sortRecords(items []Record, sortExpr string) {
	keys := parseSortKeys(sortExpr)
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		for _, key := range keys {
			cmp := compareValues(items[i][key.field], items[j][key.field])
			if cmp == 0 {
				continue
			}
			if key.desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

type sortKey struct {
	field string
	desc  bool
}

func parseSortKeys(sortExpr string) []sortKey {
	var keys []sortKey
	for part := range strings.SplitSeq(sortExpr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if field, ok := strings.CutPrefix(part, "-"); ok {
			keys = append(keys, sortKey{field: field, desc: true})
			continue
		}
		keys = append(keys, sortKey{field: part})
	}
	return keys
}

func compareValues(a, b any) int {
	if an, ok := toNumber(a); ok {
		if bn, ok := toNumber(b); ok {
			switch {
			case an < bn:
				return -1
			case an > bn:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(stringify(a), stringify(b))
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
