package query

import (
	"fmt"
	"strings"
)

// Condition is one node of a filter expression tree: either a Where leaf
// or a Group of conditions. Nil conditions are permitted anywhere in the
// tree and are skipped during compilation, so callers can build
// conditions optionally without pruning.
type Condition interface {
	isCondition()
}

// Where is a single field comparison.
// Op is one of: = != > >= < <= ~ !~
type Where struct {
	Field string
	Op    string
	Value any
}

// Group combines child conditions with a boolean operator.
type Group struct {
	Combine string // CombineAnd or CombineOr
	Filters []Condition
}

func (Where) isCondition() {}
func (Group) isCondition() {}

// Combination operators for Group.
const (
	CombineAnd = "&&"
	CombineOr  = "||"
)

// compileFilter walks the condition tree depth-first and produces the
// store's placeholder expression plus a flat params map. Values never
// enter the expression string; each leaf binds a fresh {:pN} placeholder.
// Top-level conditions are joined with &&.
func compileFilter(conds []Condition) (string, map[string]any) {
	params := make(map[string]any)
	counter := 0
	expr := compileGroup(conds, CombineAnd, params, &counter)
	return expr, params
}

func compileGroup(conds []Condition, combine string, params map[string]any, counter *int) string {
	var parts []string
	for _, cond := range conds {
		if cond == nil {
			continue
		}
		switch c := cond.(type) {
		case Where:
			name := fmt.Sprintf("p%d", *counter)
			*counter++
			params[name] = c.Value
			parts = append(parts, fmt.Sprintf("%s %s {:%s}", c.Field, c.Op, name))
		case Group:
			sub := compileGroup(c.Filters, groupCombine(c.Combine), params, counter)
			if sub == "" {
				continue
			}
			parts = append(parts, "("+sub+")")
		}
	}
	return strings.Join(parts, " "+combine+" ")
}

func groupCombine(combine string) string {
	if combine == CombineOr {
		return CombineOr
	}
	return CombineAnd
}
