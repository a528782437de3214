package store

import (
	"fmt"
	"strings"
)

// The filter grammar is the store-native expression language the query
// layer compiles to:
//
//	expr       := andExpr ("||" andExpr)*
//	andExpr    := operand ("&&" operand)*
//	operand    := "(" expr ")" | comparison
//	comparison := field op "{:" name "}"
//	op         := "=" | "!=" | ">" | ">=" | "<" | "<=" | "~" | "!~"
//
// Values only ever appear as named placeholders resolved through the
// params map, so user input never reaches the expression string.

type filterNode interface{ filterNode() }

type cmpNode struct {
	field string
	op    string
	param string
}

type boolNode struct {
	op    string // "&&" or "||"
	left  filterNode
	right filterNode
}

func (cmpNode) filterNode()  {}
func (boolNode) filterNode() {}

// parseFilter parses a filter expression into its AST.
// An empty expression yields a nil node, meaning "match everything".
func parseFilter(expr string) (filterNode, error) {
	p := &filterParser{input: expr}
	p.skipSpace()
	if p.eof() {
		return nil, nil
	}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrBadFilter, p.rest(), p.pos)
	}
	return node, nil
}

type filterParser struct {
	input string
	pos   int
}

func (p *filterParser) parseOr() (filterNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consume("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = boolNode{op: "||", left: left, right: right}
	}
	return left, nil
}

func (p *filterParser) parseAnd() (filterNode, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	for p.consume("&&") {
		right, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		left = boolNode{op: "&&", left: left, right: right}
	}
	return left, nil
}

func (p *filterParser) parseOperand() (filterNode, error) {
	if p.consume("(") {
		node, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, fmt.Errorf("%w: missing closing parenthesis", ErrBadFilter)
		}
		return node, nil
	}
	return p.parseComparison()
}

var comparisonOps = []string{"!=", ">=", "<=", "!~", "=", ">", "<", "~"}

func (p *filterParser) parseComparison() (filterNode, error) {
	field := p.takeIdent()
	if field == "" {
		return nil, fmt.Errorf("%w: expected field name at offset %d", ErrBadFilter, p.pos)
	}

	var op string
	p.skipSpace()
	for _, candidate := range comparisonOps {
		if strings.HasPrefix(p.rest(), candidate) {
			op = candidate
			p.pos += len(candidate)
			break
		}
	}
	if op == "" {
		return nil, fmt.Errorf("%w: expected operator after %q", ErrBadFilter, field)
	}

	p.skipSpace()
	if !strings.HasPrefix(p.rest(), "{:") {
		return nil, fmt.Errorf("%w: expected placeholder after %q %s", ErrBadFilter, field, op)
	}
	p.pos += 2
	param := p.takeIdent()
	if param == "" || !p.consumeRaw("}") {
		return nil, fmt.Errorf("%w: malformed placeholder after %q", ErrBadFilter, field)
	}

	return cmpNode{field: field, op: op, param: param}, nil
}

func (p *filterParser) takeIdent() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '_' || c == '.' ||
			(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.input[start:p.pos]
}

func (p *filterParser) consume(tok string) bool {
	p.skipSpace()
	return p.consumeRaw(tok)
}

func (p *filterParser) consumeRaw(tok string) bool {
	if strings.HasPrefix(p.rest(), tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *filterParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}

func (p *filterParser) rest() string { return p.input[p.pos:] }

func (p *filterParser) eof() bool { return p.pos >= len(p.input) }

// collectParams returns the placeholder names referenced by the node.
func collectParams(node filterNode, into map[string]struct{}) {
	switch n := node.(type) {
	case cmpNode:
		into[n.param] = struct{}{}
	case boolNode:
		collectParams(n.left, into)
		collectParams(n.right, into)
	}
}

// validateParams checks that every referenced placeholder has a binding.
func validateParams(node filterNode, params map[string]any) error {
	if node == nil {
		return nil
	}
	refs := make(map[string]struct{})
	collectParams(node, refs)
	for name := range refs {
		if _, ok := params[name]; !ok {
			return fmt.Errorf("%w: unbound placeholder {:%s}", ErrBadFilter, name)
		}
	}
	return nil
}
