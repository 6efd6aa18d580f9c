package templify

import (
	"strconv"
	"strings"
)

// exprParser is a recursive-descent parser over the boolean expression
// grammar:
//
//	expr       := or
//	or         := and ( 'or' and )*
//	and        := unary ( 'and' unary )*
//	unary      := 'not' unary | comparison
//	comparison := primary ( ('='|'=='|'!='|'<'|'<='|'>'|'>=') primary )?
//	primary    := '(' expr ')' | literal | path
//
// a precedence-chain parser (Expression -> relationalExpression ->
// simpleExpression -> term -> power) collapsed to the smaller grammar
// templify actually needs: no arithmetic, no filters.
type exprParser struct {
	toks []exprToken
	pos  int
}

func (p *exprParser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *exprParser) peek() *exprToken {
	if p.atEnd() {
		return nil
	}
	return &p.toks[p.pos]
}

func (p *exprParser) advance() *exprToken {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *exprParser) peekSymbol(sym string) bool {
	t := p.peek()
	return t != nil && t.kind == exprTokSymbol && t.val == sym
}

func (p *exprParser) matchSymbol(sym string) bool {
	if p.peekSymbol(sym) {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) peekKeyword(kw string) bool {
	t := p.peek()
	return t != nil && t.kind == exprTokKeyword && t.val == kw
}

func (p *exprParser) matchKeyword(kw string) bool {
	if p.peekKeyword(kw) {
		p.pos++
		return true
	}
	return false
}

func (p *exprParser) matchIdentifierTok() (exprToken, bool) {
	t := p.peek()
	if t != nil && t.kind == exprTokIdentifier {
		p.pos++
		return *t, true
	}
	return exprToken{}, false
}

func (p *exprParser) matchIntegerTok() (exprToken, bool) {
	t := p.peek()
	if t != nil && t.kind == exprTokInteger {
		p.pos++
		return *t, true
	}
	return exprToken{}, false
}

func (p *exprParser) matchDecimalTok() (exprToken, bool) {
	t := p.peek()
	if t != nil && t.kind == exprTokDecimal {
		p.pos++
		return *t, true
	}
	return exprToken{}, false
}

func (p *exprParser) matchStringTok() (exprToken, bool) {
	t := p.peek()
	if t != nil && t.kind == exprTokString {
		p.pos++
		return *t, true
	}
	return exprToken{}, false
}

func (p *exprParser) matchComparisonOp() (string, bool) {
	t := p.peek()
	if t == nil || t.kind != exprTokSymbol {
		return "", false
	}
	switch t.val {
	case "=", "==", "!=", "<>", "<", "<=", ">", ">=":
		p.pos++
		if t.val == "<>" {
			return "!=", true
		}
		return t.val, true
	}
	return "", false
}

func (p *exprParser) errorf(format string, args ...any) error {
	return errorf("expression-parser", format, args...)
}

// parseOr is the grammar's top-level `expr`/`or` production.
func (p *exprParser) parseOr() (ExprNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.matchKeyword("or") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &OrNode{L: left, R: right}
	}
	return left, nil
}

func (p *exprParser) parseAnd() (ExprNode, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.matchKeyword("and") {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &AndNode{L: left, R: right}
	}
	return left, nil
}

func (p *exprParser) parseUnary() (ExprNode, error) {
	if p.matchKeyword("not") {
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &NotNode{X: x}, nil
	}
	return p.parseComparison()
}

func (p *exprParser) parseComparison() (ExprNode, error) {
	left, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	if op, ok := p.matchComparisonOp(); ok {
		right, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &CompareNode{Op: op, L: left, R: right}, nil
	}
	return left, nil
}

func (p *exprParser) parsePrimary() (ExprNode, error) {
	if p.matchSymbol("(") {
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.matchSymbol(")") {
			return nil, p.errorf("expected ')' to close grouped expression")
		}
		return expr, nil
	}
	if p.matchKeyword("true") {
		return &LiteralNode{Val: NewBool(true)}, nil
	}
	if p.matchKeyword("false") {
		return &LiteralNode{Val: NewBool(false)}, nil
	}
	if tok, ok := p.matchStringTok(); ok {
		return &LiteralNode{Val: NewString(tok.val)}, nil
	}
	if tok, ok := p.matchDecimalTok(); ok {
		d, ok := ParseDecimal(tok.val)
		if !ok {
			return nil, p.errorf("malformed decimal literal %q", tok.val)
		}
		return &LiteralNode{Val: NewDecimal(d)}, nil
	}
	if tok, ok := p.matchIntegerTok(); ok {
		i, err := strconv.ParseInt(tok.val, 10, 64)
		if err != nil {
			return nil, p.errorf("malformed integer literal %q", tok.val)
		}
		return &LiteralNode{Val: NewInteger(i)}, nil
	}
	if p.peekSymbol(".") || p.peek() != nil && p.peek().kind == exprTokIdentifier {
		path, err := p.parsePath()
		if err != nil {
			return nil, err
		}
		return &PathNode{Path: path}, nil
	}
	return nil, p.errorf("unexpected token in expression")
}

// parsePath parses the grammar's `path` production directly from the
// already-lexed token stream, building the same Path/Segment structure
// ParsePath builds from a raw string (path.go), so both producers feed the
// one ResolvePath consumer.
func (p *exprParser) parsePath() (*Path, error) {
	path := &Path{}
	if p.matchSymbol(".") {
		path.Relative = true
	}

	if tok, ok := p.matchIdentifierTok(); ok {
		path.Segments = append(path.Segments, Segment{Kind: SegName, Name: tok.val})
	} else if !p.peekSymbol("[") {
		if path.Relative {
			return path, nil
		}
		return nil, p.errorf("expected identifier in path")
	}

	for {
		if p.matchSymbol(".") {
			tok, ok := p.matchIdentifierTok()
			if !ok {
				return nil, p.errorf("expected identifier after '.' in path")
			}
			path.Segments = append(path.Segments, Segment{Kind: SegName, Name: tok.val})
			continue
		}
		if p.matchSymbol("[") {
			seg, err := p.parseIndexSegment()
			if err != nil {
				return nil, err
			}
			path.Segments = append(path.Segments, seg)
			continue
		}
		break
	}
	return path, nil
}

func (p *exprParser) parseIndexSegment() (Segment, error) {
	if tok, ok := p.matchIntegerTok(); ok {
		if !p.matchSymbol("]") {
			return Segment{}, p.errorf("expected ']' after index")
		}
		n, _ := strconv.Atoi(tok.val)
		return Segment{Kind: SegIndex, IndexLiteral: n}, nil
	}
	if tok, ok := p.matchIdentifierTok(); ok {
		if !p.matchSymbol("]") {
			return Segment{}, p.errorf("expected ']' after index")
		}
		return Segment{Kind: SegIndex, IndexIdent: tok.val, IndexIsIdent: true}, nil
	}
	return Segment{}, p.errorf("expected an integer or identifier index")
}

// ParseExpr parses a full boolean/comparison expression (used by
// {{#if …}}/{{#elseif …}} conditions).
func ParseExpr(raw string) (ExprNode, error) {
	toks, err := newExprLexer(raw).tokenizeAll()
	if err != nil {
		return nil, err
	}
	p := &exprParser{toks: toks}
	node, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if !p.atEnd() {
		return nil, p.errorf("unexpected trailing tokens in expression %q", raw)
	}
	return node, nil
}

// ParsePlaceholderExpr parses a `{{ <expr-or-path> [: <format-id>] }}`
// token's inner text, splitting off a trailing colon-introduced format
// specifier at paren-depth 0: when the inner expression is parenthesized,
// the colon-specifier is parsed after the closing parenthesis.
func ParsePlaceholderExpr(raw string) (ExprNode, string, error) {
	toks, err := newExprLexer(raw).tokenizeAll()
	if err != nil {
		return nil, "", err
	}

	depth := 0
	splitIdx := -1
	for i, t := range toks {
		if t.kind != exprTokSymbol {
			continue
		}
		switch t.val {
		case "(":
			depth++
		case ")":
			depth--
		case ":":
			if depth == 0 {
				splitIdx = i
			}
		}
	}

	exprToks := toks
	formatID := ""
	if splitIdx >= 0 {
		exprToks = toks[:splitIdx]
		formatID = strings.TrimSpace(raw[toks[splitIdx].pos+1:])
	}

	p := &exprParser{toks: exprToks}
	node, err := p.parseOr()
	if err != nil {
		return nil, "", err
	}
	if !p.atEnd() {
		return nil, "", p.errorf("unexpected trailing tokens in expression %q", raw)
	}
	return node, formatID, nil
}
