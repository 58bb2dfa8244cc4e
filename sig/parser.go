package sig

import "strings"

// shapeMismatch signals that a paragraph does not even begin with a
// designator immediately followed by '(' — the coarse "signature shape"
// test of spec §4.1. Paragraphs that mismatch are silently skipped; once a
// paragraph passes the shape test, any further grammar violation is a real
// MalformedSignatureError and parsing stops there.
type shapeMismatch struct{}

func (shapeMismatch) Error() string { return "sig: paragraph does not match signature shape" }

// Parse scans docstring paragraph by paragraph (paragraphs are delimited by
// a single blank line, "\n\n") for the first one matching the signature
// shape. Once found, every following paragraph is parsed as parameter-
// mapping lines ("name : type-expr" / "... : type-expr") rather than as
// further signature candidates — spec §4.1's mapping lines live in their
// own paragraph, separated from the signature header by a blank line.
func Parse(docstring string) (*Signature, error) {
	paragraphs := splitParagraphs(docstring)
	for i, para := range paragraphs {
		sg, err := parseParagraph(para, paragraphs[i+1:])
		if err == nil {
			return sg, nil
		}
		if _, ok := err.(shapeMismatch); ok {
			continue
		}
		return nil, err
	}
	return nil, &NoSignatureError{}
}

func splitParagraphs(docstring string) []string {
	raw := strings.Split(docstring, "\n\n")
	out := make([]string, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// tokenStream is a cursor over a slice of tokens, shared by header parsing
// and, on sub-slices, by individual parameter-mapping line parsing.
type tokenStream struct {
	toks []token
	pos  int
}

func (ts *tokenStream) peek() token {
	if ts.pos >= len(ts.toks) {
		return token{kind: tEOF}
	}
	return ts.toks[ts.pos]
}

func (ts *tokenStream) advance() token {
	t := ts.peek()
	if ts.pos < len(ts.toks) {
		ts.pos++
	}
	return t
}

func (ts *tokenStream) atEnd() bool {
	return ts.peek().kind == tEOF
}

func lexAll(paragraph string) ([]token, error) {
	l := newLexer(paragraph)
	var toks []token
	for {
		t, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tEOF {
			break
		}
	}
	return toks, nil
}

// parseParagraph parses paragraph as a signature header. following holds
// the docstring's remaining paragraphs, consumed (in order) as parameter-
// mapping lines alongside whatever mapping lines trail the header inside
// paragraph itself.
func parseParagraph(paragraph string, following []string) (*Signature, error) {
	if !looksLikeSignatureShape(paragraph) {
		return nil, shapeMismatch{}
	}

	toks, err := lexAll(paragraph)
	if err != nil {
		return nil, err
	}
	ts := &tokenStream{toks: toks}

	designator, ok := tryParseDesignator(ts)
	if !ok {
		return nil, shapeMismatch{}
	}
	if ts.peek().kind != tLParen {
		return nil, shapeMismatch{}
	}
	ts.advance() // '('

	params, varargSeen, err := parseParamList(ts, true)
	if err != nil {
		return nil, err
	}
	if ts.peek().kind != tRParen {
		return nil, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "expected ')'"}
	}
	ts.advance() // ')'

	var returns []TypeExpr
	for ts.peek().kind == tArrow {
		ts.advance()
		expr, err := parseTypeExpr(ts)
		if err != nil {
			return nil, err
		}
		returns = append(returns, expr)
	}

	mappingToks, err := collectMappingTokens(ts, following)
	if err != nil {
		return nil, err
	}
	paramTypes, varargType, err := parseMappingLines(&tokenStream{toks: mappingToks})
	if err != nil {
		return nil, err
	}
	if varargSeen && varargType == nil {
		// No explicit "... : type-expr" mapping: spec requires vararg's
		// type come from a TypeExpr, so an unmapped "..." has no type
		// information to build an NFA from.
		return nil, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "vararg has no type mapping (\"...\" : type-expr)"}
	}

	params = resolveVarargPlaceholder(params, varargType)

	rawText := strings.TrimSpace(paragraph)

	return &Signature{
		Designator: designator,
		IsMethod:   designator.IsMethod,
		Params:     params,
		Returns:    returns,
		ParamTypes: paramTypes,
		RawText:    rawText,
	}, nil
}

// collectMappingTokens gathers the header paragraph's own trailing tokens
// (any mapping lines sharing its paragraph) together with every following
// paragraph's tokens into one token stream for parseMappingLines. Each
// paragraph is lexed independently (the lexer numbers lines from 1 within
// whatever string it is given), so line numbers are offset per paragraph
// before concatenation — otherwise two single-line mapping paragraphs would
// both claim "line 1" and parseMappingLines would merge them into one group.
func collectMappingTokens(ts *tokenStream, following []string) ([]token, error) {
	var out []token
	offset := 0

	appendToks := func(toks []token) {
		localMax := 0
		for _, t := range toks {
			if t.kind == tEOF {
				continue
			}
			t.line += offset
			out = append(out, t)
			if t.line-offset > localMax {
				localMax = t.line - offset
			}
		}
		offset += localMax
	}

	appendToks(ts.toks[ts.pos:])
	for _, para := range following {
		toks, err := lexAll(para)
		if err != nil {
			return nil, err
		}
		appendToks(toks)
	}

	out = append(out, token{kind: tEOF})
	return out, nil
}

// looksLikeSignatureShape is the cheap pre-check of spec §4.1: a paragraph
// is even considered for full parsing only if it starts with a designator
// immediately followed by '('. It tolerates lex errors appearing later in
// the paragraph (those belong to the full parse, not this sniff test).
func looksLikeSignatureShape(paragraph string) bool {
	l := newLexer(paragraph)
	t, err := l.next()
	if err != nil || t.kind != tIdent {
		return false
	}
	for {
		t2, err := l.next()
		if err != nil {
			return false
		}
		switch t2.kind {
		case tDot, tColon:
			t3, err := l.next()
			if err != nil || t3.kind != tIdent {
				return false
			}
		case tLParen:
			return true
		default:
			return false
		}
	}
}

// tryParseDesignator parses `identifier ('.' identifier)* (':' identifier)?`.
// Returns ok=false (no error) if the paragraph doesn't even start with an
// identifier — the cheapest possible shape-mismatch rejection.
func tryParseDesignator(ts *tokenStream) (Designator, bool) {
	if ts.peek().kind != tIdent {
		return Designator{}, false
	}
	var segs []string
	segs = append(segs, ts.advance().text)

	for ts.peek().kind == tDot {
		save := ts.pos
		ts.advance()
		if ts.peek().kind != tIdent {
			ts.pos = save
			break
		}
		segs = append(segs, ts.advance().text)
	}

	d := Designator{Segments: segs}
	if ts.peek().kind == tColon {
		save := ts.pos
		ts.advance()
		if ts.peek().kind != tIdent {
			ts.pos = save
			return d, true
		}
		d.IsMethod = true
		d.MethodName = ts.advance().text
	}
	return d, true
}

// parseParamList parses a comma-and-whitespace-separated sequence of
// parameter items. topLevel controls whether a trailing "..." is accepted
// (only the outermost list may end in a vararg).
func parseParamList(ts *tokenStream, topLevel bool) ([]ParamNode, bool, error) {
	var items []ParamNode
	varargSeen := false

	for {
		switch ts.peek().kind {
		case tRParen, tRBrack, tEOF:
			return items, varargSeen, nil
		case tComma:
			ts.advance()
			continue
		}

		if varargSeen {
			return nil, false, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "vararg \"...\" must be the final parameter"}
		}

		switch ts.peek().kind {
		case tIdent:
			items = append(items, Named{Ident: ts.advance().text})
		case tLBrack:
			ts.advance()
			children, _, err := parseParamList(ts, false)
			if err != nil {
				return nil, false, err
			}
			if ts.peek().kind != tRBrack {
				return nil, false, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "expected ']'"}
			}
			ts.advance()
			items = append(items, Group{Children: children})
		case tDotDotDot:
			if !topLevel {
				return nil, false, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "vararg \"...\" only allowed in the outermost parameter list"}
			}
			ts.advance()
			items = append(items, varargPlaceholder{})
			varargSeen = true
		default:
			return nil, false, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "expected parameter item"}
		}
	}
}

// varargPlaceholder stands in for a "..." parameter item until mapping
// lines are parsed and its TypeExpr is known.
type varargPlaceholder struct{}

func (varargPlaceholder) paramNode() {}

func resolveVarargPlaceholder(nodes []ParamNode, t TypeExpr) []ParamNode {
	out := make([]ParamNode, len(nodes))
	for i, n := range nodes {
		switch v := n.(type) {
		case varargPlaceholder:
			out[i] = Vararg{Type: t}
		case Group:
			out[i] = Group{Children: resolveVarargPlaceholder(v.Children, t)}
		default:
			out[i] = n
		}
	}
	return out
}

// parseTypeExpr parses the full type-expression grammar (lowest precedence:
// sequence via ',', then alternation via '/', then postfix '*'/'?', then
// primaries Name | '(' expr ')').
func parseTypeExpr(ts *tokenStream) (TypeExpr, error) {
	first, err := parseAlt(ts)
	if err != nil {
		return nil, err
	}
	items := []TypeExpr{first}
	for ts.peek().kind == tComma {
		ts.advance()
		next, err := parseAlt(ts)
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return Seq{Items: items}, nil
}

func parseAlt(ts *tokenStream) (TypeExpr, error) {
	first, err := parsePostfix(ts)
	if err != nil {
		return nil, err
	}
	items := []TypeExpr{first}
	for ts.peek().kind == tSlash {
		ts.advance()
		next, err := parsePostfix(ts)
		if err != nil {
			return nil, err
		}
		items = append(items, next)
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return Alt{Items: items}, nil
}

func parsePostfix(ts *tokenStream) (TypeExpr, error) {
	e, err := parsePrimary(ts)
	if err != nil {
		return nil, err
	}
	for {
		switch ts.peek().kind {
		case tStar:
			ts.advance()
			e = Star{Elem: e}
		case tQuestion:
			ts.advance()
			e = Opt{Elem: e}
		default:
			return e, nil
		}
	}
}

func parsePrimary(ts *tokenStream) (TypeExpr, error) {
	switch ts.peek().kind {
	case tIdent:
		return Name{Value: TypeName(ts.advance().text)}, nil
	case tLParen:
		ts.advance()
		e, err := parseTypeExpr(ts)
		if err != nil {
			return nil, err
		}
		if ts.peek().kind != tRParen {
			return nil, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "expected ')' in type expression"}
		}
		ts.advance()
		return e, nil
	default:
		return nil, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "expected a type name or '('"}
	}
}

// parseRestrictedAlt parses the grammar named parameters' mapping RHS is
// restricted to: an alternation of simple type-names only (no Seq, Star,
// Opt, or parenthesization; spec §9 "open question" preserved as-is).
func parseRestrictedAlt(ts *tokenStream) (TypeExpr, error) {
	if ts.peek().kind != tIdent {
		return nil, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "expected a type name"}
	}
	items := []TypeExpr{Name{Value: TypeName(ts.advance().text)}}
	for ts.peek().kind == tSlash {
		ts.advance()
		if ts.peek().kind != tIdent {
			return nil, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "expected a type name after '/'"}
		}
		items = append(items, Name{Value: TypeName(ts.advance().text)})
	}
	if !ts.atEnd() {
		return nil, &MalformedSignatureError{Pos: ts.peek().pos, Reason: "unexpected token after parameter type mapping"}
	}
	if len(items) == 1 {
		return items[0], nil
	}
	return Alt{Items: items}, nil
}

// parseMappingLines consumes the remainder of the token stream as
// zero-or-more independent "identifier : type-expr" / "... : type-expr"
// lines, grouped by source line. Returns the parameter-name to TypeExpr
// map and, separately, the vararg's TypeExpr if a "..." mapping was seen.
func parseMappingLines(ts *tokenStream) (map[string]TypeExpr, TypeExpr, error) {
	paramTypes := make(map[string]TypeExpr)
	var varargType TypeExpr
	seen := make(map[string]bool)

	for !ts.atEnd() {
		lineTok := ts.peek()
		var lineToks []token
		for !ts.atEnd() && ts.peek().line == lineTok.line {
			lineToks = append(lineToks, ts.advance())
		}
		lineToks = append(lineToks, token{kind: tEOF})
		lts := &tokenStream{toks: lineToks}

		switch lts.peek().kind {
		case tDotDotDot:
			lts.advance()
			if lts.peek().kind != tColon {
				return nil, nil, &MalformedSignatureError{Pos: lts.peek().pos, Reason: "expected ':' after \"...\""}
			}
			lts.advance()
			expr, err := parseTypeExpr(lts)
			if err != nil {
				return nil, nil, err
			}
			if !lts.atEnd() {
				return nil, nil, &MalformedSignatureError{Pos: lts.peek().pos, Reason: "unexpected token after vararg type mapping"}
			}
			if varargType != nil {
				return nil, nil, &ParamRedefinedError{Name: "..."}
			}
			varargType = expr
		case tIdent:
			name := lts.advance().text
			if lts.peek().kind != tColon {
				return nil, nil, &MalformedSignatureError{Pos: lts.peek().pos, Reason: "expected ':' after parameter name"}
			}
			lts.advance()
			expr, err := parseRestrictedAlt(lts)
			if err != nil {
				return nil, nil, err
			}
			if seen[name] {
				return nil, nil, &ParamRedefinedError{Name: name}
			}
			seen[name] = true
			paramTypes[name] = expr
		default:
			return nil, nil, &MalformedSignatureError{Pos: lts.peek().pos, Reason: "expected a parameter mapping line"}
		}
	}

	return paramTypes, varargType, nil
}
