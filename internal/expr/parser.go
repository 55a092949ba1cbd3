// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 ChainPulse Contributors

package expr

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// exprLexer defines the token types for the expression language.
// Order matters: longer patterns must come before shorter ones sharing a
// prefix (">=" before ">", Hex before Number), and keyword rules must come
// before Ident so "AND"/"contains"/"true" never lex as identifiers. The \b
// boundary keeps keywords from matching prefixes of longer identifiers.
var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `'(?:[^'\\]|\\.)*'|"(?:[^"\\]|\\.)*"`},
	{Name: "Hex", Pattern: `0x[0-9a-fA-F]+`},
	{Name: "Number", Pattern: `[-+]?[0-9]+(?:\.[0-9]+)?`},
	{Name: "OpEq", Pattern: `==`},
	{Name: "OpNe", Pattern: `!=`},
	{Name: "OpGe", Pattern: `>=`},
	{Name: "OpLe", Pattern: `<=`},
	{Name: "OpGt", Pattern: `>`},
	{Name: "OpLt", Pattern: `<`},
	{Name: "AndKw", Pattern: `(?i)\bAND\b`},
	{Name: "OrKw", Pattern: `(?i)\bOR\b`},
	{Name: "CmpKw", Pattern: `(?i)\b(?:starts_with|ends_with|contains)\b`},
	{Name: "BoolKw", Pattern: `(?i)\b(?:true|false)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Punct", Pattern: `[()\[\]]`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Grammar nodes. These mirror the surface grammar; Parse lowers them into
// the evaluator-facing AST with left-leaning logical trees.

type rawExpr struct {
	Terms []*rawAnd `parser:"@@ (OrKw @@)*"`
}

type rawAnd struct {
	Terms []*rawCmp `parser:"@@ (AndKw @@)*"`
}

type rawCmp struct {
	Paren *rawExpr `parser:"'(' @@ ')'"`
	Cond  *rawCond `parser:"| @@"`
}

type rawCond struct {
	Pos lexer.Position `parser:""`
	LHS *rawLHS        `parser:"@@"`
	Op  string         `parser:"@(OpEq | OpNe | OpGe | OpLe | OpGt | OpLt | CmpKw)"`
	RHS *rawLit        `parser:"@@"`
}

type rawLHS struct {
	Base      string         `parser:"@Ident"`
	Accessors []*rawAccessor `parser:"@@*"`
}

type rawAccessor struct {
	Pos   lexer.Position `parser:""`
	Key   *string        `parser:"Dot @Ident"`
	Index *string        `parser:"| '[' @Number ']'"`
}

type rawLit struct {
	Str  *string `parser:"@String"`
	Num  *string `parser:"| @(Hex | Number)"`
	Bool *string `parser:"| @BoolKw"`
}

var parser = participle.MustBuild[rawExpr](
	participle.Lexer(exprLexer),
	participle.UseLookahead(2),
)

// Parse turns an expression string into its AST. Numeric literals keep
// their source text so 256-bit values survive intact. Empty input is a
// parse error.
func Parse(input string) (Expression, error) {
	if strings.TrimSpace(input) == "" {
		return nil, parseErrorf("expression cannot be empty")
	}
	raw, err := parser.ParseString("", input)
	if err != nil {
		return nil, parseErrorf("parsing expression %q: %v", input, err)
	}
	return lowerExpr(raw)
}

func lowerExpr(raw *rawExpr) (Expression, error) {
	out, err := lowerAnd(raw.Terms[0])
	if err != nil {
		return nil, err
	}
	for _, term := range raw.Terms[1:] {
		right, err := lowerAnd(term)
		if err != nil {
			return nil, err
		}
		out = Logical{Left: out, Op: Or, Right: right}
	}
	return out, nil
}

func lowerAnd(raw *rawAnd) (Expression, error) {
	out, err := lowerCmp(raw.Terms[0])
	if err != nil {
		return nil, err
	}
	for _, term := range raw.Terms[1:] {
		right, err := lowerCmp(term)
		if err != nil {
			return nil, err
		}
		out = Logical{Left: out, Op: And, Right: right}
	}
	return out, nil
}

func lowerCmp(raw *rawCmp) (Expression, error) {
	if raw.Paren != nil {
		return lowerExpr(raw.Paren)
	}
	return lowerCond(raw.Cond)
}

var comparisonByToken = map[string]ComparisonOperator{
	"==": Eq, "!=": Ne, ">": Gt, ">=": Gte, "<": Lt, "<=": Lte,
	"starts_with": StartsWith, "ends_with": EndsWith, "contains": Contains,
}

func lowerCond(raw *rawCond) (Expression, error) {
	op, ok := comparisonByToken[strings.ToLower(raw.Op)]
	if !ok {
		return nil, parseErrorf("%s: unknown operator %q", raw.Pos, raw.Op)
	}

	left := ConditionLeft{Base: raw.LHS.Base}
	for _, acc := range raw.LHS.Accessors {
		switch {
		case acc.Key != nil:
			left.Accessors = append(left.Accessors, KeyAccessor(*acc.Key))
		case acc.Index != nil:
			idx, err := strconv.ParseUint(*acc.Index, 10, 32)
			if err != nil {
				return nil, parseErrorf("%s: index %q is not an unsigned integer", acc.Pos, *acc.Index)
			}
			left.Accessors = append(left.Accessors, IndexAccessor(idx))
		}
	}

	lit, err := lowerLit(raw.RHS, raw.Pos)
	if err != nil {
		return nil, err
	}
	return Condition{Left: left, Op: op, Right: lit}, nil
}

func lowerLit(raw *rawLit, pos lexer.Position) (Literal, error) {
	switch {
	case raw.Str != nil:
		return Literal{Kind: LiteralStr, Text: unquote(*raw.Str)}, nil
	case raw.Num != nil:
		return Literal{Kind: LiteralNumber, Text: *raw.Num}, nil
	case raw.Bool != nil:
		return Literal{Kind: LiteralBool, Bool: strings.EqualFold(*raw.Bool, "true")}, nil
	}
	return Literal{}, parseErrorf("%s: missing literal", pos)
}

// unquote strips the surrounding quotes and resolves backslash escapes.
func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	body := s[1 : len(s)-1]
	if !strings.ContainsRune(body, '\\') {
		return body
	}
	var b strings.Builder
	b.Grow(len(body))
	escaped := false
	for _, r := range body {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		if r == '\\' {
			escaped = true
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
