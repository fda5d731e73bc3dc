package gen

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Annotations are embedded in entity documentation with the grammar:
//
//	annotation = "@@Gen" "." name "(" [ arg { "," arg } [ "," ] ] ")"
//	arg        = key ":" value
//	value      = JSON literal | "[" ... "]"
//
// Bracketed lists are kept intact and decoded as JSON arrays. Only the
// first annotation of a documentation string is considered, and text
// around it is ignored.

// annotationMarker starts an annotation in documentation text.
const annotationMarker = "@@Gen."

// ModelAnnotation is the only annotation name the generator acts on.
const ModelAnnotation = "model"

// Annotation is a parsed documentation annotation.
type Annotation struct {
	// Name of the annotation, e.g. "model" for "@@Gen.model(...)".
	Name string
	// Args maps argument keys to their decoded JSON values.
	Args map[string]any
	// Keys holds the argument keys in declaration order.
	Keys []string
}

// ParseAnnotation extracts the first annotation from the documentation.
// It returns nil and no error if the documentation holds no annotation.
func ParseAnnotation(doc string) (*Annotation, error) {
	start := strings.Index(doc, annotationMarker)
	if start < 0 {
		return nil, nil
	}
	p := &parser{lex: &lexer{input: doc, pos: start}}
	p.advance()
	return p.parse()
}

// ModelArgs returns the arguments of the "model" annotation. The result is
// empty, never nil, when the documentation holds no annotation, holds an
// annotation with another name, or cannot be parsed. Parse failures are
// also returned as an *AnnotationError so that callers can report them.
func ModelArgs(doc string) (map[string]any, error) {
	ann, err := ParseAnnotation(doc)
	switch {
	case err != nil:
		return map[string]any{}, err
	case ann == nil || ann.Name != ModelAnnotation:
		return map[string]any{}, nil
	default:
		return ann.Args, nil
	}
}

// Hidden reports whether the model arguments hide the entity.
func Hidden(args map[string]any) bool {
	return truthy(args["hide"])
}

// truthy follows the truthiness of decoded JSON values.
func truthy(v any) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

type tokenType int

const (
	tokEOF tokenType = iota
	tokIllegal
	tokMarker // @@Gen
	tokIdent
	tokDot
	tokLParen
	tokRParen
	tokColon
	tokComma
	tokString
	tokNumber
	tokList
)

var tokenNames = [...]string{
	tokEOF:     "end of documentation",
	tokIllegal: "illegal token",
	tokMarker:  "@@Gen",
	tokIdent:   "identifier",
	tokDot:     "'.'",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokColon:   "':'",
	tokComma:   "','",
	tokString:  "string",
	tokNumber:  "number",
	tokList:    "list",
}

func (t tokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("token(%d)", int(t))
}

type token struct {
	typ tokenType
	lit string
	pos int
}

// lexer scans annotation tokens on demand, so text following the
// annotation is never looked at.
type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() token {
	l.skipWhitespace()
	if l.pos >= len(l.input) {
		return token{typ: tokEOF, pos: l.pos}
	}
	start := l.pos
	c := l.input[l.pos]
	switch {
	case strings.HasPrefix(l.input[l.pos:], "@@Gen"):
		l.pos += len("@@Gen")
		return token{typ: tokMarker, lit: "@@Gen", pos: start}
	case c == '.':
		return l.single(tokDot)
	case c == '(':
		return l.single(tokLParen)
	case c == ')':
		return l.single(tokRParen)
	case c == ':':
		return l.single(tokColon)
	case c == ',':
		return l.single(tokComma)
	case c == '"':
		return l.scanString()
	case c == '[':
		return l.scanList()
	case c == '-' || isDigit(c):
		return l.scanNumber()
	case isIdentStart(c):
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
		return token{typ: tokIdent, lit: l.input[start:l.pos], pos: start}
	default:
		_, size := utf8.DecodeRuneInString(l.input[l.pos:])
		l.pos += size
		return token{typ: tokIllegal, lit: l.input[start:l.pos], pos: start}
	}
}

func (l *lexer) single(t tokenType) token {
	tok := token{typ: t, lit: l.input[l.pos : l.pos+1], pos: l.pos}
	l.pos++
	return tok
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\r', '\n':
			l.pos++
		default:
			return
		}
	}
}

// scanString scans a double-quoted JSON string, including its quotes.
func (l *lexer) scanString() token {
	start := l.pos
	if end := skipString(l.input, l.pos); end > 0 {
		l.pos = end
		return token{typ: tokString, lit: l.input[start:end], pos: start}
	}
	l.pos = len(l.input)
	return token{typ: tokIllegal, lit: "unterminated string", pos: start}
}

// scanList scans a bracketed list, including nested lists and strings.
func (l *lexer) scanList() token {
	start, depth := l.pos, 0
	for i := l.pos; i < len(l.input); i++ {
		switch l.input[i] {
		case '"':
			end := skipString(l.input, i)
			if end < 0 {
				l.pos = len(l.input)
				return token{typ: tokIllegal, lit: "unterminated string", pos: i}
			}
			i = end - 1
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				l.pos = i + 1
				return token{typ: tokList, lit: l.input[start:l.pos], pos: start}
			}
		}
	}
	l.pos = len(l.input)
	return token{typ: tokIllegal, lit: "unterminated list", pos: start}
}

func (l *lexer) scanNumber() token {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if !isDigit(c) && c != '.' && c != 'e' && c != 'E' && c != '+' && c != '-' {
			break
		}
		l.pos++
	}
	return token{typ: tokNumber, lit: l.input[start:l.pos], pos: start}
}

// skipString returns the offset after the string starting at i, or -1
// if the string is not terminated.
func skipString(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return -1
}

func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c byte) bool { return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z') }
func isIdentPart(c byte) bool  { return isIdentStart(c) || isDigit(c) }

// parser is a recursive descent parser for one annotation.
type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() {
	p.tok = p.lex.next()
}

func (p *parser) expect(t tokenType) (token, error) {
	tok := p.tok
	if tok.typ != t {
		return tok, p.errorf(tok, "expected %s, got %s", t, describe(tok))
	}
	p.advance()
	return tok, nil
}

// expectAfter is expect for tokens that must directly follow prev.
func (p *parser) expectAfter(t tokenType, prev token) (token, error) {
	if tok := p.tok; tok.typ == t && tok.pos != prev.pos+len(prev.lit) {
		return tok, p.errorf(tok, "unexpected whitespace before %s", t)
	}
	return p.expect(t)
}

func (p *parser) errorf(tok token, format string, args ...any) *AnnotationError {
	return &AnnotationError{Pos: tok.pos, Message: fmt.Sprintf(format, args...)}
}

func (p *parser) parse() (*Annotation, error) {
	marker, err := p.expect(tokMarker)
	if err != nil {
		return nil, err
	}
	dot, err := p.expectAfter(tokDot, marker)
	if err != nil {
		return nil, err
	}
	name, err := p.expectAfter(tokIdent, dot)
	if err != nil {
		return nil, err
	}
	if _, err := p.expectAfter(tokLParen, name); err != nil {
		return nil, err
	}
	ann := &Annotation{Name: name.lit, Args: make(map[string]any)}
	for p.tok.typ != tokRParen {
		key, err := p.expect(tokIdent)
		if err != nil {
			return nil, err
		}
		if _, dup := ann.Args[key.lit]; dup {
			return nil, p.errorf(key, "duplicate argument %q", key.lit)
		}
		if _, err := p.expect(tokColon); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		ann.Args[key.lit] = v
		ann.Keys = append(ann.Keys, key.lit)
		if p.tok.typ != tokComma {
			break
		}
		p.advance()
	}
	if _, err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	return ann, nil
}

func (p *parser) parseValue() (any, error) {
	tok := p.tok
	switch tok.typ {
	case tokIdent:
		p.advance()
		switch tok.lit {
		case "true":
			return true, nil
		case "false":
			return false, nil
		case "null":
			return nil, nil
		}
		return nil, p.errorf(tok, "invalid value %q", tok.lit)
	case tokString, tokNumber, tokList:
		p.advance()
		var v any
		if err := json.Unmarshal([]byte(tok.lit), &v); err != nil {
			return nil, &AnnotationError{Pos: tok.pos, Message: fmt.Sprintf("invalid %s %s", tok.typ, tok.lit), Cause: err}
		}
		return v, nil
	default:
		return nil, p.errorf(tok, "expected value, got %s", describe(tok))
	}
}

func describe(tok token) string {
	switch tok.typ {
	case tokEOF:
		return tok.typ.String()
	case tokIllegal:
		return tok.lit
	default:
		return fmt.Sprintf("%s %q", tok.typ, tok.lit)
	}
}
