package view

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

const (
	eof        rune = -1
	leftDelim       = "${"
	rightDelim      = "}"
)

// Interpolation is a compiled string with ${}-style placeholders.
type Interpolation struct {
	parts []part
}

type part struct {
	text string
	prog *vm.Program
}

// Interpol compiles a string with ${}-style placeholders.
// If the string is a simple text with no interpolation, it returns (nil, nil).
func Interpol(s string) (*Interpolation, error) {
	l := &lexer{
		input: s,
		items: make([]item, 0),
	}

	for state := lexText; state != nil; {
		state = state(l)
	}

	for _, item := range l.items {
		if item.typ == itemError {
			return nil, errors.New(item.val)
		}
	}

	if l.items[0].typ == itemEOF || (l.items[0].typ == itemText && len(l.items) == 2) {
		return nil, nil
	}

	in := &Interpolation{}

loop:
	for _, item := range l.items {
		switch item.typ {
		case itemEOF:
			break loop
		case itemText:
			in.parts = append(in.parts, part{text: item.val})
		case itemExpr:
			p, err := compileExpr(item.val)
			if err != nil {
				return nil, err
			}
			in.parts = append(in.parts, part{prog: p})
		}
	}

	return in, nil
}

// Eval runs the interpolation against env. A single placeholder without surrounding text
// yields the raw value of the expression, anything else is concatenated into a string.
func (in *Interpolation) Eval(env map[string]any) (any, error) {
	if len(in.parts) == 1 && in.parts[0].prog != nil {
		return expr.Run(in.parts[0].prog, env)
	}

	var sb strings.Builder
	for _, p := range in.parts {
		if p.prog == nil {
			sb.WriteString(p.text)
			continue
		}
		v, err := expr.Run(p.prog, env)
		if err != nil {
			return nil, err
		}
		if v != nil {
			sb.WriteString(fmt.Sprint(v))
		}
	}
	return sb.String(), nil
}

func compileExpr(src string) (*vm.Program, error) {
	return expr.Compile(src, expr.AllowUndefinedVariables())
}

// Loop is a compiled g-for directive: "item in expr" or "key, item in expr".
type Loop struct {
	Vars []string
	prog *vm.Program
}

// ParseLoop compiles the value of a g-for directive.
func ParseLoop(s string) (*Loop, error) {
	l := &lexer{
		input: s,
		items: make([]item, 0),
	}

	for state := lexLoop; state != nil; {
		state = state(l)
	}

	lp := &Loop{}
	for _, item := range l.items {
		switch item.typ {
		case itemError:
			return nil, errors.New(item.val)
		case itemLoopIdent:
			lp.Vars = append(lp.Vars, item.val)
		case itemExpr:
			p, err := compileExpr(item.val)
			if err != nil {
				return nil, err
			}
			lp.prog = p
		}
	}

	if len(lp.Vars) == 0 || len(lp.Vars) > 2 {
		return nil, fmt.Errorf("loop expects one or two variables, got %d", len(lp.Vars))
	}
	if lp.prog == nil {
		return nil, errors.New("missing loop expression")
	}
	return lp, nil
}

// Implementation of the lexer based on https://go.dev/talks/2011/lex.slide

// lexer holds the state of the scanner.
type lexer struct {
	input       string // the string being scanned
	start       int    // start position of this item.
	pos         int    // current position in the input.
	width       int    // width of last rune read from input.
	bracesDepth int    // nesting depth of braces {}
	items       []item
}

// emit passes an item back to the client.
func (l *lexer) emit(t itemType) stateFn {
	l.items = append(l.items, item{t, l.input[l.start:l.pos]})
	l.start = l.pos
	return nil
}

// errorf returns an error token and terminates the scan.
func (l *lexer) errorf(format string, args ...any) stateFn {
	l.items = append(l.items, item{
		itemError,
		fmt.Sprintf(format, args...),
	})
	return nil
}

func (l *lexer) scanString(quote rune) {
	for ch := l.next(); ch != quote; ch = l.next() {
		if ch == '\n' || ch == eof {
			l.errorf("unterminated string")
			return
		}
		if ch == '\\' {
			l.next()
		}
	}
}

// next returns the next rune in the input.
func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, w := utf8.DecodeRuneInString(l.input[l.pos:])
	l.width = w
	l.pos += w
	return r
}

// backup steps back one rune. Can be called only once per call of next.
func (l *lexer) backup() {
	l.pos -= l.width
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

func (l *lexer) atRightDelim() bool {
	return l.bracesDepth == 0 && strings.HasPrefix(l.input[l.pos:], rightDelim)
}

func lexText(l *lexer) stateFn {
	if x := strings.Index(l.input[l.pos:], leftDelim); x >= 0 {
		if x > 0 {
			l.pos += x
			l.emit(itemText)
		}
		return lexLeftDelim
	}
	l.pos = len(l.input)
	if l.pos > l.start {
		l.emit(itemText)
	}
	return l.emit(itemEOF)
}

func lexLeftDelim(l *lexer) stateFn {
	l.pos += len(leftDelim)
	l.ignore()
	return lexExpr
}

func lexRightDelim(l *lexer) stateFn {
	l.pos += len(rightDelim)
	l.ignore()
	return lexText
}

func lexExpr(l *lexer) stateFn {
	if l.atRightDelim() {
		if l.pos == l.start {
			return l.errorf("empty expression")
		}
		l.emit(itemExpr)
		return lexRightDelim
	}
	switch r := l.next(); {
	case r == eof:
		return l.errorf("unclosed action")
	case r == '\'' || r == '"':
		l.scanString(r)
		if n := len(l.items); n > 0 && l.items[n-1].typ == itemError {
			return nil
		}
	case r == '{':
		l.bracesDepth++
	case r == '}':
		l.bracesDepth--
	}
	return lexExpr
}

// for-loop parsing states

func lexLoop(l *lexer) stateFn {
	for {
		switch r := l.next(); {
		case r == eof:
			return l.errorf("missing loop body")
		case isSpace(r):
			l.ignore()
		case isAlphaNumeric(r):
			l.backup()
			return lexLoopIdent
		case r == ',':
			l.ignore()
		default:
			return l.errorf("bad character %#U", r)
		}
	}
}

func lexLoopIdent(l *lexer) stateFn {
	for {
		switch r := l.next(); {
		case isAlphaNumeric(r):
			// absorb
		default:
			l.backup()
			word := l.input[l.start:l.pos]
			if word == "in" {
				l.ignore()
				return lexLoopExpr
			}
			l.emit(itemLoopIdent)
			return lexLoop
		}
	}
}

func lexLoopExpr(l *lexer) stateFn {
	for r := l.next(); isSpace(r); r = l.next() {
		l.ignore()
	}
	l.backup()
	l.pos = len(l.input)
	if l.pos > l.start {
		l.emit(itemExpr)
	}
	return l.emit(itemEOF)
}

type itemType int

const (
	itemError itemType = iota
	itemEOF
	itemText
	itemExpr

	// special identifiers that can be emitted in loop parsing mode:
	itemLoopIdent
)

type item struct {
	typ itemType
	val string
}

// stateFn represents the state of the scanner
// as a function that returns the next state.
type stateFn func(*lexer) stateFn

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

// isAlphaNumeric reports whether r is an alphabetic, digit, or underscore.
func isAlphaNumeric(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
