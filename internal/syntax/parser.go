package syntax

import (
	"fmt"
	"io"
	"strings"
)

// Maximum number of errors before aborting parse.
const maxErrors = 10

// SyntaxError represents a syntax error.
type SyntaxError struct {
	Pos Pos
	Msg string
}

func (e *SyntaxError) Error() string {
	return e.Pos.String() + ": " + e.Msg
}

// bailout unwinds the parser to the enclosing top-level definition.
type bailout struct{}

// Parser performs syntax analysis of rule source text.
type Parser struct {
	scanner *Scanner

	// Current token info (cached from scanner)
	tok Token
	lit string
	val Int128
	pos Pos

	depth int // open parentheses consumed so far

	// Error handling
	errh   func(pos Pos, msg string)
	errcnt int
	first  error // first error encountered
	abort  bool  // set to true when error limit reached
}

// NewParser creates a new Parser for the given source.
func NewParser(filename string, src io.Reader, errh func(pos Pos, msg string)) *Parser {
	return newParser(0, filename, src, errh)
}

func newParser(index int, filename string, src io.Reader, errh func(pos Pos, msg string)) *Parser {
	p := &Parser{errh: errh}
	scanErrh := func(line, col uint32, msg string) {
		p.errorAt(NewFilePos(index, filename, line, col), msg)
	}
	p.scanner = newScanner(index, filename, src, scanErrh)
	p.next()
	return p
}

// ----------------------------------------------------------------------------
// Token navigation

// next advances to the next token, tracking parenthesis depth.
func (p *Parser) next() {
	switch p.tok {
	case _Lparen:
		p.depth++
	case _Rparen:
		if p.depth > 0 {
			p.depth--
		}
	}
	p.scanner.Next()
	p.tok = p.scanner.Token()
	p.lit = p.scanner.Literal()
	p.val = p.scanner.Value()
	p.pos = p.scanner.Pos()
}

// got reports whether the current token is tok.
// If so, it consumes the token and returns true.
func (p *Parser) got(tok Token) bool {
	if p.tok == tok {
		p.next()
		return true
	}
	return false
}

// want consumes the current token if it matches tok.
// Otherwise it reports an error and abandons the current definition.
func (p *Parser) want(tok Token) {
	if !p.got(tok) {
		p.syntaxError(fmt.Sprintf("expected %s, found %s", tok, p.describe()))
	}
}

// expect is like want but returns the position of the expected token.
func (p *Parser) expect(tok Token) Pos {
	pos := p.pos
	p.want(tok)
	return pos
}

// isSym reports whether the current token is the symbol s.
func (p *Parser) isSym(s string) bool {
	return p.tok == _Symbol && p.lit == s
}

// gotSym consumes the symbol s if it is current.
func (p *Parser) gotSym(s string) bool {
	if p.isSym(s) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) describe() string {
	switch p.tok {
	case _Symbol, _Int:
		return fmt.Sprintf("%s %q", p.tok, p.lit)
	}
	return p.tok.String()
}

// ----------------------------------------------------------------------------
// Error handling

// syntaxError reports an error at the current token and bails out of the
// current top-level definition.
func (p *Parser) syntaxError(msg string) {
	p.syntaxErrorAt(p.pos, msg)
}

func (p *Parser) syntaxErrorAt(pos Pos, msg string) {
	p.errorAt(pos, msg)
	panic(bailout{})
}

// errorAt records an error without unwinding; lexical errors use it.
func (p *Parser) errorAt(pos Pos, msg string) {
	if p.abort {
		return
	}
	if p.errcnt == 0 {
		p.first = &SyntaxError{Pos: pos, Msg: msg}
	}
	p.errcnt++

	if p.errh != nil {
		p.errh(pos, msg)
	}

	if p.errcnt >= maxErrors {
		p.abort = true
		if p.errh != nil {
			p.errh(pos, "too many errors; aborting parse")
		}
	}
}

// advance skips tokens until the parser is back at top level.
func (p *Parser) advance() {
	for p.tok != _EOF && p.depth > 0 {
		p.next()
	}
}

// Errors returns the number of errors encountered during parsing.
func (p *Parser) Errors() int {
	return p.errcnt
}

// FirstError returns the first error encountered, or nil if none.
func (p *Parser) FirstError() error {
	return p.first
}

// ----------------------------------------------------------------------------
// Parsing entry point

// Parse parses a complete source file.
func (p *Parser) Parse() *File {
	f := &File{Name: p.pos.filename}
	f.pos = p.pos

	for !p.abort && p.tok != _EOF {
		if d := p.topLevel(); d != nil {
			f.Defs = append(f.Defs, d)
		}
	}
	return f
}

// topLevel parses one definition, recovering to the next one on error.
func (p *Parser) topLevel() (d Def) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			d = nil
			if p.depth == 0 {
				// junk between definitions
				if p.tok != _EOF {
					p.next()
				}
				if p.depth > 0 {
					p.advance()
				}
				return
			}
			p.advance()
		}
	}()

	if p.tok != _Lparen {
		p.syntaxError(fmt.Sprintf("expected definition, found %s", p.describe()))
	}
	pos := p.pos
	p.next()
	d = p.def(pos)
	p.want(_Rparen)
	return d
}

func (p *Parser) def(pos Pos) Def {
	if p.tok != _Symbol {
		p.syntaxError(fmt.Sprintf("expected definition keyword, found %s", p.describe()))
	}
	kw := p.lit
	p.next()
	switch kw {
	case "pragma":
		d := &Pragma{Name: p.ident()}
		d.pos = pos
		return d
	case "type":
		return p.typeDef(pos)
	case "decl":
		return p.decl(pos)
	case "rule":
		return p.rule(pos)
	case "extractor":
		return p.extractor(pos)
	case "extern":
		return p.extern(pos)
	case "convert":
		d := &Converter{}
		d.pos = pos
		d.Inner = p.ident()
		d.Outer = p.ident()
		d.Term = p.ident()
		return d
	}
	p.syntaxErrorAt(pos, fmt.Sprintf("unknown definition kind %q", kw))
	return nil
}

// ident parses a symbol.
func (p *Parser) ident() *Ident {
	if p.tok != _Symbol {
		p.syntaxError(fmt.Sprintf("expected symbol, found %s", p.describe()))
	}
	id := NewIdent(p.lit, p.pos)
	p.next()
	return id
}

// constIdent parses $Name and returns Name.
func (p *Parser) constIdent() *Ident {
	id := p.ident()
	if !strings.HasPrefix(id.Name, "$") || len(id.Name) == 1 {
		p.syntaxErrorAt(id.pos, fmt.Sprintf("constant name %q must start with '$'", id.Name))
	}
	id.Name = id.Name[1:]
	return id
}

// ----------------------------------------------------------------------------
// Definitions

func (p *Parser) typeDef(pos Pos) *TypeDef {
	d := &TypeDef{Name: p.ident()}
	d.pos = pos
	for {
		if p.gotSym("extern") {
			d.Extern = true
		} else if p.gotSym("nodebug") {
			d.NoDebug = true
		} else {
			break
		}
	}

	vpos := p.expect(_Lparen)
	switch {
	case p.gotSym("primitive"):
		v := &PrimitiveType{Name: p.ident()}
		v.pos = vpos
		d.Value = v
	case p.gotSym("enum"):
		v := &EnumType{}
		v.pos = vpos
		for p.tok != _Rparen && p.tok != _EOF {
			v.Variants = append(v.Variants, p.variant())
		}
		d.Value = v
	default:
		p.syntaxError(fmt.Sprintf("expected 'primitive' or 'enum', found %s", p.describe()))
	}
	p.want(_Rparen)
	return d
}

func (p *Parser) variant() *Variant {
	v := &Variant{}
	v.pos = p.pos
	if p.tok == _Symbol {
		v.Name = p.ident()
		return v
	}
	p.want(_Lparen)
	v.Name = p.ident()
	for p.tok == _Lparen {
		f := &Field{}
		f.pos = p.pos
		p.next()
		f.Name = p.ident()
		f.Type = p.ident()
		p.want(_Rparen)
		v.Fields = append(v.Fields, f)
	}
	p.want(_Rparen)
	return v
}

func (p *Parser) decl(pos Pos) *Decl {
	d := &Decl{}
	d.pos = pos
	for {
		if p.gotSym("pure") {
			d.Pure = true
		} else if p.gotSym("multi") {
			d.Multi = true
		} else if p.gotSym("partial") {
			d.Partial = true
		} else {
			break
		}
	}
	d.Term = p.ident()
	p.want(_Lparen)
	for p.tok == _Symbol {
		d.ArgTypes = append(d.ArgTypes, p.ident())
	}
	p.want(_Rparen)
	d.RetType = p.ident()
	return d
}

func (p *Parser) rule(pos Pos) *Rule {
	r := &Rule{}
	r.pos = pos
	if p.tok == _Symbol {
		r.Name = p.ident()
	}
	if p.tok == _Int {
		v := p.val.Big()
		if !v.IsInt64() {
			p.syntaxError(fmt.Sprintf("rule priority %s out of range", p.lit))
		}
		r.Prio = v.Int64()
		r.HasPrio = true
		p.next()
	}
	r.Pattern = p.pattern()

	for {
		if p.tok != _Lparen {
			r.Expr = p.expr()
			return r
		}
		lpos := p.pos
		p.next()
		switch {
		case p.gotSym("if-let"):
			il := &IfLet{Pattern: p.pattern(), Expr: p.expr()}
			il.pos = lpos
			p.want(_Rparen)
			r.IfLets = append(r.IfLets, il)
		case p.gotSym("if"):
			w := &WildcardPattern{}
			w.pos = lpos
			il := &IfLet{Pattern: w, Expr: p.expr()}
			il.pos = lpos
			p.want(_Rparen)
			r.IfLets = append(r.IfLets, il)
		default:
			r.Expr = p.parenExpr(lpos)
			return r
		}
	}
}

func (p *Parser) extractor(pos Pos) *Extractor {
	d := &Extractor{}
	d.pos = pos
	p.want(_Lparen)
	d.Term = p.ident()
	for p.tok == _Symbol {
		d.Args = append(d.Args, p.ident())
	}
	p.want(_Rparen)
	d.Template = p.pattern()
	return d
}

func (p *Parser) extern(pos Pos) Def {
	switch {
	case p.gotSym("constructor"):
		d := &ExternConstructor{}
		d.pos = pos
		d.Term = p.ident()
		d.Func = p.ident()
		return d
	case p.gotSym("extractor"):
		d := &ExternExtractor{}
		d.pos = pos
		d.Infallible = p.gotSym("infallible")
		d.Term = p.ident()
		d.Func = p.ident()
		return d
	case p.gotSym("const"):
		d := &ExternConst{}
		d.pos = pos
		d.Name = p.constIdent()
		d.Type = p.ident()
		return d
	}
	p.syntaxError(fmt.Sprintf("expected 'constructor', 'extractor' or 'const', found %s", p.describe()))
	return nil
}

// ----------------------------------------------------------------------------
// Patterns

func (p *Parser) pattern() Pattern {
	pos := p.pos
	switch p.tok {
	case _Int:
		x := &IntPattern{Value: p.val}
		x.pos = pos
		p.next()
		return x

	case _Symbol:
		if b, ok := boolLit(p.lit); ok {
			x := &BoolPattern{Value: b}
			x.pos = pos
			p.next()
			return x
		}
		if p.lit == "_" {
			x := &WildcardPattern{}
			x.pos = pos
			p.next()
			return x
		}
		if strings.HasPrefix(p.lit, "$") {
			x := &ConstPattern{Name: p.constIdent()}
			x.pos = pos
			return x
		}
		v := p.ident()
		if p.got(_At) {
			x := &BindPattern{Var: v, Sub: p.pattern()}
			x.pos = pos
			return x
		}
		x := &VarPattern{Var: v}
		x.pos = pos
		return x

	case _Lparen:
		p.next()
		if p.gotSym("and") {
			x := &AndPattern{}
			x.pos = pos
			for p.tok != _Rparen && p.tok != _EOF {
				x.Subpats = append(x.Subpats, p.pattern())
			}
			p.want(_Rparen)
			return x
		}
		sym := p.ident()
		var args []Pattern
		for p.tok != _Rparen && p.tok != _EOF {
			args = append(args, p.pattern())
		}
		p.want(_Rparen)
		return NewTermPattern(sym, args, pos)
	}
	p.syntaxError(fmt.Sprintf("expected pattern, found %s", p.describe()))
	return nil
}

// ----------------------------------------------------------------------------
// Expressions

func (p *Parser) expr() Expr {
	pos := p.pos
	switch p.tok {
	case _Int:
		x := &IntExpr{Value: p.val}
		x.pos = pos
		p.next()
		return x

	case _Symbol:
		if b, ok := boolLit(p.lit); ok {
			x := &BoolExpr{Value: b}
			x.pos = pos
			p.next()
			return x
		}
		if strings.HasPrefix(p.lit, "$") {
			x := &ConstExpr{Name: p.constIdent()}
			x.pos = pos
			return x
		}
		x := &VarExpr{Name: p.ident()}
		x.pos = pos
		return x

	case _Lparen:
		p.next()
		return p.parenExpr(pos)
	}
	p.syntaxError(fmt.Sprintf("expected expression, found %s", p.describe()))
	return nil
}

// parenExpr parses the rest of an expression whose '(' at pos has
// already been consumed.
func (p *Parser) parenExpr(pos Pos) Expr {
	if p.gotSym("let") {
		x := &LetExpr{}
		x.pos = pos
		p.want(_Lparen)
		for p.tok == _Lparen {
			d := &LetDef{}
			d.pos = p.pos
			p.next()
			d.Var = p.ident()
			d.Type = p.ident()
			d.Value = p.expr()
			p.want(_Rparen)
			x.Defs = append(x.Defs, d)
		}
		p.want(_Rparen)
		x.Body = p.expr()
		p.want(_Rparen)
		return x
	}
	sym := p.ident()
	var args []Expr
	for p.tok != _Rparen && p.tok != _EOF {
		args = append(args, p.expr())
	}
	p.want(_Rparen)
	return NewTermExpr(sym, args, pos)
}

func boolLit(s string) (value, ok bool) {
	switch s {
	case "true", "#t":
		return true, true
	case "false", "#f":
		return false, true
	}
	return false, false
}

// ParseFile parses src and returns the file together with every syntax
// error, in source order.
func ParseFile(filename string, src io.Reader) (*File, []*SyntaxError) {
	return ParseFileAt(0, filename, src)
}

// ParseFileAt is ParseFile for the index-th input file of a program.
// Its positions order after those of every file with a smaller index.
func ParseFileAt(index int, filename string, src io.Reader) (*File, []*SyntaxError) {
	var errs []*SyntaxError
	p := newParser(index, filename, src, func(pos Pos, msg string) {
		errs = append(errs, &SyntaxError{Pos: pos, Msg: msg})
	})
	return p.Parse(), errs
}
