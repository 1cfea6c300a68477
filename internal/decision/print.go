package decision

import (
	"fmt"
	"io"
	"strings"

	"github.com/you-not-fish/islec/internal/trie"
	"github.com/you-not-fish/islec/internal/types"
)

// Fprint writes the decision tree b of rs to w.
//
// Format:
//
//	tree f:
//	  let b2 = construct {g} b0
//	  match b0:
//	    case 1 <u32>:
//	      return b1 (rule 0 at f.isle:3:1)
//	  if b0 == b1:
//	    return b0 (rule 1 at f.isle:4:1)
//	  for b4:
//	    return b4 (rule 2 at f.isle:5:1)
func Fprint(w io.Writer, tyenv *types.TypeEnv, termenv *types.TermEnv, rs *trie.RuleSet, b *Block) error {
	p := printer{tyenv: tyenv, termenv: termenv, rs: rs}
	fmt.Fprintf(&p.sb, "tree %s:\n", tyenv.Name(termenv.Term(rs.Term).Name))
	p.block(b, 1)
	_, err := io.WriteString(w, p.sb.String())
	return err
}

// Sprint returns the text Fprint writes.
func Sprint(tyenv *types.TypeEnv, termenv *types.TermEnv, rs *trie.RuleSet, b *Block) string {
	var sb strings.Builder
	Fprint(&sb, tyenv, termenv, rs, b)
	return sb.String()
}

type printer struct {
	sb      strings.Builder
	tyenv   *types.TypeEnv
	termenv *types.TermEnv
	rs      *trie.RuleSet
}

func (p *printer) line(depth int, format string, args ...interface{}) {
	p.sb.WriteString(strings.Repeat("  ", depth))
	fmt.Fprintf(&p.sb, format, args...)
	p.sb.WriteByte('\n')
}

func (p *printer) block(b *Block, depth int) {
	for _, s := range b.Steps {
		for _, id := range s.BindOrder {
			p.line(depth, "let %s", trie.FormatBinding(p.tyenv, p.termenv, p.rs, id))
		}
		switch c := s.Check.(type) {
		case *Match:
			p.line(depth, "match %s:", c.Source)
			for i := range c.Arms {
				arm := &c.Arms[i]
				p.line(depth+1, "case %s%s:", trie.FormatConstraint(p.tyenv, arm.Constraint), armBindings(arm))
				p.block(&arm.Body, depth+2)
			}
		case *Equal:
			p.line(depth, "if %s == %s:", c.A, c.B)
			p.block(&c.Body, depth+1)
		case *Loop:
			p.line(depth, "for %s:", c.Result)
			p.block(&c.Body, depth+1)
		case *Return:
			p.line(depth, "return %s (rule %d at %s)", c.Result, p.rs.Rules[c.Rule].ID, c.Pos)
		}
	}
}

func armBindings(arm *MatchArm) string {
	if len(arm.Bindings) == 0 {
		return ""
	}
	names := make([]string, len(arm.Bindings))
	for i, id := range arm.Bindings {
		if id == NoBinding {
			names[i] = "_"
		} else {
			names[i] = id.String()
		}
	}
	return " -> " + strings.Join(names, " ")
}
