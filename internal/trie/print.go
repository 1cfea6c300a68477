package trie

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/you-not-fish/islec/internal/types"
)

// Fprint writes rs to w.
//
// Format:
//
//	ruleset f:
//	  b0 = arg 0
//	  b1 = const_int <u32> [10]
//	  rule 0 at a.isle:3:1 prio 0:
//	    b0 is 1 <u32>
//	    return b1
func Fprint(w io.Writer, tyenv *types.TypeEnv, termenv *types.TermEnv, rs *RuleSet) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ruleset %s:\n", tyenv.Name(termenv.Term(rs.Term).Name))
	for i := range rs.Bindings {
		fmt.Fprintf(&sb, "  %s\n", FormatBinding(tyenv, termenv, rs, BindingID(i)))
	}
	for _, r := range rs.Rules {
		fmt.Fprintf(&sb, "  rule %d at %s prio %d:\n", r.ID, r.Pos, r.Prio)
		for _, id := range r.Constrained() {
			c, _ := r.Constraint(id)
			fmt.Fprintf(&sb, "    %s is %s\n", id, FormatConstraint(tyenv, c))
		}
		eq := r.Equals.Clone()
		for id := BindingID(0); eq.Len() > 0; id++ {
			class := eq.RemoveSetOf(id)
			if len(class) == 0 {
				continue
			}
			names := make([]string, len(class))
			for i, m := range class {
				names[i] = m.String()
			}
			fmt.Fprintf(&sb, "    equal %s\n", strings.Join(names, " "))
		}
		for _, id := range sortedIterators(r) {
			fmt.Fprintf(&sb, "    iterate %s\n", id)
		}
		for _, id := range r.Impure {
			fmt.Fprintf(&sb, "    impure %s\n", id)
		}
		fmt.Fprintf(&sb, "    return %s\n", r.Result)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatBinding formats the binding id of rs as "bN = kind <ty> [aux] args".
func FormatBinding(tyenv *types.TypeEnv, termenv *types.TermEnv, rs *RuleSet, id BindingID) string {
	b := rs.Binding(id)
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s = %s", id, b.Kind)
	switch b.Kind {
	case ConstBool:
		fmt.Fprintf(&sb, " <%s> [%t]", tyenv.TypeName(b.Ty), b.Bool)
	case ConstInt:
		fmt.Fprintf(&sb, " <%s> [%s]", tyenv.TypeName(b.Ty), b.Int)
	case ConstPrim:
		fmt.Fprintf(&sb, " {%s}", tyenv.Name(b.Prim))
	case Argument, MatchTuple:
		fmt.Fprintf(&sb, " %d", b.Index)
	case Extractor:
		fmt.Fprintf(&sb, " {%s}", tyenv.Name(termenv.Term(b.Term).Name))
	case Constructor:
		fmt.Fprintf(&sb, " {%s}", tyenv.Name(termenv.Term(b.Term).Name))
		if b.Instance != 0 {
			fmt.Fprintf(&sb, " #%d", b.Instance)
		}
	case MakeVariant:
		fmt.Fprintf(&sb, " {%s}", variantName(tyenv, b.Ty, b.Variant))
	case MatchVariant:
		fmt.Fprintf(&sb, " [%d] %d", b.Variant, b.Index)
	}
	for _, s := range b.Sources {
		fmt.Fprintf(&sb, " %s", s)
	}
	return sb.String()
}

// FormatConstraint formats c using the names in tyenv.
func FormatConstraint(tyenv *types.TypeEnv, c Constraint) string {
	switch c.Kind {
	case VariantConstraint:
		return fmt.Sprintf("%s/%d", variantName(tyenv, c.Ty, c.Variant), c.Fields)
	case BoolConstraint:
		return fmt.Sprintf("%t", c.Bool)
	case IntConstraint:
		return fmt.Sprintf("%s <%s>", c.Int, tyenv.TypeName(c.Ty))
	case PrimConstraint:
		return tyenv.Name(c.Prim)
	}
	return "some"
}

func variantName(tyenv *types.TypeEnv, ty types.TypeID, v types.VariantID) string {
	t := tyenv.Type(ty)
	if t == nil || int(v) >= len(t.Variants) {
		return fmt.Sprintf("%s.%d", tyenv.TypeName(ty), v)
	}
	return tyenv.Name(t.Variants[v].FullName)
}

func sortedIterators(r *Rule) []BindingID {
	ids := r.Iterators.Slice()
	slices.Sort(ids)
	return ids
}
