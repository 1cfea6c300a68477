package compile

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"

	"github.com/you-not-fish/islec/internal/decision"
	"github.com/you-not-fish/islec/internal/overlap"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/trie"
	"github.com/you-not-fish/islec/internal/types"
)

// Stage describes a single step of the pipeline.
type Stage struct {
	Name string
	Fn   func(ctx context.Context, r *Result) error
}

// Run executes stages on r in order. It stops at the first stage that
// fails or when ctx is done.
func Run(ctx context.Context, r *Result, stages []Stage, opts Options) error {
	out := opts.DumpOut
	if out == nil {
		out = os.Stderr
	}
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			return err
		}

		if shouldDump(opts.DumpBefore, s.Name) {
			fmt.Fprintf(out, "--- before %s ---\n", s.Name)
			if err := Dump(out, r, opts.DumpTerm); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}

		if opts.Verify {
			if err := verify(r); err != nil {
				return errors.Wrapf(err, "verify before %s", s.Name)
			}
		}

		start := time.Now()
		err := s.Fn(ctx, r)
		klog.V(2).InfoS("stage finished", "stage", s.Name, "elapsed", time.Since(start), "diagnostics", len(r.Diags))
		if err != nil {
			return err
		}

		if opts.Verify {
			if err := verify(r); err != nil {
				return errors.Wrapf(err, "verify after %s", s.Name)
			}
		}

		if shouldDump(opts.DumpAfter, s.Name) {
			fmt.Fprintf(out, "--- after %s ---\n", s.Name)
			if err := Dump(out, r, opts.DumpTerm); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}

func shouldDump(pattern, name string) bool {
	return pattern == "*" || pattern == name
}

func matchTerm(filter, name string) bool {
	return filter == "" || filter == name
}

// Dump writes the most refined representation r holds: decision trees,
// rule sets, the term table, or the parsed files. A non-empty term
// restricts rule sets and trees to that term.
func Dump(w io.Writer, r *Result, term string) error {
	switch {
	case r.Trees != nil:
		env := r.Info
		for i, rs := range r.RuleSets {
			if !matchTerm(term, termName(env.TypeEnv, env.TermEnv, rs)) {
				continue
			}
			if err := decision.Fprint(w, env.TypeEnv, env.TermEnv, rs, r.Trees[i]); err != nil {
				return err
			}
		}
	case r.RuleSets != nil:
		env := r.Info
		for _, rs := range r.RuleSets {
			if !matchTerm(term, termName(env.TypeEnv, env.TermEnv, rs)) {
				continue
			}
			if err := trie.Fprint(w, env.TypeEnv, env.TermEnv, rs); err != nil {
				return err
			}
		}
	case r.Info != nil && r.Info.TermEnv != nil:
		return types.Fprint(w, r.Info.TypeEnv, r.Info.TermEnv)
	default:
		for _, f := range r.Files {
			syntax.Fprint(w, f)
		}
	}
	return nil
}

func termName(tyenv *types.TypeEnv, termenv *types.TermEnv, rs *trie.RuleSet) string {
	return tyenv.Name(termenv.Term(rs.Term).Name)
}

// verify checks every decision tree built so far.
func verify(r *Result) error {
	var errs []error
	for i, b := range r.Trees {
		if b == nil {
			continue
		}
		if err := decision.Verify(r.RuleSets[i], b); err != nil {
			name := termName(r.Info.TypeEnv, r.Info.TermEnv, r.RuleSets[i])
			errs = append(errs, errors.Wrapf(err, "tree %s", name))
		}
	}
	return utilerrors.NewAggregate(errs)
}

func buildRules(_ context.Context, r *Result) error {
	sets, diags := trie.Build(r.Info.TermEnv)
	r.RuleSets = sets
	r.Diags = append(r.Diags, diags...)
	for _, rs := range sets {
		klog.V(4).InfoS("built rule set", "term", termName(r.Info.TypeEnv, r.Info.TermEnv, rs),
			"rules", len(rs.Rules), "bindings", len(rs.Bindings))
		if v := klog.V(5); v.Enabled() {
			v.Info(spew.Sdump(rs.Bindings))
		}
	}
	return nil
}

func checkOverlap(_ context.Context, r *Result) error {
	r.Diags = append(r.Diags, overlap.Check(r.Info.TermEnv, r.RuleSets)...)
	return nil
}

func buildTrees(ctx context.Context, r *Result) error {
	r.Trees = make([]*decision.Block, len(r.RuleSets))
	for i, rs := range r.RuleSets {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		r.Trees[i] = decision.Build(rs)
		klog.V(4).InfoS("built decision tree", "term", termName(r.Info.TypeEnv, r.Info.TermEnv, rs),
			"elapsed", time.Since(start))
	}
	return nil
}
