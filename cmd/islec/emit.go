package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
	"k8s.io/klog/v2"

	"github.com/you-not-fish/islec/internal/compile"
	"github.com/you-not-fish/islec/internal/config"
	"github.com/you-not-fish/islec/internal/decision"
	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/trie"
	"github.com/you-not-fish/islec/internal/types"
)

func (a *app) run(ctx context.Context, files []string) error {
	if a.emitTokens {
		return a.eachFile(files, a.printTokens)
	}
	if a.emitAST {
		return a.eachFile(files, a.printAST)
	}

	srcs, err := compile.ReadFiles(files)
	if err != nil {
		klog.ErrorS(err, "Failed to read input")
		return errFailed
	}
	opts := a.conf.CompileOptions()
	opts.DumpOut = a.stderr
	res, err := compile.Compile(ctx, srcs, opts)
	failed := a.report(res.Diags)
	if err != nil {
		if res.Diags.HasFatal() {
			return errFailed
		}
		return err
	}

	switch {
	case a.emitTerms:
		err = types.Fprint(a.stdout, res.Info.TypeEnv, res.Info.TermEnv)
	case a.emitRules:
		err = a.printRules(res)
	case a.emitTree:
		err = a.printTrees(res)
	}
	if err != nil {
		return err
	}
	if failed {
		return errFailed
	}
	return nil
}

// report prints diags and a summary line to stderr. It reports whether
// any of them fails the compilation.
func (a *app) report(diags diag.List) bool {
	var errs, warnings int
	for _, d := range diags {
		if d.Kind.Fatal() || (d.Kind.Advisory() && a.conf.Overlap == config.OverlapError) {
			errs++
		} else {
			warnings++
		}
		fmt.Fprintln(a.stderr, d.Error())
		for _, s := range d.Spans[min(1, len(d.Spans)):] {
			fmt.Fprintf(a.stderr, "\t%s\n", s.From)
		}
	}
	if len(diags) > 0 {
		fmt.Fprintf(a.stderr, "%d errors, %d warnings\n", errs, warnings)
	}
	return errs > 0
}

// eachFile runs fn on every file. fn reports whether the file had errors.
func (a *app) eachFile(files []string, fn func(name string, r io.Reader) bool) error {
	failed := false
	for _, name := range files {
		f, err := os.Open(name)
		if err != nil {
			klog.ErrorS(err, "Failed to open input", "file", name)
			return errFailed
		}
		if fn(name, f) {
			failed = true
		}
		f.Close()
	}
	if failed {
		return errFailed
	}
	return nil
}

// printTokens scans the input file and prints all tokens with positions.
func (a *app) printTokens(name string, r io.Reader) bool {
	var errs []string
	errh := func(line, col uint32, msg string) {
		errs = append(errs, fmt.Sprintf("%s:%d:%d: %s", name, line, col, msg))
	}
	s := syntax.NewScanner(name, r, errh)

	fmt.Fprintf(a.stdout, "%-20s %-8s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Fprintf(a.stdout, "%-20s %-8s %s\n", strings.Repeat("-", 20), strings.Repeat("-", 8), strings.Repeat("-", 20))
	for {
		s.Next()
		tok := s.Token()
		lit := formatLiteral(s.Literal())
		if tok.IsInt() {
			lit += " = " + s.Value().String()
		}
		fmt.Fprintf(a.stdout, "%-20s %-8s %s\n", s.Pos(), tok, lit)
		if tok.IsEOF() {
			break
		}
	}

	if len(errs) > 0 {
		fmt.Fprintln(a.stdout)
		fmt.Fprintln(a.stdout, "Errors:")
		for _, e := range errs {
			fmt.Fprintf(a.stdout, "  %s\n", e)
		}
		return true
	}
	return false
}

// formatLiteral formats a literal for display, escaping special characters.
func formatLiteral(lit string) string {
	if lit == "" {
		return `""`
	}
	var b strings.Builder
	b.WriteRune('"')
	for _, r := range lit {
		switch r {
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteRune('"')
	return b.String()
}

// printAST parses the input file and outputs its AST.
func (a *app) printAST(name string, r io.Reader) bool {
	f, errs := syntax.ParseFile(name, r)
	for _, e := range errs {
		fmt.Fprintln(a.stderr, e)
	}

	var err error
	switch a.conf.Output {
	case config.OutputJSON:
		err = syntax.FprintJSON(a.stdout, f)
	case config.OutputYAML:
		err = writeYAML(a.stdout, syntax.ToMap(f))
	default:
		syntax.Fprint(a.stdout, f)
	}
	if err != nil {
		klog.ErrorS(err, "Failed to write AST", "file", name)
		return true
	}
	return len(errs) > 0
}

func writeYAML(w io.Writer, v interface{}) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding YAML")
	}
	_, err = w.Write(out)
	return err
}

func (a *app) selected(res *compile.Result, rs *trie.RuleSet) bool {
	if a.conf.DumpTerm == "" {
		return true
	}
	env := res.Info
	return env.TypeEnv.Name(env.TermEnv.Term(rs.Term).Name) == a.conf.DumpTerm
}

// printRules writes the binding graph of every term. Without rule sets
// (internal extractors kept) it writes the checked rules instead.
func (a *app) printRules(res *compile.Result) error {
	env := res.Info
	if res.RuleSets == nil {
		return types.FprintRules(a.stdout, env.TypeEnv, env.TermEnv)
	}
	for _, rs := range res.RuleSets {
		if !a.selected(res, rs) {
			continue
		}
		if err := trie.Fprint(a.stdout, env.TypeEnv, env.TermEnv, rs); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) printTrees(res *compile.Result) error {
	env := res.Info
	var trees []interface{}
	for i, rs := range res.RuleSets {
		if !a.selected(res, rs) || i >= len(res.Trees) {
			continue
		}
		if a.conf.Output == config.OutputText {
			if err := decision.Fprint(a.stdout, env.TypeEnv, env.TermEnv, rs, res.Trees[i]); err != nil {
				return err
			}
			continue
		}
		trees = append(trees, decision.MarshalTree(env.TypeEnv, env.TermEnv, rs, res.Trees[i]))
	}
	switch a.conf.Output {
	case config.OutputJSON:
		return decision.WriteJSON(a.stdout, trees)
	case config.OutputYAML:
		return decision.WriteYAML(a.stdout, trees)
	}
	return nil
}
