// Package compile drives the rule compiler pipeline: parsing, checking,
// rule-set construction, overlap analysis and decision-tree synthesis.
package compile

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/you-not-fish/islec/internal/decision"
	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/sema"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/trie"
)

// Source is one input file.
type Source struct {
	Name string
	Text string
}

// ReadFiles loads the named files in order.
func ReadFiles(paths []string) ([]Source, error) {
	srcs := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", p)
		}
		srcs = append(srcs, Source{Name: p, Text: string(data)})
	}
	return srcs, nil
}

// Options controls a compilation.
type Options struct {
	// KeepInternalExtractors leaves internal extractor calls unexpanded.
	// Compilation then stops after checking.
	KeepInternalExtractors bool

	SkipOverlap bool   // do not run the overlap analysis
	Verify      bool   // verify decision trees around every stage
	DumpBefore  string // dump state before this stage ("*" for all)
	DumpAfter   string // dump state after this stage ("*" for all)
	DumpTerm    string // restrict dumps to this term

	// DumpOut receives stage dumps. Defaults to os.Stderr.
	DumpOut io.Writer
}

// Result holds everything a compilation produced, up to the stage where
// it stopped.
type Result struct {
	Files    []*syntax.File
	Info     *sema.Info
	RuleSets []*trie.RuleSet

	// Trees[i] is the decision tree of RuleSets[i].
	Trees []*decision.Block

	// Diags holds every diagnostic, ordered by position.
	Diags diag.List
}

// Tree returns the rule set and decision tree of the named term.
func (r *Result) Tree(term string) (*trie.RuleSet, *decision.Block, bool) {
	if r.Info == nil || r.Info.TermEnv == nil {
		return nil, nil, false
	}
	id, ok := r.Info.TermEnv.TermByName(r.Info.TypeEnv, term)
	if !ok {
		return nil, nil, false
	}
	for i, rs := range r.RuleSets {
		if rs.Term == id && i < len(r.Trees) {
			return rs, r.Trees[i], true
		}
	}
	return nil, nil, false
}

// Compile runs the pipeline over srcs, processed in order as one program.
// Parse and type errors stop it; the returned error then aggregates them
// and the Result holds what was built so far. Unreachable rules are
// dropped and overlap findings are attached without failing.
func Compile(ctx context.Context, srcs []Source, opts Options) (*Result, error) {
	r := &Result{}
	stages := Stages(srcs, opts)
	klog.V(2).InfoS("compiling", "files", len(srcs), "stages", len(stages))
	err := Run(ctx, r, stages, opts)
	r.Diags.Sort()
	return r, err
}

// StageNames lists every stage in pipeline order.
var StageNames = []string{"parse", "check", "rules", "overlap", "tree"}

// Stages returns the pipeline for srcs under opts.
func Stages(srcs []Source, opts Options) []Stage {
	stages := []Stage{
		{Name: "parse", Fn: parseStage(srcs)},
		{Name: "check", Fn: checkStage(opts)},
	}
	if opts.KeepInternalExtractors {
		return stages
	}
	stages = append(stages, Stage{Name: "rules", Fn: buildRules})
	if !opts.SkipOverlap {
		stages = append(stages, Stage{Name: "overlap", Fn: checkOverlap})
	}
	return append(stages, Stage{Name: "tree", Fn: buildTrees})
}

// fatal aggregates the diagnostics of l that stop compilation.
func fatal(l diag.List) error {
	return l.Filter(diag.Parse, diag.Type, diag.IO).Err()
}

func parseStage(srcs []Source) func(context.Context, *Result) error {
	return func(_ context.Context, r *Result) error {
		for i, src := range srcs {
			f, errs := syntax.ParseFileAt(i, src.Name, strings.NewReader(src.Text))
			for _, e := range errs {
				r.Diags.Addf(diag.Parse, e.Pos, "%s", e.Msg)
			}
			r.Files = append(r.Files, f)
		}
		return fatal(r.Diags)
	}
}

func checkStage(opts Options) func(context.Context, *Result) error {
	return func(_ context.Context, r *Result) error {
		info, diags := sema.Check(r.Files, &sema.Config{KeepInternalExtractors: opts.KeepInternalExtractors})
		r.Info = info
		r.Diags = append(r.Diags, diags...)
		return fatal(r.Diags)
	}
}
