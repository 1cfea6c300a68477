// Package sema implements semantic analysis of rule programs: it builds the
// type and term tables and type-checks every rule.
package sema

import (
	"github.com/you-not-fish/islec/internal/diag"
	"github.com/you-not-fish/islec/internal/syntax"
	"github.com/you-not-fish/islec/internal/types"
)

// Config specifies the configuration for checking.
type Config struct {
	// Error is called for each type error.
	// If nil, errors are only collected.
	Error ErrorHandler

	// KeepInternalExtractors leaves calls to internal extractors in
	// patterns instead of inlining their templates.
	KeepInternalExtractors bool
}

// Info holds the results of checking.
type Info struct {
	TypeEnv *types.TypeEnv

	// TermEnv is nil if the type definitions failed to check.
	TermEnv *types.TermEnv
}

// Check type-checks the definitions of files, processed in order as one
// program. It returns every type error found; stages whose inputs contain
// errors are skipped.
func Check(files []*syntax.File, conf *Config) (*Info, diag.List) {
	if conf == nil {
		conf = &Config{}
	}
	var defs []syntax.Def
	for _, f := range files {
		defs = append(defs, f.Defs...)
	}

	c := &Checker{
		conf:  conf,
		tyenv: types.NewTypeEnv(),
	}
	info := &Info{TypeEnv: c.tyenv}

	c.checkTypes(defs)
	if c.errors > 0 {
		return info, c.diags
	}

	c.termenv = types.NewTermEnv()
	c.termenv.ExpandInternalExtractors = !conf.KeepInternalExtractors
	info.TermEnv = c.termenv
	c.checkTerms(defs)
	return info, c.diags
}
