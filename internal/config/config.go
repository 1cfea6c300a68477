// Package config holds the compiler options and loads them from YAML
// files, ISLEC_ environment variables and command-line flags.
package config

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/you-not-fish/islec/internal/compile"
)

// EnvPrefix prefixes the environment variables that override settings,
// e.g. ISLEC_OVERLAP.
const EnvPrefix = "ISLEC"

// Overlap policies.
const (
	OverlapIgnore = "ignore"
	OverlapWarn   = "warn"
	OverlapError  = "error"
)

// Output formats.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds the compiler options.
type Config struct {
	// ExpandInternalExtractors inlines internal extractor templates into
	// the patterns that call them.
	ExpandInternalExtractors bool `yaml:"expand_internal_extractors" mapstructure:"expand_internal_extractors"`

	// Overlap selects how overlap findings are treated: ignore, warn
	// or error.
	Overlap string `yaml:"overlap" mapstructure:"overlap"`

	Verify     bool   `yaml:"verify" mapstructure:"verify"`
	DumpBefore string `yaml:"dump_before,omitempty" mapstructure:"dump_before"`
	DumpAfter  string `yaml:"dump_after,omitempty" mapstructure:"dump_after"`
	DumpTerm   string `yaml:"dump_term,omitempty" mapstructure:"dump_term"`

	// Output is the format of emitted trees and ASTs: text, json or yaml.
	Output string `yaml:"output" mapstructure:"output"`
}

// New returns the default configuration.
func New() *Config {
	return &Config{
		ExpandInternalExtractors: true,
		Overlap:                  OverlapWarn,
		Output:                   OutputText,
	}
}

// flagNames maps configuration keys to the command-line flags that
// override them.
var flagNames = map[string]string{
	"overlap":     "overlap",
	"verify":      "verify",
	"dump_before": "dump-before",
	"dump_after":  "dump-after",
	"dump_term":   "term",
	"output":      "output",
}

// Load reads the configuration. Settings come from, in increasing
// precedence: defaults, the YAML file at path (if not empty), ISLEC_
// environment variables, and flags of fs that were set explicitly.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	def := New()
	v.SetDefault("expand_internal_extractors", def.ExpandInternalExtractors)
	v.SetDefault("overlap", def.Overlap)
	v.SetDefault("verify", def.Verify)
	v.SetDefault("dump_before", def.DumpBefore)
	v.SetDefault("dump_after", def.DumpAfter)
	v.SetDefault("dump_term", def.DumpTerm)
	v.SetDefault("output", def.Output)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		for key, name := range flagNames {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, errors.Wrapf(err, "binding flag --%s", name)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config %s", path)
		}
	}

	conf := New()
	if err := v.Unmarshal(conf); err != nil {
		return nil, errors.Wrapf(err, "decoding config %s", path)
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return conf, nil
}

// Validate reports every invalid setting of c.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains([]string{OverlapIgnore, OverlapWarn, OverlapError}, c.Overlap) {
		errs = append(errs, fmt.Errorf("overlap: unknown policy %q (want ignore, warn or error)", c.Overlap))
	}
	if !slices.Contains([]string{OutputText, OutputJSON, OutputYAML}, c.Output) {
		errs = append(errs, fmt.Errorf("output: unknown format %q (want text, json or yaml)", c.Output))
	}
	for _, d := range []struct{ key, stage string }{
		{"dump_before", c.DumpBefore},
		{"dump_after", c.DumpAfter},
	} {
		if d.stage != "" && d.stage != "*" && !slices.Contains(compile.StageNames, d.stage) {
			errs = append(errs, fmt.Errorf("%s: unknown stage %q", d.key, d.stage))
		}
	}
	return utilerrors.NewAggregate(errs)
}

// CompileOptions returns the pipeline options c selects.
func (c *Config) CompileOptions() compile.Options {
	return compile.Options{
		KeepInternalExtractors: !c.ExpandInternalExtractors,
		SkipOverlap:            c.Overlap == OverlapIgnore,
		Verify:                 c.Verify,
		DumpBefore:             c.DumpBefore,
		DumpAfter:              c.DumpAfter,
		DumpTerm:               c.DumpTerm,
	}
}

// Write encodes c to w as YAML.
func (c *Config) Write(w io.Writer) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	_, err = w.Write(out)
	return err
}
