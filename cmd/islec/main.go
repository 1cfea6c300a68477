// Package main implements the islec rule compiler entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/you-not-fish/islec/internal/config"
)

// Version information
const Version = "0.1.0-dev"

// errFailed reports a compilation whose diagnostics were already printed.
var errFailed = errors.New("compilation failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command line args and returns the exit status.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdout, stderr)
	if args == nil {
		// cobra falls back to os.Args for nil
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	klog.Flush()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errFailed):
		return 1
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
}

// app holds the state of one invocation.
type app struct {
	stdout, stderr io.Writer

	configFile string
	emitTokens bool
	emitAST    bool
	emitTerms  bool
	emitRules  bool
	emitTree   bool

	conf *config.Config
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	def := config.New()

	cmd := &cobra.Command{
		Use:   "islec [flags] FILE...",
		Short: "Compile instruction-selection rules into decision trees",
		Long: `islec checks a program of types, terms and rewrite rules, builds the
binding graph of every term and synthesizes one decision tree per term.
All files are compiled in order as one program.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.conf = conf
			if len(args) == 0 {
				return errors.New("no input file")
			}
			return a.run(cmd.Context(), args)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	cmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Configuration file (YAML)")

	fs := cmd.Flags()
	fs.BoolVar(&a.emitTokens, "emit-tokens", false, "Output token stream")
	fs.BoolVar(&a.emitAST, "emit-ast", false, "Output AST")
	fs.BoolVar(&a.emitTerms, "emit-terms", false, "Output type and term tables")
	fs.BoolVar(&a.emitRules, "emit-rules", false, "Output binding graphs and constraints")
	fs.BoolVar(&a.emitTree, "emit-tree", false, "Output decision trees")
	fs.String("output", def.Output, "Format of --emit-ast and --emit-tree output (text, json or yaml)")
	fs.String("term", def.DumpTerm, "Only emit and dump this term")
	fs.Bool("verify", def.Verify, "Verify decision trees around every stage")
	fs.String("dump-before", def.DumpBefore, `Dump state before stage (name or "*")`)
	fs.String("dump-after", def.DumpAfter, `Dump state after stage (name or "*")`)
	fs.String("overlap", def.Overlap, "Overlap policy (ignore, warn or error)")
	addKlogFlags(cmd.PersistentFlags())

	cmd.AddCommand(newVersionCommand(stdout), newConfigCommand(a))
	return cmd
}

// addKlogFlags registers the klog flags on fs, with dashes instead of
// underscores.
func addKlogFlags(fs *pflag.FlagSet) {
	local := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(local)
	local.VisitAll(func(fl *flag.Flag) {
		fl.Name = strings.ReplaceAll(fl.Name, "_", "-")
		fs.AddGoFlag(fl)
	})
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(stdout, "islec version %s\n", Version)
			fmt.Fprintf(stdout, "go version %s\n", runtime.Version())
		},
	}
}

func newConfigCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return conf.Write(a.stdout)
		},
	}
}
