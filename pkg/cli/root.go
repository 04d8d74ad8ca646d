// Package cli implements the minish command line: option handling, script and
// stdin evaluation and the interactive loop.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/elves/minish/pkg/ast"
	"github.com/elves/minish/pkg/config"
	"github.com/elves/minish/pkg/eval"
	"github.com/elves/minish/pkg/parse"
	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"src.elv.sh/pkg/diag"
	"src.elv.sh/pkg/sys"
)

type options struct {
	command    string
	printAST   bool
	trace      bool
	configPath string
}

type runner struct {
	files []*os.File
	fs    afero.Fs
	opts  options

	cfg    *config.Config
	errorc *color.Color
	color  bool
	// Status the process exits with.
	status int
}

func newRootCmd(r *runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "minish [script]",
		Short: "A minimal line-oriented shell",
		Long: `minish evaluates command lines made of simple commands joined with
";", "&", "|", "&&" and "||".

Without a script or -c, commands are read from stdin, interactively if it is
a terminal.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          r.run,
	}
	flags := cmd.Flags()
	flags.StringVarP(&r.opts.command, "command", "c", "", "evaluate the given command line")
	flags.BoolVar(&r.opts.printAST, "print-ast", false, "print the tree of each line before evaluating it")
	flags.BoolVar(&r.opts.trace, "trace", false, "print a debug trace of evaluated nodes to stderr")
	flags.StringVar(&r.opts.configPath, "config", "", "config path (default $HOME/"+config.FileName+")")
	return cmd
}

// Run runs the command line with the given arguments, excluding the program
// name, and returns the status the process should exit with.
func Run(args []string, files []*os.File, fsys afero.Fs) int {
	r := &runner{files: files, fs: fsys}
	cmd := newRootCmd(r)
	cmd.SetArgs(args)
	cmd.SetIn(files[0])
	cmd.SetOut(files[1])
	cmd.SetErr(files[2])
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(files[2], "minish:", err)
		return eval.StatusBadCommandLine
	}
	return r.status
}

// Execute is called by main.main with the process's arguments and files.
func Execute() int {
	return Run(os.Args[1:], eval.StdFiles, afero.NewOsFs())
}

func (r *runner) run(cmd *cobra.Command, args []string) error {
	path := r.opts.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(r.fs, path)
	if err != nil {
		return err
	}
	r.cfg = cfg
	r.color = useColor(cfg.Color, r.files[2])
	r.errorc = newErrorColor(r.color)
	eval.EnableTrace(cfg.Trace || r.opts.trace)

	ev := eval.NewEvaler(r.files)
	if err := applyEnv(ev, cfg.Env); err != nil {
		return err
	}

	switch {
	case cmd.Flags().Changed("command"):
		r.status = r.evalSource(ev, "[-c]", strings.NewReader(r.opts.command))
	case len(args) > 0:
		f, err := r.fs.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r.status = r.evalSource(ev, args[0], f)
	case sys.IsATTY(r.files[0].Fd()):
		r.status = r.repl(ev)
	default:
		r.status = r.evalSource(ev, "[stdin]", r.files[0])
	}
	return nil
}

// Installs the configured environment through assignment leaves, so that it
// is subject to the same rules as NAME=VALUE lines.
func applyEnv(ev *eval.Evaler, env map[string]string) error {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		leaf := ast.Leaf(&ast.Simple{Verb: ast.Lit(name + "=" + env[name])})
		if status := ev.EvalNode(leaf); status != 0 {
			return fmt.Errorf("can't set %s from config", name)
		}
	}
	return nil
}

// Evaluates the source line by line. Returns the status of the last line with
// commands, the exit code once a line runs exit or quit, or
// [eval.StatusSyntaxError] once a line can't be parsed.
func (r *runner) evalSource(ev *eval.Evaler, name string, src io.Reader) int {
	status := 0
	// Lines can be of any length.
	br := bufio.NewReader(src)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			lineStatus, ok := r.evalLine(ev, name, strings.TrimSuffix(line, "\n"))
			switch {
			case !ok:
			case lineStatus == eval.StatusExit:
				return ev.ExitCode()
			case lineStatus == eval.StatusSyntaxError:
				return lineStatus
			default:
				status = lineStatus
			}
		}
		if err == io.EOF {
			return status
		}
		if err != nil {
			r.errorf("read %s: %v", name, err)
			return eval.StatusFailure
		}
	}
}

// Parses and evaluates one line. The boolean is false if the line has no
// commands, in which case the status is meaningless.
func (r *runner) evalLine(ev *eval.Evaler, name, line string) (int, bool) {
	n, err := parse.Parse(name, line)
	if err != nil {
		r.showParseError(name, line, err)
		return eval.StatusSyntaxError, true
	}
	if n == nil {
		return 0, false
	}
	if r.opts.printAST {
		fmt.Fprintln(r.files[1], ast.PprintAST(n))
	}
	return ev.EvalNode(n), true
}

func (r *runner) showParseError(name, line string, err error) {
	var perr parse.Error
	if !errors.As(err, &perr) {
		r.errorf("syntax error: %v", err)
		return
	}
	for _, entry := range perr.Errors {
		ctx := diag.NewContext(name, line, diag.PointRanging(entry.Position))
		r.errorf("syntax error: %s", entry.Message)
		context := ctx.ShowCompact("")
		if !r.color {
			// The culprit is always highlighted.
			context = sgrPattern.ReplaceAllString(context, "")
		}
		fmt.Fprintf(r.files[2], "  %s\n", context)
	}
}

func (r *runner) errorf(format string, args ...any) {
	fmt.Fprintln(r.files[2], r.errorc.Sprintf(format, args...))
}

var sgrPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func useColor(when string, f *os.File) bool {
	switch when {
	case "always":
		return true
	case "never":
		return false
	default:
		return sys.IsATTY(f.Fd())
	}
}

func newErrorColor(enabled bool) *color.Color {
	c := color.New(color.FgRed, color.Bold)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}
