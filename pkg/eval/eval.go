// Package eval evaluates command trees.
//
// Each leaf runs either as a builtin inside the evaluating process or as an
// external program; operator nodes combine the statuses of their children.
// Parallel and pipe branches run in processes of their own, see
// [SubshellMain].
package eval

import (
	"fmt"
	"os"

	"github.com/chzyer/logex"
	"github.com/elves/minish/pkg/ast"
	"github.com/elves/minish/pkg/parse"
)

// EnableTrace turns the per-node debug trace on or off. The trace is written
// to the standard error of the process and is inherited by branch processes.
func EnableTrace(on bool) {
	if on {
		logex.DebugLevel = 0
	} else {
		logex.DebugLevel = 1
	}
}

// TraceEnabled reports whether the per-node debug trace is on.
func TraceEnabled() bool { return logex.DebugLevel <= 0 }

type Evaler struct {
	files []*os.File
	// Executable that is re-run to evaluate a parallel or pipe branch. When
	// empty, the result of os.Executable is used.
	Subshell string

	// Recursion depth of the root, only used in debug traces.
	depth      int
	lastStatus int
	exitCode   int
}

var StdFiles = []*os.File{os.Stdin, os.Stdout, os.Stderr}

func NewEvaler(files []*os.File) *Evaler {
	if len(files) < 3 {
		panic("files must have at least 3 elements")
	}
	return &Evaler{files: files}
}

// Eval parses code and evaluates the resulting tree. Code without commands
// evaluates to 0.
func (ev *Evaler) Eval(code string) int {
	n, err := parse.Parse("input", code)
	if err != nil {
		fmt.Fprintln(ev.files[2], "syntax error:", err)
		return StatusSyntaxError
	}
	if n == nil {
		return 0
	}
	return ev.EvalNode(n)
}

// EvalNode evaluates a tree and returns its status, or [StatusExit] if the
// tree ran exit or quit.
func (ev *Evaler) EvalNode(n *ast.Node) int {
	fm := ev.frame()
	status, ok := fm.node(n, ev.depth)
	ev.lastStatus = fm.lastStatus
	if !ok {
		ev.exitCode = status
		return StatusExit
	}
	return status
}

// ExitCode returns the exit code requested by the last exit or quit.
func (ev *Evaler) ExitCode() int {
	return ev.exitCode
}

func (ev *Evaler) frame() *frame {
	return &frame{cloneSlice(ev.files), ev.files[2], ev.Subshell, ev.lastStatus}
}

type frame struct {
	// Standard input, output and error of the leaf being evaluated.
	// Redirections replace entries for the duration of one leaf.
	files []*os.File
	// Diagnostics of the shell itself go to the initial stderr, ignoring
	// redirections.
	diagFile *os.File
	subshell string
	// Status of the last completed node; the default exit code of exit.
	lastStatus int
}

// Prints a diagnostic message.
func (fm *frame) diag(format string, args ...any) {
	fmt.Fprintf(fm.diagFile, format+"\n", args...)
}

// The methods on (*frame) that evaluate nodes return (int, bool). The boolean
// is false iff exit or quit was evaluated: evaluation must stop and the status
// is the exit code requested. The flag is never turned back into true by
// sequential or conditional nodes; it stops at the boundary of a branch
// process, where it only ends that process.

func (fm *frame) node(n *ast.Node, depth int) (int, bool) {
	if n == nil {
		return StatusFailure, true
	}
	logex.Debugf("eval[%d] %v", depth, n)
	status, ok := fm.dispatch(n, depth)
	if ok {
		fm.lastStatus = status
	}
	return status, ok
}

func (fm *frame) dispatch(n *ast.Node, depth int) (int, bool) {
	switch n.Op {
	case ast.OpNone:
		return fm.simple(n.Simple)
	case ast.OpSequential:
		status, ok := fm.node(n.Left, depth+1)
		if !ok {
			// exit on the left ends the whole tree; the right side is not
			// evaluated.
			return status, false
		}
		return fm.node(n.Right, depth+1)
	case ast.OpCondZero, ast.OpCondNonzero:
		status, ok := fm.node(n.Left, depth+1)
		if !ok || shouldSkipCond(n.Op, status) {
			return status, ok
		}
		return fm.node(n.Right, depth+1)
	case ast.OpParallel, ast.OpPipe:
		if n.Left == nil || n.Right == nil {
			return StatusFailure, true
		}
		if n.Op == ast.OpParallel {
			return fm.parallel(n, depth), true
		}
		return fm.pipe(n, depth), true
	default:
		fm.diag("bug: unknown operator %v", n.Op)
		return StatusShellBug, true
	}
}

func shouldSkipCond(op ast.Op, leftStatus int) bool {
	return (op == ast.OpCondZero && leftStatus != 0) ||
		(op == ast.OpCondNonzero && leftStatus == 0)
}
