package eval

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/elves/minish/pkg/ast"
)

func (fm *frame) simple(s *ast.Simple) (int, bool) {
	if s == nil || s.Verb == nil {
		return StatusFailure, true
	}
	verb := s.Verb.Text()

	// The order of special builtin > builtin > assignment > external is the
	// classification order of leaves. Names of the builtins don't contain
	// "=", so looking them up first doesn't shadow any assignment.

	if builtin, ok := specialBuiltins[verb]; ok {
		return builtin(fm, each((*ast.Word).Text, s.Params))
	}
	if builtin, ok := builtins[verb]; ok {
		return fm.runBuiltin(s, builtin), true
	}
	if strings.Contains(verb, "=") {
		return assign(fm, verb), true
	}
	return fm.runExternal(s, verb), true
}

// Runs a builtin with the redirections of s installed for its duration only.
func (fm *frame) runBuiltin(s *ast.Simple, builtin func(*frame, []string) int) int {
	files := fm.files
	fm.files = cloneSlice(files)
	defer func() { fm.files = files }()

	status, cleanup := fm.redirect(s)
	defer cleanup()
	if status != 0 {
		return status
	}
	return builtin(fm, each((*ast.Word).Text, s.Params))
}

func (fm *frame) runExternal(s *ast.Simple, name string) int {
	files := fm.files
	fm.files = cloneSlice(files)
	defer func() { fm.files = files }()

	status, cleanup := fm.redirect(s)
	// The child has its own copies of the descriptors once started.
	defer cleanup()
	if status != 0 {
		return status
	}

	wd, err := os.Getwd()
	if err != nil {
		fm.diag("can't get working directory: %v", err)
	}
	path, status := lookPath(name, wd, os.Getenv("PATH"))
	if status != 0 {
		fmt.Fprintf(fm.files[2], "Execution failed for '%s'\n", name)
		return status
	}

	args := append([]string{name}, each((*ast.Word).Text, s.Params)...)
	// A nil Env passes the current environment, including assignments made
	// so far.
	proc, err := os.StartProcess(path, args, &os.ProcAttr{Files: fm.files[:3]})
	if err != nil {
		fmt.Fprintf(fm.files[2], "Execution failed for '%s': %v\n", name, err)
		return StatusCommandNotExecutable
	}
	return fm.wait(proc)
}

// Waits for proc and maps its termination to a status. Wait errors are
// reported and turned into [StatusWaitError].
func (fm *frame) wait(proc *os.Process) int {
	status, err := waitProcess(proc)
	if err != nil {
		fm.diag("error waiting for process to finish: %v", err)
	}
	return status
}

func waitProcess(proc *os.Process) (int, error) {
	state, err := proc.Wait()
	if err != nil {
		return StatusWaitError, err
	}
	return statusOf(state), nil
}

// An exit status iff the process exited normally; otherwise 128+signal, or
// [StatusWaitOther] for anything else.
func statusOf(state *os.ProcessState) int {
	if state.Exited() {
		return state.ExitCode()
	}
	if waitStatus, ok := state.Sys().(syscall.WaitStatus); ok && waitStatus.Signaled() {
		return StatusSignalBase + int(waitStatus.Signal())
	}
	return StatusWaitOther
}
