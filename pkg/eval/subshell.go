package eval

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chzyer/logex"
	"github.com/elves/minish/pkg/ast"
)

// Environment variable that marks a process as a branch process. Its value is
// the descriptor the handoff is read from.
const subshellEnv = "MINISH_SUBSHELL_FD"

// Descriptor of the handoff pipe in a branch process, right after the three
// standard files.
const subshellFd = 3

// State passed from the evaluating process to a branch process.
type handoff struct {
	DebugLevel int       `json:"debug_level"`
	Depth      int       `json:"depth"`
	LastStatus int       `json:"last_status"`
	Node       *ast.Node `json:"node"`
}

// IsSubshell reports whether the current process was started to evaluate a
// parallel or pipe branch. Programs using this package should call
// [SubshellMain] and exit with its result when this returns true, before doing
// anything else.
func IsSubshell() bool {
	_, ok := os.LookupEnv(subshellEnv)
	return ok
}

// SubshellMain reads the branch handed off by the parent process, evaluates it
// with the standard files and returns the status the process should exit
// with. Exit and quit inside the branch only end this process.
func SubshellMain() int {
	fdStr := os.Getenv(subshellEnv)
	// Processes started by the branch are not branch processes themselves.
	os.Unsetenv(subshellEnv)

	fd, err := strconv.Atoi(fdStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bad %s: %q\n", subshellEnv, fdStr)
		return StatusShellBug
	}
	h, err := readHandoff(os.NewFile(uintptr(fd), "handoff"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "can't read branch:", err)
		return StatusShellBug
	}
	logex.DebugLevel = h.DebugLevel

	ev := NewEvaler(StdFiles)
	ev.depth = h.Depth
	ev.lastStatus = h.LastStatus
	status := ev.EvalNode(h.Node)
	if status == StatusExit {
		return ev.ExitCode()
	}
	return status
}

func readHandoff(r io.ReadCloser) (*handoff, error) {
	defer r.Close()
	var h handoff
	if err := json.NewDecoder(r).Decode(&h); err != nil {
		return nil, err
	}
	if h.Node == nil {
		return nil, fmt.Errorf("no node in handoff")
	}
	return &h, nil
}

// Starts a process evaluating n with the given standard files. The caller
// keeps ownership of files.
func (fm *frame) startSubshell(n *ast.Node, depth int, files [3]*os.File) (*os.Process, error) {
	data, err := json.Marshal(handoff{logex.DebugLevel, depth, fm.lastStatus, n})
	if err != nil {
		return nil, err
	}
	exe := fm.subshell
	if exe == "" {
		exe, err = os.Executable()
		if err != nil {
			return nil, err
		}
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	proc, err := os.StartProcess(exe, []string{exe}, &os.ProcAttr{
		Env:   append(os.Environ(), fmt.Sprintf("%s=%d", subshellEnv, subshellFd)),
		Files: []*os.File{files[0], files[1], files[2], r},
	})
	r.Close()
	if err != nil {
		w.Close()
		return nil, err
	}
	go func() {
		// A child that dies before reading makes this fail with EPIPE; its
		// exit status already reports the problem.
		w.Write(data)
		w.Close()
	}()
	return proc, nil
}
