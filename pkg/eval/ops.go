package eval

import (
	"os"

	"github.com/elves/minish/pkg/ast"
	"golang.org/x/sync/errgroup"
)

// Both branches run concurrently in processes of their own. The node succeeds
// iff both exit normally with 0.
func (fm *frame) parallel(n *ast.Node, depth int) int {
	stdio := [3]*os.File{fm.files[0], fm.files[1], fm.files[2]}
	left, err := fm.startSubshell(n.Left, depth+1, stdio)
	if err != nil {
		fm.diag("can't start process: %v", err)
		return StatusForkError
	}
	right, err := fm.startSubshell(n.Right, depth+1, stdio)
	if err != nil {
		fm.diag("can't start process: %v", err)
		fm.wait(left)
		return StatusForkError
	}
	leftStatus, rightStatus, err := fm.waitBoth(left, right)
	if err != nil || leftStatus != 0 || rightStatus != 0 {
		return StatusFailure
	}
	return 0
}

// The standard output of the left branch is connected to the standard input
// of the right branch. The node succeeds iff the right branch exits normally
// with 0. Failing to wait for either branch also fails the node.
func (fm *frame) pipe(n *ast.Node, depth int) int {
	r, w, err := os.Pipe()
	if err != nil {
		fm.diag("can't create pipe: %v", err)
		return StatusPipeError
	}
	// The parent must not hold either end once the children have them, or
	// the reader never sees EOF.
	closePipe := func() {
		r.Close()
		w.Close()
	}

	left, err := fm.startSubshell(n.Left, depth+1,
		[3]*os.File{fm.files[0], w, fm.files[2]})
	if err != nil {
		fm.diag("can't start process: %v", err)
		closePipe()
		return StatusForkError
	}
	right, err := fm.startSubshell(n.Right, depth+1,
		[3]*os.File{r, fm.files[1], fm.files[2]})
	closePipe()
	if err != nil {
		fm.diag("can't start process: %v", err)
		fm.wait(left)
		return StatusForkError
	}
	_, rightStatus, err := fm.waitBoth(left, right)
	if err != nil || rightStatus != 0 {
		return StatusFailure
	}
	return 0
}

// Waits for both processes. Both results are always collected, even if
// waiting for one of them fails.
func (fm *frame) waitBoth(left, right *os.Process) (int, int, error) {
	var g errgroup.Group
	var leftStatus, rightStatus int
	g.Go(func() (err error) {
		leftStatus, err = waitProcess(left)
		return err
	})
	g.Go(func() (err error) {
		rightStatus, err = waitProcess(right)
		return err
	})
	err := g.Wait()
	if err != nil {
		fm.diag("error waiting for process to finish: %v", err)
	}
	return leftStatus, rightStatus, err
}
