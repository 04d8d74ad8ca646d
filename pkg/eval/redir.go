package eval

import (
	"os"

	"github.com/elves/minish/pkg/ast"
)

// Permission of files created by output redirections.
const redirPerm = 0644

// Opens the redirection targets of s and installs them into fm.files. The
// caller is responsible for restoring fm.files afterwards.
//
// Returns a status code and a clean up function that closes the opened files.
// The clean up function is never nil and must be called even if the status is
// not 0, after the files are no longer needed: for external commands once the
// process is started, for builtins once they return.
func (fm *frame) redirect(s *ast.Simple) (int, func()) {
	var opened []*os.File
	cleanup := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	open := func(w *ast.Word, flag int) (*os.File, bool) {
		// Relative paths are resolved against the working directory at
		// this point, not when the tree was built.
		f, err := os.OpenFile(w.Text(), flag, redirPerm)
		if err != nil {
			fm.diag("can't open redirection target: %v", err)
			return nil, false
		}
		opened = append(opened, f)
		return f, true
	}

	if s.In != nil {
		f, ok := open(s.In, os.O_RDONLY)
		if !ok {
			return StatusRedirectionError, cleanup
		}
		fm.files[0] = f
	}

	// The append flag of either target applies to both.
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if s.IOFlags.Append() {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	if s.Out != nil {
		f, ok := open(s.Out, flag)
		if !ok {
			return StatusRedirectionError, cleanup
		}
		fm.files[1] = f
	}
	if s.Err != nil {
		if s.Out != nil && s.Err.Text() == s.Out.Text() {
			// Two independent opens in truncating mode would overwrite each
			// other's output; share one file, which is closed only once.
			fm.files[2] = fm.files[1]
		} else {
			f, ok := open(s.Err, flag)
			if !ok {
				return StatusRedirectionError, cleanup
			}
			fm.files[2] = f
		}
	}
	return 0, cleanup
}
