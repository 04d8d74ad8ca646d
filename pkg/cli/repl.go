package cli

import (
	"io"

	"github.com/abiosoft/readline"
	"github.com/elves/minish/pkg/eval"
)

// Reads lines from the terminal until EOF or exit. Interrupt clears the line.
func (r *runner) repl(ev *eval.Evaler) int {
	cfg := &readline.Config{
		Prompt:      r.cfg.Prompt,
		HistoryFile: r.cfg.HistoryFile,
		Stdin:       readline.NewCancelableStdin(r.files[0]),
		Stdout:      r.files[1],
		Stderr:      r.files[2],
	}
	rl, err := readline.NewEx(cfg)
	if err != nil {
		r.errorf("can't start line editor: %v", err)
		return eval.StatusFailure
	}
	defer rl.Close()

	status := 0
	for {
		line, err := rl.Readline()
		switch {
		case err == readline.ErrInterrupt:
			continue
		case err == io.EOF:
			return status
		case err != nil:
			r.errorf("read line: %v", err)
			return eval.StatusFailure
		}
		lineStatus, ok := r.evalLine(ev, "[tty]", line)
		if !ok {
			continue
		}
		if lineStatus == eval.StatusExit {
			return ev.ExitCode()
		}
		status = lineStatus
	}
}
