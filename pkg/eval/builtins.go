package eval

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// Builtins that can end evaluation. They return (int, bool) like the node
// methods of frame and never see redirections.
var specialBuiltins map[string]func(*frame, []string) (int, bool)

// Builtins that run inside the shell process with redirections installed for
// their duration.
var builtins map[string]func(*frame, []string) int

func init() {
	specialBuiltins = map[string]func(*frame, []string) (int, bool){
		"exit": exit,
		"quit": exit,
	}
	builtins = map[string]func(*frame, []string) int{
		"cd":  cd,
		"pwd": pwd,
	}
}

var errPathTooLong = errors.New("path too long")

func exit(fm *frame, args []string) (int, bool) {
	if len(args) == 0 {
		return fm.lastStatus, false
	}
	code, err := strconv.Atoi(args[0])
	if err != nil {
		fm.diag("exit: bad exit code: %s", args[0])
		return StatusBadCommandLine, false
	}
	return code, false
}

// Without an argument cd does nothing. Relative targets are joined with the
// working directory first.
func cd(fm *frame, args []string) int {
	if len(args) == 0 {
		return 0
	}
	if err := chdir(args[0]); err != nil {
		fmt.Fprintf(fm.files[2], "cd: %v\n", err)
		return StatusFailure
	}
	return 0
}

func chdir(dir string) error {
	if strings.HasPrefix(dir, "/") {
		return os.Chdir(dir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return err
	}
	if len(wd)+1+len(dir) >= unix.PathMax {
		return &os.PathError{Op: "chdir", Path: dir, Err: errPathTooLong}
	}
	return os.Chdir(wd + "/" + dir)
}

func pwd(fm *frame, args []string) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(fm.files[2], "pwd: %v\n", err)
		return StatusFailure
	}
	fmt.Fprintln(fm.files[1], wd)
	return 0
}

// Sets the environment variable named by the part of verb before the first
// "="; the rest, possibly empty, is the value.
func assign(fm *frame, verb string) int {
	name, value, _ := strings.Cut(verb, "=")
	if err := os.Setenv(name, value); err != nil {
		fm.diag("can't assign %s: %v", name, err)
		return StatusFailure
	}
	return 0
}
