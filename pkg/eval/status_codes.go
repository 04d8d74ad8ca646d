package eval

// Status codes returned by the shell itself.
//
// POSIX only specifies the status code for [StatusCommandNotExecutable] and
// [StatusCommandNotFound] and the status code when a command was killed by a
// signal. Errors during redirection are only required to have status codes
// between 1 and 125. See
// https://pubs.opengroup.org/onlinepubs/9699919799/utilities/V3_chap02.html#tag_18_08_02.
//
// The practice of using 0 for no error is really well known, so we don't define
// a constant for it; code should just use 0.
const (
	// Generic failure: bad cd target, failed assignment, a leaf without a
	// verb, and the collapsed result of parallel and pipe nodes.
	StatusFailure = 1
	// Same as bash.
	StatusRedirectionError = 1

	// Same as dash and bash; zsh uses 1. Tested with: $sh -c 'if;'
	StatusSyntaxError    = 2
	StatusBadCommandLine = 2

	// EX_SOFTWARE from sysexits.h.
	StatusShellBug = 70

	// Not sure what other shells use for the following error conditions.
	StatusPipeError = 100
	StatusWaitError = 101
	StatusWaitOther = 102
	StatusForkError = 103

	// Specified by POSIX.
	StatusCommandNotExecutable = 126
	StatusCommandNotFound      = 127
	StatusSignalBase           = 128
)

// StatusExit is returned by [Evaler.EvalNode] when the tree asked the shell
// to terminate. It is never a valid exit code; the code the shell should exit
// with is available from [Evaler.ExitCode].
const StatusExit = -1
