package cli

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/elves/minish/pkg/eval"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"src.elv.sh/pkg/must"
)

func TestMain(m *testing.M) {
	if eval.IsSubshell() {
		os.Exit(eval.SubshellMain())
	}
	os.Exit(m.Run())
}

type result struct {
	status int
	stdout string
	stderr string
}

// Runs the command line with the given stdin content.
func run(fs afero.Fs, stdin string, args ...string) result {
	r, w := must.Pipe()
	go func() {
		io.WriteString(w, stdin)
		w.Close()
	}()
	defer r.Close()
	out, readOut := outputPipe()
	errFile, readErr := outputPipe()
	status := Run(args, []*os.File{r, out, errFile}, fs)
	return result{status, readOut(), readErr()}
}

func outputPipe() (*os.File, func() string) {
	r, w := must.Pipe()
	ch := make(chan string)
	go func() {
		ch <- string(must.OK1(io.ReadAll(r)))
		r.Close()
	}()
	return w, func() string {
		w.Close()
		return <-ch
	}
}

// A filesystem with no config file.
func emptyFs() afero.Fs { return afero.NewMemMapFs() }

func TestRun_Command(t *testing.T) {
	tests := []struct {
		args       []string
		wantStatus int
		wantStdout string
	}{
		{[]string{"-c", "echo hi"}, 0, "hi\n"},
		{[]string{"-c", "false"}, 1, ""},
		{[]string{"-c", "exit 3"}, 3, ""},
		{[]string{"-c", "echo a | tr a b"}, 0, "b\n"},
		{[]string{"-c", ""}, 0, ""},
	}
	for _, test := range tests {
		t.Run(strings.Join(test.args, " "), func(t *testing.T) {
			r := run(emptyFs(), "", test.args...)
			assert.Equal(t, test.wantStatus, r.status)
			assert.Equal(t, test.wantStdout, r.stdout)
		})
	}
}

func TestRun_Script(t *testing.T) {
	fs := emptyFs()
	require.NoError(t, afero.WriteFile(fs, "/s.sh", []byte("echo a\n\nfalse\n# comment\n"), 0o644))
	r := run(fs, "", "/s.sh")
	assert.Equal(t, 1, r.status)
	assert.Equal(t, "a\n", r.stdout)

	require.NoError(t, afero.WriteFile(fs, "/exit.sh", []byte("echo a\nexit 4\necho b\n"), 0o644))
	r = run(fs, "", "/exit.sh")
	assert.Equal(t, 4, r.status)
	assert.Equal(t, "a\n", r.stdout)
}

func TestRun_MissingScript(t *testing.T) {
	r := run(emptyFs(), "", "/nonexistent.sh")
	assert.Equal(t, eval.StatusBadCommandLine, r.status)
	assert.Contains(t, r.stderr, "nonexistent.sh")
}

func TestRun_Stdin(t *testing.T) {
	r := run(emptyFs(), "echo one\necho two\n")
	assert.Equal(t, 0, r.status)
	assert.Equal(t, "one\ntwo\n", r.stdout)
}

func TestRun_SyntaxError(t *testing.T) {
	r := run(emptyFs(), "echo before\n(a)\necho after\n")
	assert.Equal(t, eval.StatusSyntaxError, r.status)
	assert.Equal(t, "before\n", r.stdout)
	assert.Contains(t, r.stderr, "syntax error: subshell is not supported")
	// Stderr is not a terminal and the default is auto.
	assert.NotContains(t, r.stderr, "\033[")
}

func TestRun_PrintAST(t *testing.T) {
	r := run(emptyFs(), "", "--print-ast", "-c", "true | true")
	assert.Equal(t, 0, r.status)
	assert.True(t, strings.HasPrefix(r.stdout, "Pipe\n"), "stdout: %q", r.stdout)
}

func TestRun_BadFlag(t *testing.T) {
	r := run(emptyFs(), "", "--no-such-flag")
	assert.Equal(t, eval.StatusBadCommandLine, r.status)
	assert.Contains(t, r.stderr, "no-such-flag")
}

func TestRun_ConfigEnv(t *testing.T) {
	t.Setenv("MINISH_CLI_A", "")
	t.Setenv("MINISH_CLI_B", "")
	fs := emptyFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte(`
env:
  MINISH_CLI_B: $MINISH_CLI_A-b
  MINISH_CLI_A: a
`), 0o644))
	r := run(fs, "", "--config", "/c.yaml", "-c", "echo $MINISH_CLI_A $MINISH_CLI_B")
	assert.Equal(t, 0, r.status)
	// Values are taken literally.
	assert.Equal(t, "a $MINISH_CLI_A-b\n", r.stdout)
}

func TestRun_ConfigColor(t *testing.T) {
	fs := emptyFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("color: always\n"), 0o644))
	r := run(fs, "", "--config", "/c.yaml", "-c", "(a)")
	assert.Equal(t, eval.StatusSyntaxError, r.status)
	assert.Contains(t, r.stderr, "\033[")
}

func TestRun_BadConfig(t *testing.T) {
	fs := emptyFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("color: sometimes\n"), 0o644))
	r := run(fs, "", "--config", "/c.yaml", "-c", "echo hi")
	assert.Equal(t, eval.StatusBadCommandLine, r.status)
	assert.Equal(t, "", r.stdout)
	assert.Contains(t, r.stderr, "invalid config")
}

func TestRun_SyntaxErrorContextWithoutColor(t *testing.T) {
	fs := emptyFs()
	require.NoError(t, afero.WriteFile(fs, "/c.yaml", []byte("color: never\n"), 0o644))
	r := run(fs, "", "--config", "/c.yaml", "-c", "(a)")
	assert.Equal(t, eval.StatusSyntaxError, r.status)
	assert.Equal(t, "syntax error: subshell is not supported\n  [-c]:1:1: ^(a)\n", r.stderr)
}

func TestRun_LongLine(t *testing.T) {
	t.Setenv("MINISH_CLI_LONG", "")
	value := strings.Repeat("a", 100000)
	r := run(emptyFs(), "MINISH_CLI_LONG="+value+"\necho done\n")
	assert.Equal(t, 0, r.status)
	assert.Equal(t, "done\n", r.stdout)
	assert.Equal(t, value, os.Getenv("MINISH_CLI_LONG"))
}

func TestRun_LastLineWithoutNewline(t *testing.T) {
	r := run(emptyFs(), "echo a\nexit 5")
	assert.Equal(t, 5, r.status)
	assert.Equal(t, "a\n", r.stdout)
}
