// Command minish is a minimal line-oriented shell.
package main

import (
	"os"

	"github.com/elves/minish/pkg/cli"
	"github.com/elves/minish/pkg/eval"
)

func main() {
	if eval.IsSubshell() {
		os.Exit(eval.SubshellMain())
	}
	os.Exit(cli.Execute())
}
