// symsolve answers math questions and runs the symbolic engine from the
// command line.
package main

import (
	"os"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes the CLI and returns the process exit status.
func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		ancli.PrintErr(err.Error() + "\n")
		return 1
	}
	return 0
}
