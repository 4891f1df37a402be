// Command omni is the developer-workstation orchestrator's CLI entry
// point: a thin cobra dispatcher over the C1-C5 engine packages. Help
// rendering, shell completion, and prompting polish are non-goals (spec.md
// §1); the dispatcher itself is not.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
