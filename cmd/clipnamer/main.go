// Command clipnamer renames OBS recordings after what was on screen when
// they were made.
package main

import (
	"context"
	"os"

	"github.com/backmassage/clipnamer/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	deps := cli.NewDependencies()
	defer deps.Close()

	if err := cli.NewRootCmd(deps).ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}
