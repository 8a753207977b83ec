// Command qtrace records, replays and compares quantum circuit executions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/qtrace/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "qtrace:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
