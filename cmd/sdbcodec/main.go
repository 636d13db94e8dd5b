// Command sdbcodec encodes and decodes sortable attribute values and
// renders value matchers.
package main

import (
	"fmt"
	"os"

	"github.com/manojoshi/sdborm/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
