// proclog flags long-running processes in CSV activity logs.
package main

import (
	"os"

	"github.com/ccollicutt/proclog/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
