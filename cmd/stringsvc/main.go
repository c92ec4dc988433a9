// Command stringsvc runs the string analysis service.
package main

import (
	"os"

	"github.com/roach88/stringsvc/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
