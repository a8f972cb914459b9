// Command todo manages a todo list from the terminal and serves it over HTTP.
package main

import (
	"context"
	"os"

	"github.com/roach88/todokit/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
