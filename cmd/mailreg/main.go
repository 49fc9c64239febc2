package main

import (
	"github.com/asad/mailreg/internal/cli"
)

// main is the entry point for the mailreg command.
// It delegates to the CLI package which handles command parsing and execution.
func main() {
	cli.Execute()
}
