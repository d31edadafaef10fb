package main

import (
	"os"

	"github.com/keepsake-labs/chronoline/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
