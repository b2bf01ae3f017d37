package main

import (
	"os"

	"github.com/royalton/portal/cmd/portal/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
