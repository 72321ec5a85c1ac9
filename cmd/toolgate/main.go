package main

import (
	"os"

	"github.com/MEKXH/toolgate/cmd/toolgate/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
