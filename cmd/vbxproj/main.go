package main

import (
	"os"

	"github.com/vbxproj/vbxproj/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
