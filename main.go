package main

import (
	"os"

	"github.com/modlens/modlens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
