package main

import (
	"os"

	"github.com/iatro-health/iatro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
