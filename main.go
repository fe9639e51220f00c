package main

import (
	"os"

	"github.com/smartserve-ai/smartserve/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
