// main is the entry point for the minigraph CLI.
package main

import (
	"github.com/huangsam/minigraph/cmd"
	"github.com/huangsam/minigraph/internal/contract"
)

func main() {
	defer cmd.Close()
	if err := cmd.Execute(); err != nil {
		cmd.Close()
		contract.LogFatal("Error starting CLI", err)
	}
}
