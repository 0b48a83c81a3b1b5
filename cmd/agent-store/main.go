package main

import (
	"os"

	"github.com/mwhitby/agent-store/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
