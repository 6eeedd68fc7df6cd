package main

import (
	"os"

	"github.com/runwhen-contrib/ccblogger/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
