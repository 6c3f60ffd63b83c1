package main

import (
	"os"

	"github.com/fileops/attnmon/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
