package main

import (
	"os"

	"github.com/pekman/yle-subtitle-dl/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
