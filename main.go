package main

import (
	"os"

	"github/itish2003/portfolio-rag/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
