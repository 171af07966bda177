package main

import (
	"os"

	"github.com/01moynul/storefront-golang/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
