package main

import (
	"os"

	"github.com/guidepro/guidepro/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
