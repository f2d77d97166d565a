package main

import (
	"os"

	"github.com/linguaku/linguaku/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
