package main

import (
	"os"

	"github.com/amchen/gitfolio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
