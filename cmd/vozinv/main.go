package main

import (
	"os"

	"github.com/vozinv/vozinv/cmd/vozinv/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
