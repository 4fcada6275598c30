package main

import (
	"os"

	"github.com/msto63/nic/cmd/nic/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
