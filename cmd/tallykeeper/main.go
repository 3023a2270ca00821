package main

import (
	"os"

	"github.com/solatis/tallykeeper/cmd/tallykeeper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
