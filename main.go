package main

import (
	"os"

	"github.com/mementolabs/memento-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
