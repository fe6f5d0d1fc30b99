package main

import (
	"os"

	"github.com/lifeflow/bloodlink/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
