package main

import (
	"os"

	"github.com/enerflow/gridbalance/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
