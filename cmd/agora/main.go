package main

import (
	"fmt"
	"os"

	"github.com/MrSnakeDoc/agora/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "agora: %v\n", err)
		os.Exit(1)
	}
}
