package main

import (
	"fmt"
	"os"

	"github.com/spec-kit/inventory-service/cmd/inventoryctl/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
