package main

import (
	"fmt"
	"os"

	"hostspin/pkg/commands"
)

func main() {
	c := commands.New(os.Args[1:], os.Stdout, os.Stderr)

	code, err := c.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}

	os.Exit(code)
}
