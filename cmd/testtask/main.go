// Package main is the entry point for the testtask CLI.
package main

import (
	"os"

	"github.com/AndreyAkinshin/testtask/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
