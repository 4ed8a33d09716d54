package main

import (
	"os"

	"github.com/nlxtools/trainconf/internal/cli"
)

var version = "0.0.0-dev"

func main() {
	os.Exit(cli.Execute(version, os.Args[1:]))
}
