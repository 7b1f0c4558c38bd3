package main

import (
	"os"

	"github.com/dshills/guard/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
