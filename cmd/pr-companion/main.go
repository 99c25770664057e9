package main

import (
	"os"

	"github.com/emataei/pr-companion/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
