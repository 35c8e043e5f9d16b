package main

import (
	"os"

	"droidlink/internal/cli"
)

func main() {
	os.Exit(cli.Run("droidlink", os.Args[1:]))
}
