package main

import (
	"os"

	"droidlink/internal/cli"
)

func main() {
	os.Exit(cli.Run("droidlinkctl", os.Args[1:]))
}
