package main

import (
	"os"

	"github.com/rustyeddy/signalbot/cmd/signalbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
