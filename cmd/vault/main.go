package main

import (
	"os"

	"github.com/rustyeddy/agentvault/cmd/vault/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
