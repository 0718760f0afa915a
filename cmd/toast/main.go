package main

import (
	"os"

	"github.com/ariel-frischer/toastkit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
