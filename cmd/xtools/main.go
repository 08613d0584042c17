package main

import (
	"os"

	"github.com/anatolykoptev/go-xtools/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
