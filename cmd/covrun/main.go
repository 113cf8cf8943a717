package main

import (
	"os"

	"covrun/cmd/covrun/commands"
)

func main() {
	os.Exit(commands.Execute())
}
