package main

import (
	"os"

	"dwqueries/cli"
)

func main() {
	os.Exit(cli.Execute())
}
