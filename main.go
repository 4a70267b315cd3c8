package main

import (
	"os"

	"hermannm.dev/vizquery/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
