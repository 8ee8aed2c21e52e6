package main

import (
	"os"

	"github.com/ngenohkevin/hivedeck-monitor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
