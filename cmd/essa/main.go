// main holds the entry logic for the essa CLI.
package main

import (
	"os"

	"github.com/essalab/essa/cmd"
	"github.com/essalab/essa/internal/contract"
	"github.com/essalab/essa/internal/scanstore"
)

func main() {
	code := 0
	if err := cmd.Execute(); err != nil {
		contract.LogWarn("command failed", err)
		code = 1
	}
	scanstore.CloseStore()
	os.Exit(code)
}
