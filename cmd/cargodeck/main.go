package main

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/cargodeck/internal/cmd"
	"github.com/Iron-Ham/cargodeck/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		var exitErr *cmd.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
