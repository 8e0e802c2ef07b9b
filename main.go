package main

import (
	"fmt"
	"os"

	"github.com/Mohsinsiddi/tokenctl/cmd"
	"github.com/Mohsinsiddi/tokenctl/internal/config"
	"github.com/Mohsinsiddi/tokenctl/internal/ui"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Warn("ignoring .env: "+err.Error()))
	}
	cmd.Execute()
}
