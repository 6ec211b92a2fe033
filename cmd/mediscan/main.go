package main

import (
	"context"
	"os"

	"github.com/yildizm/mediscan/internal/cli"
	"github.com/yildizm/mediscan/internal/logger"
)

// Build variables set by ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cmd := cli.NewRootCommand(version, commit, date)
	err := cmd.ExecuteContext(context.Background())
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
