// Command chatdocs answers questions about a markdown documentation corpus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/chatdocs/internal/adapters/driving/cli"
	"github.com/custodia-labs/chatdocs/internal/app"
	"github.com/custodia-labs/chatdocs/internal/logger"
)

// version is set at build time.
var version = "dev"

var _ cli.Backend = (*app.Backend)(nil)

func main() {
	os.Exit(run())
}

func run() int {
	// A missing .env file is not an error; keys may come from the environment.
	_ = godotenv.Load()
	defer logger.Sync()

	backend, err := app.NewBackend(os.Getenv("CHATDOCS_HOME"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Warn("close: %v", err)
		}
	}()

	cli.SetBackend(backend)
	cli.SetVersion(version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.Execute(ctx); err != nil {
		return 1
	}
	return 0
}
