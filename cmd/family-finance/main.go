package main

import (
	"context"
	"os"

	"family-finance-go/internal/cli"
	"family-finance-go/pkg/logger"
)

func main() {
	log := logger.NewFromEnv()

	if err := cli.NewRootCommand(log).ExecuteContext(context.Background()); err != nil {
		log.Critical("app: exited with error", "err", err)
		os.Exit(1)
	}
}
