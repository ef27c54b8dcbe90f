package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ttani03/inetnums/internal/config"
	"github.com/ttani03/inetnums/internal/database"
	"github.com/ttani03/inetnums/internal/logging"
	"github.com/ttani03/inetnums/internal/query"
	"github.com/ttani03/inetnums/internal/ripe"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 on success or -h, 2 for usage errors,
// 1 for anything else.
func run(argv []string, stdout, stderr io.Writer) int {
	env, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "inetnums: %v\n", err)
		return 1
	}

	args, err := config.ParseArgs(argv, env.DatabaseURL, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		// ParseArgs has already reported the problem with the usage text.
		return 2
	}

	logger, closer, err := logging.New(env.LogLevel, env.LogFile)
	if err != nil {
		fmt.Fprintf(stderr, "inetnums: %v\n", err)
		return 1
	}
	defer closer.Close()

	client, err := ripe.NewClient(env.ClientOptions())
	if err != nil {
		logger.Error("unable to create registry client", "err", err)
		return 1
	}

	ctx := context.Background()

	var store query.Store
	if args.Store {
		if err := database.Connect(ctx, env.DatabaseURL); err != nil {
			logger.Error("failed to connect to database", "err", err)
			return 1
		}
		defer database.Close()
		if err := database.Migrate(ctx); err != nil {
			logger.Error("failed to migrate database", "err", err)
			return 1
		}
		store = database.Store{}
	}

	driver := query.NewDriver(client, store, stdout, logger, query.Options{
		Families:  args.Families,
		Selection: args.Selection,
		CIDR:      args.CIDR,
		HTML:      args.Format == config.FormatHTML,
	})
	if err := driver.Run(ctx, args.Orgs); err != nil {
		logger.Error("query failed", "err", err)
		return 1
	}
	return 0
}
