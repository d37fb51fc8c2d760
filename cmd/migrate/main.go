package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fitalumni/alumni/internal/app/migrations"
	"github.com/fitalumni/alumni/internal/config"
	"github.com/fitalumni/alumni/internal/db"
	"github.com/fitalumni/alumni/internal/pkg/logger"
)

const usage = `Usage: migrate [-config path] <command>

Commands:
  up       apply all pending migrations
  down     roll back the most recent migration
  status   print the state of every migration
  version  print the current schema version
`

func main() {
	configPath := flag.String("config", config.GetEnv("CONFIG_PATH", "configs/config.yaml"), "path to the config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	command := flag.Arg(0)
	if command == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), *configPath, command); err != nil {
		logger.Error().Err(err).Str("command", command).Msg("Migration command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, command string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	logger.Configure(logger.Config{Level: logger.ParseLevel(cfg.Logging.Level), Pretty: true})

	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	migrator, err := migrations.NewMigrator(database.Pool, logger.Component("migrations"))
	if err != nil {
		return err
	}
	defer migrator.Close()

	switch command {
	case "up":
		return migrator.Up(ctx)
	case "down":
		return migrator.Down(ctx)
	case "status":
		return migrator.Status(ctx)
	case "version":
		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Println(version)
		return nil
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", command)
	}
}
