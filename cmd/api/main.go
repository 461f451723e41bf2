package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"taskmanager/internal/config"
	pkgconfig "taskmanager/pkg/config"
	"taskmanager/pkg/logger"
)

func main() {
	cmd := &cli.Command{
		Name:           "taskmanager",
		Usage:          "Task manager REST API",
		DefaultCommand: "serve",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to the YAML config file (optional)",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: ".env",
				Usage: "Path to a .env file loaded into the environment (optional)",
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			dbcheckCmd(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads .env, the config file and the logger shared by all commands.
func bootstrap(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	if _, err := pkgconfig.LoadDotEnv(cmd.String("env-file")); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
