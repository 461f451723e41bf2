package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"taskmanager/pkg/db"
)

func dbcheckCmd() *cli.Command {
	return &cli.Command{
		Name:  "dbcheck",
		Usage: "Connect to the database, run SELECT 1 + 1 and exit",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 5 * time.Second,
				Usage: "Overall time allowed for connecting and querying",
			},
		},
		Action: runDBCheck,
	}
}

func runDBCheck(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := bootstrap(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
	defer cancel()

	pool, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		return fmt.Errorf("DB connection failed: %w", err)
	}
	defer pool.Close()

	var result int
	if err := pool.QueryRow(ctx, "SELECT 1 + 1 AS result").Scan(&result); err != nil {
		return fmt.Errorf("DB query failed: %w", err)
	}

	log.Info("DB check passed", zap.String("db_host", cfg.DB.Host), zap.Int("result", result))
	fmt.Printf("DB connection OK, SELECT 1 + 1 = %d\n", result)
	return nil
}
