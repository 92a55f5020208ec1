package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/harborline/shipline-backend/internal/seed"
	"github.com/harborline/shipline-backend/pkg/config"
	"github.com/harborline/shipline-backend/pkg/db"
	"github.com/harborline/shipline-backend/pkg/logger"
	"github.com/harborline/shipline-backend/pkg/migrate"
)

func main() {
	reset := flag.Bool("reset", false, "delete existing users and vessels before seeding")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":   cfg.App.Env,
		"reset": *reset,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to prepare schema", err)
		os.Exit(1)
	}

	res, err := seed.Run(ctx, dbClient.DB(), seed.Options{Reset: *reset, Password: cfg.Password})
	if err != nil {
		logg.Error(ctx, "seeding failed", err)
		dbClient.Close()
		os.Exit(1)
	}
	logg.Info(logg.WithFields(ctx, map[string]any{
		"users_created":   res.Users,
		"vessels_created": res.Vessels,
		"users_total":     res.TotalUsers,
		"vessels_total":   res.TotalVessels,
	}), "seed.completed")

	fmt.Println("Sample logins:")
	for _, acct := range seed.Accounts {
		fmt.Printf("  %-10s %-18s (%s)\n", acct.Identity, acct.Password, acct.Role)
	}
}
