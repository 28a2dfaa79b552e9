package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/admin-dashboard-api/internal/config"
	"github.com/dimitrije/admin-dashboard-api/internal/database"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("seed-users", pflag.ContinueOnError)
	file := flags.StringP("file", "f", "seeds.yaml", "YAML file listing the accounts to provision")
	migrate := flags.Bool("migrate", true, "apply migrations before seeding")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	users, err := loadSeeds(*file)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *file, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *migrate {
		if err := db.Migrate(ctx); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	svc := services.NewUserService(db)
	for _, u := range users {
		user, err := svc.Upsert(ctx, u)
		if err != nil {
			log.Fatalf("Failed to seed %s: %v", u.Email, err)
		}
		fmt.Printf("%-30s %s\n", user.Email, user.Role)
	}
}
