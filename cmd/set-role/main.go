package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/dimitrije/admin-dashboard-api/internal/config"
	"github.com/dimitrije/admin-dashboard-api/internal/database"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/spf13/pflag"
)

func main() {
	flags := pflag.NewFlagSet("set-role", pflag.ContinueOnError)
	role := flags.StringP("role", "r", string(models.RoleSuperAdmin), "role to assign (superadmin, admin, employee)")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: set-role [--role ROLE] <email>")
		flags.PrintDefaults()
	}

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}
	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(2)
	}
	email := flags.Arg(0)

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

	user, err := services.NewUserService(db).SetRoleByEmail(ctx, email, models.Role(*role))
	switch {
	case errors.Is(err, services.ErrInvalidRole):
		log.Fatalf("Unknown role: %s", *role)
	case errors.Is(err, services.ErrNotFound):
		log.Fatalf("No user found with email: %s", email)
	case err != nil:
		log.Fatalf("Failed to update user: %v", err)
	}

	fmt.Printf("Successfully set %s to %s\n", user.Email, user.Role)
}
