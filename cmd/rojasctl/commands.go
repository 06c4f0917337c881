package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"rojasfit_backend/internals/configs"
	database "rojasfit_backend/internals/databases"
	"rojasfit_backend/internals/features/finance/payments/scheduler"
	userRepo "rojasfit_backend/internals/features/users/users/repository"
	authMiddleware "rojasfit_backend/internals/middlewares/auth"
	routes "rojasfit_backend/internals/route"
	"rojasfit_backend/internals/seeds"
	seedUsers "rojasfit_backend/internals/seeds/users"
)

// openDB loads .env and connects; the caller closes the handle.
func openDB() (*gorm.DB, configs.Config, error) {
	configs.LoadEnv()
	cfg := configs.Load()
	db, err := database.Connect(cfg.DB)
	if err != nil {
		return nil, cfg, err
	}
	return db, cfg, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			if err := database.AutoMigrate(db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load demo users and courses from the JSON fixtures",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)
			return seeds.RunAllSeeds(cmd.Context(), db, dir)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "internals/seeds", "fixtures directory")
	return cmd
}

func seedAdminCmd() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "seed-admin [email]",
		Short: "Create an admin account, or promote an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			u, err := seedUsers.SeedAdmin(cmd.Context(), db, args[0], name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin id=%d email=%s\n", u.UserID, u.UserEmail)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name for a new account")
	return cmd
}

func reconcileCmd() *cobra.Command {
	var batch int
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-apply missing course grants for confirmed payments once",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			infra := routes.OpenInfra(cmd.Context(), cfg)
			defer infra.Close()
			deps := routes.NewDeps(db, cfg, infra)

			job := &scheduler.ReconcileJob{Service: deps.Finance.Payments, Batch: batch}
			rep, err := job.Run(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "claims=%d granted=%d errors=%d\n", rep.Claims, rep.Granted, rep.Errors)
			return nil
		},
	}
	cmd.Flags().IntVar(&batch, "batch", 500, "maximum claims to scan")
	return cmd
}

func tokenCmd() *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token [email]",
		Short: "Mint an access token for an existing user (development only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, cfg, err := openDB()
			if err != nil {
				return err
			}
			defer database.Close(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			u, err := userRepo.NewUserRepository(db).FindByEmail(ctx, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			tok, err := authMiddleware.IssueToken(cfg.JWTSecret, u, ttl, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
