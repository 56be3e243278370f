package main

import (
	"context"
	"fmt"

	"tutelliv/internal/db"
	"tutelliv/internal/seed"
	"tutelliv/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with demo accounts and data",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := requireDatabase(cfg); err != nil {
			return err
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		userRepo := store.NewUserRepository(pool)
		beneficiaryRepo := store.NewBeneficiaryRepository(pool)
		missionRepo := store.NewMissionRepository(pool)
		invoiceRepo := store.NewInvoiceRepository(pool)

		logrus.Info("Seeding demo users...")
		if err := seed.SeedDemoUsers(ctx, userRepo); err != nil {
			return fmt.Errorf("failed to seed users: %w", err)
		}

		logrus.Info("Seeding demo beneficiaries...")
		if err := seed.SeedDemoBeneficiaries(ctx, beneficiaryRepo, missionRepo, invoiceRepo); err != nil {
			return fmt.Errorf("failed to seed beneficiaries: %w", err)
		}

		logrus.Info("Seed complete")

		return nil
	},
}
