package main

import (
	"github.com/spf13/cobra"

	"github.com/Leganyst/class-scheduler/internal/config"
	"github.com/Leganyst/class-scheduler/internal/db"
	"github.com/Leganyst/class-scheduler/internal/logging"
	"github.com/Leganyst/class-scheduler/internal/model"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and schedule constraints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log := logging.New(cfg.Log)

			gormDB, err := db.NewGormDB(&cfg.DB)
			if err != nil {
				return err
			}
			sqlDB, err := gormDB.DB()
			if err != nil {
				return err
			}
			defer sqlDB.Close()

			if err := model.AutoMigrate(gormDB); err != nil {
				return err
			}
			if err := model.EnsureScheduleConstraints(gormDB, cfg.DB.ExclusionConstraints); err != nil {
				return err
			}
			log.WithField("driver", cfg.DB.Driver).Info("migrations applied")
			return nil
		},
	}
}
