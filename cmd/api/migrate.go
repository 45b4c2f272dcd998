package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "データベースマイグレーションを操作する",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "未適用のマイグレーションをすべて適用する",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			defer func() { _ = logger.Sync() }()

			db, err := postgres.NewConnection(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.RunMigrations(db.DB, cfg.Database.MigrationsPath); err != nil {
				return err
			}
			logger.Info("マイグレーション完了", zap.String("path", cfg.Database.MigrationsPath))
			return nil
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "マイグレーションを指定ステップ数だけ戻す",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			defer func() { _ = logger.Sync() }()

			db, err := postgres.NewConnection(&cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.RollbackMigrations(db.DB, cfg.Database.MigrationsPath, steps); err != nil {
				return err
			}
			logger.Info("ロールバック完了", zap.Int("steps", steps))
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "戻すマイグレーションの数")
	cmd.AddCommand(down)

	return cmd
}
