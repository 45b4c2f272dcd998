package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sanosuguru/go-restaurant-table-reservation/internal/config"
	"github.com/sanosuguru/go-restaurant-table-reservation/internal/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "restaurant-reservation",
		Short:         "レストランのテーブル予約API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())

	return root
}

// loadConfig は .env（存在すれば）を読み込んでから設定を構築し、ロガーを初期化する
func loadConfig() *config.Config {
	// .env がなくても環境変数だけで動作する
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Init(cfg.Env)
	return cfg
}
