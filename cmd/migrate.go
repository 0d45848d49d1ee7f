package cmd

import (
	"log"

	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/internal/app"
	"github.com/spf13/cobra"
)

// migrateCmd 只执行表结构迁移
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	Long: `Create or update all tables and ensure a default admin account exists.

Examples:
  photo-gallery migrate
  DB_TYPE=postgres DB_HOST=db photo-gallery migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()

		container := app.NewContainer(config.Get())
		if err := container.InitDatabase(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer container.Close()

		InitDatabase(container)
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
