package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/internal/admin"
	"github.com/anoixa/photo-gallery/internal/app"
	"github.com/spf13/cobra"
)

// adminCmd 管理员账户工具
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Administrator account tools",
}

var adminPromoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing user",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		config.InitConfig()

		container := app.NewContainer(config.Get())
		if err := container.InitDatabase(); err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer container.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := admin.NewService(container.DB()).Promote(ctx, args[0])
		if err != nil {
			log.Fatalf("Promote failed: %v", err)
		}
		fmt.Printf("User %s (%s) is now an admin\n", user.Username, user.Email)
	},
}

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminPromoteCmd)
}
