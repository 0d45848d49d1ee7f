package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anoixa/photo-gallery/api/core"
	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/repo/accounts"
	"github.com/anoixa/photo-gallery/internal/app"
	"github.com/spf13/cobra"
)

const purgeInterval = time.Hour

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start API server",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	RunServer()
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer() {
	config.InitConfig()
	cfg := config.Get()

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	container := app.NewContainer(cfg)
	if err := container.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	InitDatabase(container)

	if err := container.InitInfrastructure(); err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	if err := container.InitServices(); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	server, cleanup := core.StartServer(container)
	go func() {
		log.Printf("Server started on %s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	purgeCtx, stopPurge := context.WithCancel(context.Background())
	go startExpiredPurge(purgeCtx, container)

	// 处理退出signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopPurge()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if cleanup != nil {
		cleanup()
		log.Println("Cleanup tasks finished.")
	}

	if err := container.Close(); err != nil {
		log.Printf("Error closing container: %v", err)
	}

	log.Println("Server exited successfully")
}

// InitDatabase 自动迁移并确保存在管理员账户
func InitDatabase(container *app.Container) {
	log.Printf("Initializing database, database type: %s", container.Database.Name())

	if err := database.AutoMigrate(container.DB()); err != nil {
		log.Fatalf("Failed to auto migrate database: %v", err)
	}

	cfg := container.Config()
	password, err := accounts.NewRepository(container.DB()).CreateDefaultAdminUser(cfg.AdminEmail, cfg.AdminUsername)
	if err != nil {
		log.Fatalf("Failed to create default admin: %v", err)
	}
	if password != "" {
		log.Printf("Default admin %s created, password: %s", cfg.AdminEmail, password)
	}

	log.Println("Database initialized successfully")
}

// startExpiredPurge 定期清理过期的加入请求与登录设备
func startExpiredPurge(ctx context.Context, container *app.Container) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := container.Sharing.PurgeExpired(ctx); err != nil {
				log.Printf("[Purge] join requests: %v", err)
			} else if n > 0 {
				log.Printf("[Purge] removed %d expired join requests", n)
			}
			if n, err := container.Login.PurgeExpiredDevices(ctx); err != nil {
				log.Printf("[Purge] devices: %v", err)
			} else if n > 0 {
				log.Printf("[Purge] removed %d expired devices", n)
			}
		}
	}
}
