package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/photo-gallery/cache"
	"github.com/anoixa/photo-gallery/config"
	"github.com/spf13/cobra"
)

// cacheCmd 缓存管理命令
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Cache management commands",
}

// cacheClearCmd 清除缓存命令
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop cached gallery listings and dashboard stats",
	Run: func(cmd *cobra.Command, args []string) {
		if err := runCacheClear(); err != nil {
			log.Fatalf("Cache clear failed: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

// runCacheClear 删除所有已知缓存键，下一次请求会回源数据库
func runCacheClear() error {
	config.InitConfig()

	provider, err := cache.NewProvider(config.Get())
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Printf("Cache provider: %s", provider.Name())
	for _, key := range cache.KnownKeys() {
		if err := provider.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
		log.Printf("Cleared %s", key)
	}
	return nil
}
