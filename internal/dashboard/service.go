// Package dashboard 管理后台统计
package dashboard

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/anoixa/photo-gallery/cache"
	"github.com/anoixa/photo-gallery/database/repo/dashboard"
	"github.com/anoixa/photo-gallery/internal/apperr"
	"gorm.io/gorm"
)

const (
	trendDays   = 30
	dateLayout  = "2006-01-02"
	defaultTTL  = 5 * time.Minute
	sizeUnitLen = 1024
)

// StatsResponse Dashboard 统计响应
type StatsResponse struct {
	Overview OverviewStats `json:"overview"`
	Trend    TrendStats    `json:"trend"`
}

// OverviewStats 概览统计
type OverviewStats struct {
	Images    CountStats   `json:"images"`
	Galleries GalleryStats `json:"galleries"`
	Users     UserStats    `json:"users"`
	Storage   StorageStats `json:"storage"`
}

// CountStats 数量统计
type CountStats struct {
	Total int64 `json:"total"`
}

// GalleryStats 相册统计
type GalleryStats struct {
	Total  int64 `json:"total"`
	Public int64 `json:"public"`
}

// UserStats 用户统计，Pending 为等待审核的账户
type UserStats struct {
	Total   int64 `json:"total"`
	Pending int64 `json:"pending"`
}

// StorageStats 存储统计
type StorageStats struct {
	TotalSize      int64  `json:"total_size"`
	TotalSizeHuman string `json:"total_size_human"`
}

// TrendStats 每日上传趋势
type TrendStats struct {
	Period string   `json:"period"`
	Dates  []string `json:"dates"`
	Data   []int64  `json:"data"`
}

// Service Dashboard 统计服务
type Service struct {
	db       *gorm.DB
	cache    cache.Provider
	cacheTTL time.Duration
	now      func() time.Time
}

// NewService 创建新的 Dashboard 统计服务，cacheProvider 可为 nil
func NewService(db *gorm.DB, cacheProvider cache.Provider) *Service {
	return &Service{db: db, cache: cacheProvider, cacheTTL: defaultTTL, now: time.Now}
}

// GetStats 获取统计数据，优先读缓存
func (s *Service) GetStats(ctx context.Context) (*StatsResponse, error) {
	if s.cache != nil {
		var cached StatsResponse
		if err := s.cache.Get(ctx, cache.DashboardStatsKey, &cached); err == nil {
			return &cached, nil
		}
	}

	repo := dashboard.NewRepository(s.db.WithContext(ctx))
	overview, err := repo.GetOverviewStats()
	if err != nil {
		return nil, apperr.Internal("failed to load statistics", err)
	}

	now := s.now()
	since := startOfDay(now).AddDate(0, 0, -(trendDays - 1))
	uploads, err := repo.UploadTimes(since)
	if err != nil {
		return nil, apperr.Internal("failed to load upload trend", err)
	}

	response := &StatsResponse{
		Overview: OverviewStats{
			Images:    CountStats{Total: overview.ImageTotal},
			Galleries: GalleryStats{Total: overview.GalleryTotal, Public: overview.PublicGalleries},
			Users:     UserStats{Total: overview.UserTotal, Pending: overview.PendingUsers},
			Storage: StorageStats{
				TotalSize:      overview.StorageTotal,
				TotalSizeHuman: humanSize(overview.StorageTotal),
			},
		},
		Trend: buildTrend(uploads, now, trendDays),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.DashboardStatsKey, response, cache.WithJitter(s.cacheTTL)); err != nil {
			log.Printf("[Dashboard] failed to cache stats: %v", err)
		}
	}
	return response, nil
}

// RefreshCache 丢弃缓存的统计数据
func (s *Service) RefreshCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, cache.DashboardStatsKey)
}

// buildTrend 按本地日期聚合，没有上传的日期补 0
func buildTrend(uploads []time.Time, now time.Time, days int) TrendStats {
	dates := make([]string, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		d := now.AddDate(0, 0, -(days - 1 - i)).Format(dateLayout)
		dates[i] = d
		index[d] = i
	}

	data := make([]int64, days)
	for _, t := range uploads {
		if i, ok := index[t.In(now.Location()).Format(dateLayout)]; ok {
			data[i]++
		}
	}

	return TrendStats{Period: fmt.Sprintf("%dd", days), Dates: dates, Data: data}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// humanSize 字节数转可读格式
func humanSize(bytes int64) string {
	if bytes < sizeUnitLen {
		return fmt.Sprintf("%d B", bytes)
	}
	value, exp := float64(bytes), 0
	for value >= sizeUnitLen && exp < len(sizeUnits)-1 {
		value /= sizeUnitLen
		exp++
	}
	return fmt.Sprintf("%.2f %s", value, sizeUnits[exp])
}
