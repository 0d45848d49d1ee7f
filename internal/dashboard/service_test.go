package dashboard

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/anoixa/photo-gallery/cache"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockCache 模拟缓存
type mockCache struct {
	data map[string][]byte
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (m *mockCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) error {
	b, ok := m.data[key]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(b, dest)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := m.data[key]
	return ok, nil
}

func (m *mockCache) Close() error { return nil }

func (m *mockCache) Name() string { return "mock" }

func TestGetStats(t *testing.T) {
	db := testutils.SetupDB(t)
	ctx := context.Background()

	owner := testutils.CreateUser(t, db, "owner@example.com")
	testutils.CreateUser(t, db, "pending@example.com", testutils.WithStatus(models.UserStatusAdminPending))

	gallery := testutils.CreateGallery(t, db, owner, "Trip")
	public := testutils.CreateGallery(t, db, owner, "Public")
	require.NoError(t, db.Model(public).Updates(map[string]interface{}{"is_public": true, "is_published": true}).Error)

	testutils.CreateImage(t, db, owner, gallery)
	testutils.CreateImage(t, db, owner, public)

	mc := newMockCache()
	svc := NewService(db, mc)

	stats, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Overview.Images.Total)
	assert.Equal(t, int64(2), stats.Overview.Galleries.Total)
	assert.Equal(t, int64(1), stats.Overview.Galleries.Public)
	assert.Equal(t, int64(2), stats.Overview.Users.Total)
	assert.Equal(t, int64(1), stats.Overview.Users.Pending)
	assert.Equal(t, int64(2), stats.Overview.Storage.TotalSize)
	assert.Equal(t, "2 B", stats.Overview.Storage.TotalSizeHuman)

	require.Len(t, stats.Trend.Data, trendDays)
	assert.Equal(t, "30d", stats.Trend.Period)
	assert.Equal(t, int64(2), stats.Trend.Data[trendDays-1])

	// 命中缓存时不再反映新数据
	testutils.CreateImage(t, db, owner, gallery)
	cached, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.Overview.Images.Total)

	require.NoError(t, svc.RefreshCache(ctx))
	fresh, err := svc.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh.Overview.Images.Total)
}

func TestGetStatsWithoutCache(t *testing.T) {
	db := testutils.SetupDB(t)
	svc := NewService(db, nil)

	stats, err := svc.GetStats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Overview.Images.Total)
	assert.NoError(t, svc.RefreshCache(context.Background()))
}

func TestBuildTrend(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	uploads := []time.Time{
		now.Add(-time.Hour),
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -1),
		now.AddDate(0, 0, -10),
	}

	trend := buildTrend(uploads, now, 7)
	assert.Equal(t, "7d", trend.Period)
	assert.Equal(t, []string{"2024-03-04", "2024-03-05", "2024-03-06", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10"}, trend.Dates)
	assert.Equal(t, []int64{0, 0, 0, 0, 0, 2, 1}, trend.Data)
}

func TestHumanSize(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1 << 20, "1.00 MB"},
		{1 << 30, "1.00 GB"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, humanSize(tt.bytes))
	}
}
