package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anoixa/photo-gallery/cache"
	"github.com/anoixa/photo-gallery/config"
	"github.com/anoixa/photo-gallery/database"
	"github.com/anoixa/photo-gallery/database/models"
	"github.com/anoixa/photo-gallery/internal/app"
	"github.com/anoixa/photo-gallery/internal/dashboard"
	"github.com/anoixa/photo-gallery/internal/mail"
	"github.com/anoixa/photo-gallery/internal/testutils"
	"github.com/anoixa/photo-gallery/storage"
	cryptopackage "github.com/anoixa/photo-gallery/utils/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status string          `json:"status"`
	Msg    string          `json:"msg"`
	Data   json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	db     *gorm.DB
	mailer *testutils.FakeMailer
}

func testConfig() *config.Config {
	return &config.Config{
		ServerHost:            "127.0.0.1",
		ServerPort:            8080,
		JWTSecret:             "0123456789abcdef0123456789abcdef",
		JWTAccessTTL:          30 * time.Minute,
		JWTRefreshTTL:         24 * time.Hour,
		RateLimitApiRPS:       1000,
		RateLimitApiBurst:     1000,
		RateLimitImageRPS:     1000,
		RateLimitImageBurst:   1000,
		RateLimitAuthRPS:      1000,
		RateLimitAuthBurst:    1000,
		RateLimitExpireTime:   time.Minute,
		UploadMaxFiles:        5,
		UploadMaxSizeMB:       5,
		UploadMaxBatchTotalMB: 10,
		UploadUserQuotaMB:     50,
		JoinRequestTTL:        time.Hour,
		OTPResendInterval:     4 * time.Minute,
		OTPMaxSends:           3,
		CachePublicGalleryTTL: time.Minute,
	}
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutils.SetupDB(t)
	cacheProvider, err := cache.NewMemoryCache(cache.MemoryConfig{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	storageProvider, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	renderer, err := mail.NewTemplateRenderer()
	require.NoError(t, err)
	mailer := &testutils.FakeMailer{}

	container := app.NewContainer(testConfig())
	container.Database = database.NewGormProvider(db)
	container.Cache = cacheProvider
	container.Storage = storageProvider
	container.Renderer = renderer
	container.Mailer = mailer
	require.NoError(t, container.InitServices())

	router, cleanup := setupRouter(container)
	t.Cleanup(cleanup)
	t.Cleanup(func() { _ = cacheProvider.Close() })

	return &testServer{t: t, router: router, db: db, mailer: mailer}
}

func (s *testServer) do(method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	return s.serve(req)
}

func (s *testServer) serve(req *http.Request) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

// createUser 直接写库，密码为 password123
func (s *testServer) createUser(email, role string, status models.UserStatus) *models.User {
	s.t.Helper()
	hash, err := cryptopackage.GenerateFromPassword("password123")
	require.NoError(s.t, err)
	user := &models.User{Email: email, Username: email, Password: hash, Role: role, Status: status}
	require.NoError(s.t, s.db.Create(user).Error)
	return user
}

func (s *testServer) login(identifier string) string {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": identifier, "password": "password123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var data struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &data))
	return data.AccessToken
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func TestHealthAndVersion(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w, env := s.do(http.MethodGet, "/version", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), config.Version)

	w, _ = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "request_count")
}

func TestUnauthenticatedAccess(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodGet, "/api/v1/galleries", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "error", env.Status)

	w, _ = s.do(http.MethodGet, "/api/v1/galleries", "Bearer nope", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodGet, "/api/public/galleries", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSignupFlow(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(http.MethodPost, "/api/auth/signup", "", gin.H{
		"email": "alice@example.com", "username": "alice", "name": "Alice", "password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	otpID := decode[map[string]string](t, env)["otp_id"]
	require.NotEmpty(t, otpID)
	require.Len(t, s.mailer.Sent(), 1)

	// 未验证邮箱不能登录
	w, _ = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/verify", "", gin.H{"otp_id": otpID, "email": "alice@example.com", "code": "XXXXXX"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, "/api/auth/resend", "", gin.H{"otp_id": otpID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodPost, "/api/auth/resend", "", gin.H{"otp_id": otpID, "email": "bob@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var otp models.OTP
	require.NoError(t, s.db.First(&otp, "id = ?", otpID).Error)
	w, _ = s.do(http.MethodPost, "/api/auth/verify", "", gin.H{"otp_id": otpID, "email": "alice@example.com", "code": otp.Code})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = s.do(http.MethodPost, "/api/auth/resend", "", gin.H{"otp_id": otpID, "email": "alice@example.com"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 待审核用户可以登录，但不能创建相册
	token := s.login("alice")
	w, _ = s.do(http.MethodPost, "/api/v1/galleries", token, gin.H{"title": "Trip", "description": "Summer"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/admin/users", token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	s.createUser("root@example.com", models.RoleAdmin, models.UserStatusVerified)
	adminToken := s.login("root@example.com")

	w, env = s.do(http.MethodGet, "/api/v1/admin/users?page=1&page_size=10", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"total":2`)

	var alice models.User
	require.NoError(t, s.db.First(&alice, "email = ?", "alice@example.com").Error)
	assert.Equal(t, models.UserStatusAdminPending, alice.Status)

	path := fmt.Sprintf("/api/v1/admin/users/%d/status", alice.ID)
	w, _ = s.do(http.MethodPut, path, adminToken, gin.H{"status": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = s.do(http.MethodPut, path, adminToken, gin.H{"status": 3})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/galleries", token, gin.H{"title": "Trip", "description": "Summer"})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.createUser("carol@example.com", models.RoleUser, models.UserStatusVerified)

	w, _ := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "carol@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 2)

	refresh := func(cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		w, _ := s.serve(req)
		return w
	}

	w = refresh(cookies)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	rotated := w.Result().Cookies()

	// 旧的刷新令牌已失效
	assert.Equal(t, http.StatusUnauthorized, refresh(cookies).Code)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	for _, c := range rotated {
		req.AddCookie(c)
	}
	w, _ = s.serve(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusUnauthorized, refresh(rotated).Code)

	w, _ = s.do(http.MethodPost, "/api/auth/refresh", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGallerySharingFlow(t *testing.T) {
	s := newTestServer(t)
	s.createUser("alice@example.com", models.RoleUser, models.UserStatusVerified)
	bob := s.createUser("bob@example.com", models.RoleUser, models.UserStatusVerified)
	s.createUser("eve@example.com", models.RoleUser, models.UserStatusVerified)

	alice := s.login("alice@example.com")
	bobToken := s.login("bob@example.com")
	eve := s.login("eve@example.com")

	w, env := s.do(http.MethodPost, "/api/v1/galleries", alice, gin.H{"title": "Trip", "description": "Summer", "is_public": true})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	gallery := decode[models.Gallery](t, env)
	base := "/api/v1/galleries/" + gallery.PublicID

	w, _ = s.do(http.MethodGet, base, bobToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// 仅所有者可以分享
	w, _ = s.do(http.MethodPost, base+"/share", bobToken, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPost, base+"/share", alice, gin.H{"email": "bob@example.com", "phone_number": "0791234567"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, base+"/share", alice, gin.H{"email": "bob@example.com", "phone_number": "+41791234567"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	code := decode[map[string]string](t, env)["code"]
	assert.Len(t, code, models.JoinCodeLength)
	assert.NotContains(t, string(env.Data), "token")

	w, _ = s.do(http.MethodPost, base+"/share", alice, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var request models.JoinRequest
	require.NoError(t, s.db.First(&request, "email = ?", "bob@example.com").Error)

	w, _ = s.do(http.MethodPost, "/api/v1/galleries/join", bobToken, gin.H{"token": request.Token, "code": "ZZZZZZ"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodPost, "/api/v1/galleries/join", bobToken, gin.H{"token": request.Token, "code": code, "phone_number": "+41791234567"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, string(env.Data), `"level":3`)

	w, _ = s.do(http.MethodPost, "/api/v1/galleries/join", bobToken, gin.H{"token": request.Token, "code": code})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, base, bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/v1/galleries", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Gallery](t, env), 1)

	// 通知
	w, env = s.do(http.MethodGet, "/api/v1/notifications?is_read=false", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	notes := decode[[]models.Notification](t, env)
	require.Len(t, notes, 1)

	w, _ = s.do(http.MethodGet, "/api/v1/notifications?is_read=maybe", bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", notes[0].ID), eve, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodPost, fmt.Sprintf("/api/v1/notifications/%d/read", notes[0].ID), bobToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// 成员管理
	w, env = s.do(http.MethodGet, base+"/accreditations", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, env), 2)

	w, _ = s.do(http.MethodPost, base+"/accreditations", alice, gin.H{"user_id": bob.ID, "level": models.LevelEditor})
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodPost, base+"/accreditations", alice, gin.H{"user_id": bob.ID, "level": 9})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 编辑者可以修改相册
	w, _ = s.do(http.MethodPut, base, bobToken, gin.H{"title": "Trip 2024", "is_published": true})
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/public/galleries", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	public := decode[[]models.Gallery](t, env)
	require.Len(t, public, 1)
	assert.Equal(t, "Trip 2024", public[0].Title)
}

func TestImagesAndTagsFlow(t *testing.T) {
	s := newTestServer(t)
	s.createUser("alice@example.com", models.RoleUser, models.UserStatusVerified)
	s.createUser("eve@example.com", models.RoleUser, models.UserStatusVerified)
	alice := s.login("alice@example.com")
	eve := s.login("eve@example.com")

	w, env := s.do(http.MethodPost, "/api/v1/galleries", alice, gin.H{"title": "Trip", "description": "Summer"})
	require.Equal(t, http.StatusCreated, w.Code)
	gallery := decode[models.Gallery](t, env)
	base := "/api/v1/galleries/" + gallery.PublicID

	png := testutils.PNG(t, 4, 3, 1)
	body, contentType := testutils.MultipartBody(t,
		testutils.UploadFile{Name: "a.png", Data: png},
		testutils.UploadFile{Name: "notes.txt", Data: []byte("plain text")},
	)
	req := httptest.NewRequest(http.MethodPost, base+"/images", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", alice)
	w, env = s.serve(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var results []struct {
		FileName string        `json:"file_name"`
		Image    *models.Image `json:"image"`
		Error    string        `json:"error"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &results))
	require.Len(t, results, 2)
	require.NotNil(t, results[0].Image)
	assert.NotEmpty(t, results[1].Error)
	img := results[0].Image

	// 读取原图
	w, _ = s.do(http.MethodGet, "/api/v1/images/"+img.Identifier, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, png, w.Body.Bytes())

	w, _ = s.do(http.MethodGet, "/api/v1/images/"+img.Identifier, eve, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/images/missing.png", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// 标签
	w, env = s.do(http.MethodPost, base+"/tags", alice, gin.H{"name": "beach"})
	require.Equal(t, http.StatusCreated, w.Code)
	tag := decode[models.Tag](t, env)

	w, _ = s.do(http.MethodPost, base+"/tags", alice, gin.H{"name": "user"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(http.MethodGet, base+"/tags", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.Tag](t, env), 2) // 含上传者的保留标签

	tagPath := fmt.Sprintf("%s/images/%d/tags", base, img.ID)
	w, env = s.do(http.MethodPut, tagPath, alice, gin.H{"tag_ids": []uint{tag.ID}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decode[[]models.Tag](t, env), 1)

	w, _ = s.do(http.MethodPut, tagPath, eve, gin.H{"tag_ids": []uint{tag.ID}})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(http.MethodPut, base+"/images/abc/tags", alice, gin.H{"tag_ids": []uint{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 删除
	w, _ = s.do(http.MethodDelete, fmt.Sprintf("%s/images/%d", base, img.ID), alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/api/v1/images/"+img.Identifier, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProfileRoutes(t *testing.T) {
	s := newTestServer(t)
	s.createUser("dan@example.com", models.RoleUser, models.UserStatusVerified)
	token := s.login("dan@example.com")

	w, env := s.do(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, string(env.Data), "password")

	w, env = s.do(http.MethodPut, "/api/v1/me", token, gin.H{"name": "Dan", "phone_number": "+41791234567"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode[models.User](t, env)
	assert.Equal(t, "Dan", user.Name)
	require.NotNil(t, user.PhoneNumber)

	w, _ = s.do(http.MethodPut, "/api/v1/me", token, gin.H{"phone_number": "0791234567"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminStats(t *testing.T) {
	s := newTestServer(t)
	s.createUser("root@example.com", models.RoleAdmin, models.UserStatusVerified)
	s.createUser("member@example.com", models.RoleUser, models.UserStatusVerified)
	s.createUser("waiting@example.com", models.RoleUser, models.UserStatusAdminPending)

	member := s.login("member@example.com")
	w, _ := s.do(http.MethodGet, "/api/v1/admin/stats", member, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin := s.login("root@example.com")
	w, env := s.do(http.MethodGet, "/api/v1/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	stats := decode[dashboard.StatsResponse](t, env)
	assert.Equal(t, int64(3), stats.Overview.Users.Total)
	assert.Equal(t, int64(1), stats.Overview.Users.Pending)
	assert.Len(t, stats.Trend.Dates, 30)

	w, _ = s.do(http.MethodPost, "/api/v1/admin/stats/refresh", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
