package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	appbook "github.com/xiebiao/bookreview/internal/application/book"
	appreview "github.com/xiebiao/bookreview/internal/application/review"
	appuser "github.com/xiebiao/bookreview/internal/application/user"
	"github.com/xiebiao/bookreview/internal/domain/book"
	"github.com/xiebiao/bookreview/internal/domain/review"
	"github.com/xiebiao/bookreview/internal/domain/user"
	"github.com/xiebiao/bookreview/internal/infrastructure/config"
	"github.com/xiebiao/bookreview/internal/infrastructure/persistence/database"
	"github.com/xiebiao/bookreview/internal/interface/http/handler"
	"github.com/xiebiao/bookreview/internal/interface/http/middleware"
	"github.com/xiebiao/bookreview/pkg/jwt"
)

// memoryBlacklist 内存黑名单,替代Redis
type memoryBlacklist struct {
	mu  sync.Mutex
	ids map[string]time.Duration
}

func (b *memoryBlacklist) Add(_ context.Context, tokenID string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ttl > 0 {
		b.ids[tokenID] = ttl
	}
	return nil
}

func (b *memoryBlacklist) IsBlacklisted(_ context.Context, tokenID string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ids[tokenID]
	return ok, nil
}

// newTestRouter 使用sqlite和真实仓储组装完整路由(不依赖Redis和RabbitMQ)
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "bookreview-test", Mode: gin.TestMode, AllowOrigins: []string{"*"}},
		Database: config.DatabaseConfig{
			Driver:       config.DriverSQLite,
			DBName:       filepath.Join(t.TempDir(), "router_test.db"),
			MaxOpenConns: 1,
			MaxIdleConns: 1,
			AutoMigrate:  true,
		},
	}
	log := zap.NewNop()

	db, err := database.NewDB(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	blacklist := &memoryBlacklist{ids: map[string]time.Duration{}}
	jwtManager := jwt.NewManager("router-test-secret", time.Hour)

	userRepo := database.NewUserRepository(db)
	userService := user.NewServiceWithCost(userRepo, bcrypt.MinCost)
	bookRepo := database.NewBookRepository(db)
	bookService := book.NewService(bookRepo, nil)
	reviewService := review.NewService(database.NewReviewRepository(db), bookRepo, database.NewTxManager(db))
	publisher := review.NopPublisher{}

	userHandler := handler.NewUserHandler(
		appuser.NewRegisterUseCase(userService),
		appuser.NewLoginUseCase(userService, jwtManager),
		appuser.NewLogoutUseCase(blacklist, jwtManager),
	)
	bookHandler := handler.NewBookHandler(
		appbook.NewAddBookUseCase(bookService),
		appbook.NewListBooksUseCase(bookService, reviewService),
		appbook.NewSearchBooksUseCase(bookService, reviewService),
		appbook.NewGetBookDetailUseCase(bookService, reviewService),
	)
	reviewHandler := handler.NewReviewHandler(
		appreview.NewAddReviewUseCase(reviewService, userRepo, bookService, publisher),
		appreview.NewUpdateReviewUseCase(reviewService, userRepo, bookService, publisher),
		appreview.NewDeleteReviewUseCase(reviewService, publisher),
	)

	return NewRouter(cfg, log, userHandler, bookHandler, reviewHandler,
		middleware.NewAuthMiddleware(jwtManager, blacklist))
}

type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Code       int             `json:"code"`
	Data       json.RawMessage `json:"data"`
	Pagination *struct {
		Total      int64 `json:"total"`
		Page       int   `json:"page"`
		PageSize   int   `json:"page_size"`
		TotalPages int   `json:"total_pages"`
	} `json:"pagination"`
}

func doRequest(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") != "" {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w.Code, env
}

// signup 注册并登录,返回Token
func signup(t *testing.T, r *gin.Engine, email, name string) string {
	t.Helper()

	code, env := doRequest(t, r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": email, "password": "passw0rd1", "name": name,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	code, env = doRequest(t, r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": email, "password": "passw0rd1",
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	var login struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.AccessToken)
	return login.AccessToken
}

func addBook(t *testing.T, r *gin.Engine, token, title, author, genre string) uint {
	t.Helper()

	code, env := doRequest(t, r, http.MethodPost, "/api/v1/books", token, gin.H{
		"title": title, "author": author, "genre": genre,
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var item struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &item))
	return item.ID
}

func addReview(t *testing.T, r *gin.Engine, token string, bookID uint, rating int, comment string) (int, envelope) {
	t.Helper()
	return doRequest(t, r, http.MethodPost, fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, gin.H{
		"rating": rating, "comment": comment,
	})
}

type detailData struct {
	Book struct {
		ID            uint            `json:"id"`
		AverageRating json.RawMessage `json:"average_rating"`
		TotalReviews  int64           `json:"total_reviews"`
	} `json:"book"`
	Reviews []struct {
		ID       uint   `json:"id"`
		UserName string `json:"user_name"`
		Rating   int    `json:"rating"`
		Comment  string `json:"comment"`
	} `json:"reviews"`
}

// reviewData 发表/修改评论的响应
type reviewData struct {
	ID           uint   `json:"id"`
	BookTitle    string `json:"book_title"`
	ReviewerName string `json:"reviewer_name"`
	Rating       int    `json:"rating"`
}

func getDetail(t *testing.T, r *gin.Engine, path string) (int, envelope, detailData) {
	t.Helper()
	code, env := doRequest(t, r, http.MethodGet, path, "", nil)
	var data detailData
	if code == http.StatusOK {
		require.NoError(t, json.Unmarshal(env.Data, &data))
	}
	return code, env, data
}

func TestRouter_Ping(t *testing.T) {
	r := newTestRouter(t)

	code, env := doRequest(t, r, http.MethodGet, "/ping", "", nil)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestRouter_ReviewLifecycle(t *testing.T) {
	r := newTestRouter(t)
	alice := signup(t, r, "alice@example.com", "Alice")
	bob := signup(t, r, "bob@example.com", "Bob")
	carol := signup(t, r, "carol@example.com", "Carol")
	bookID := addBook(t, r, alice, "Dune", "Frank Herbert", "Science Fiction")

	// 三条评论:4、5、3 → 平均4.0
	for _, tc := range []struct {
		token  string
		rating int
		name   string
	}{{alice, 4, "Alice"}, {bob, 5, "Bob"}, {carol, 3, "Carol"}} {
		code, env := addReview(t, r, tc.token, bookID, tc.rating, "review")
		require.Equal(t, http.StatusCreated, code, env.Message)

		var created reviewData
		require.NoError(t, json.Unmarshal(env.Data, &created))
		assert.Equal(t, tc.name, created.ReviewerName)
		assert.Equal(t, "Dune", created.BookTitle)
	}

	code, _, detail := getDetail(t, r, fmt.Sprintf("/api/v1/books/%d", bookID))
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "4.0", string(detail.Book.AverageRating))
	assert.Equal(t, int64(3), detail.Book.TotalReviews)
	require.Len(t, detail.Reviews, 3)
	assert.Equal(t, "Carol", detail.Reviews[0].UserName, "最新的评论排在最前")

	// 重复评论 → 409,原评论不变
	code, env := addReview(t, r, alice, bookID, 1, "again")
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 40902, env.Code)

	// Alice修改自己的评论:4 → 1,平均变为3.0,并排到最前
	aliceReviewID := detail.Reviews[2].ID
	code, env = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/reviews/%d", aliceReviewID), alice, gin.H{
		"rating": 1, "comment": "changed my mind",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var updated reviewData
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "Alice", updated.ReviewerName)
	assert.Equal(t, "Dune", updated.BookTitle)
	assert.Equal(t, 1, updated.Rating)

	_, _, detail = getDetail(t, r, fmt.Sprintf("/api/v1/books/%d", bookID))
	assert.Equal(t, "3.0", string(detail.Book.AverageRating))
	assert.Equal(t, "changed my mind", detail.Reviews[0].Comment)

	// Bob不能修改或删除Alice的评论
	code, _ = doRequest(t, r, http.MethodPut, fmt.Sprintf("/api/v1/reviews/%d", aliceReviewID), bob, gin.H{
		"rating": 5, "comment": "hijack",
	})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", aliceReviewID), bob, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// Alice删除后:5、3 → 4.0,且可以重新评论
	code, _ = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", aliceReviewID), alice, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = doRequest(t, r, http.MethodDelete, fmt.Sprintf("/api/v1/reviews/%d", aliceReviewID), alice, nil)
	assert.Equal(t, http.StatusNotFound, code)

	_, _, detail = getDetail(t, r, fmt.Sprintf("/api/v1/books/%d", bookID))
	assert.Equal(t, "4.0", string(detail.Book.AverageRating))
	assert.Equal(t, int64(2), detail.Book.TotalReviews)

	code, _ = addReview(t, r, alice, bookID, 2, "second thoughts")
	assert.Equal(t, http.StatusCreated, code)
}

func TestRouter_AddReview_Validation(t *testing.T) {
	r := newTestRouter(t)
	token := signup(t, r, "alice@example.com", "Alice")
	bookID := addBook(t, r, token, "Dune", "Frank Herbert", "Science Fiction")

	tests := []struct {
		name   string
		path   string
		token  string
		body   interface{}
		status int
	}{
		{"未登录", fmt.Sprintf("/api/v1/books/%d/reviews", bookID), "", gin.H{"rating": 5, "comment": "x"}, http.StatusUnauthorized},
		{"评分为0", fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, gin.H{"rating": 0, "comment": "x"}, http.StatusBadRequest},
		{"评分为6", fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, gin.H{"rating": 6, "comment": "x"}, http.StatusBadRequest},
		{"评分为小数", fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, gin.H{"rating": 4.5, "comment": "x"}, http.StatusBadRequest},
		{"评分为字符串", fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, gin.H{"rating": "5", "comment": "x"}, http.StatusBadRequest},
		{"缺少评分", fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, gin.H{"comment": "x"}, http.StatusBadRequest},
		{"评论为空", fmt.Sprintf("/api/v1/books/%d/reviews", bookID), token, gin.H{"rating": 5, "comment": "   "}, http.StatusBadRequest},
		{"图书不存在", "/api/v1/books/999/reviews", token, gin.H{"rating": 5, "comment": "x"}, http.StatusNotFound},
		{"图书ID非法", "/api/v1/books/abc/reviews", token, gin.H{"rating": 5, "comment": "x"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doRequest(t, r, http.MethodPost, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.status, code, env.Message)
			assert.False(t, env.Success)
		})
	}

	// 以上失败都不应写入评论
	_, _, detail := getDetail(t, r, fmt.Sprintf("/api/v1/books/%d", bookID))
	assert.Equal(t, int64(0), detail.Book.TotalReviews)
	assert.Equal(t, "0.0", string(detail.Book.AverageRating))
}

func TestRouter_UpdateReview_Validation(t *testing.T) {
	r := newTestRouter(t)
	token := signup(t, r, "alice@example.com", "Alice")
	bookID := addBook(t, r, token, "Dune", "Frank Herbert", "Science Fiction")
	code, env := addReview(t, r, token, bookID, 4, "solid")
	require.Equal(t, http.StatusCreated, code, env.Message)
	var created reviewData
	require.NoError(t, json.Unmarshal(env.Data, &created))
	path := fmt.Sprintf("/api/v1/reviews/%d", created.ID)

	tests := []struct {
		name string
		body interface{}
	}{
		{"评分为0", gin.H{"rating": 0, "comment": "x"}},
		{"评分为6", gin.H{"rating": 6, "comment": "x"}},
		{"评分为小数", gin.H{"rating": 4.5, "comment": "x"}},
		{"评分为字符串", gin.H{"rating": "5", "comment": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := doRequest(t, r, http.MethodPut, path, token, tt.body)
			assert.Equal(t, http.StatusBadRequest, code, env.Message)
			assert.False(t, env.Success)
		})
	}

	// 失败的修改不改变原评论
	_, _, detail := getDetail(t, r, fmt.Sprintf("/api/v1/books/%d", bookID))
	require.Len(t, detail.Reviews, 1)
	assert.Equal(t, 4, detail.Reviews[0].Rating)
	assert.Equal(t, "solid", detail.Reviews[0].Comment)
}

func TestRouter_ConcurrentDuplicateReview(t *testing.T) {
	r := newTestRouter(t)
	token := signup(t, r, "alice@example.com", "Alice")
	bookID := addBook(t, r, token, "Dune", "Frank Herbert", "Science Fiction")

	const n = 5
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i], _ = addReview(t, r, token, bookID, 5, "first!")
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, c := range codes {
		switch c {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, n-1, conflicts)

	_, _, detail := getDetail(t, r, fmt.Sprintf("/api/v1/books/%d", bookID))
	assert.Equal(t, int64(1), detail.Book.TotalReviews)
}

func TestRouter_BookDetail_Pagination(t *testing.T) {
	r := newTestRouter(t)
	owner := signup(t, r, "owner@example.com", "Owner")
	bookID := addBook(t, r, owner, "Dune", "Frank Herbert", "Science Fiction")
	for i := 0; i < 7; i++ {
		token := signup(t, r, fmt.Sprintf("reader%d@example.com", i), fmt.Sprintf("Reader%d", i))
		code, _ := addReview(t, r, token, bookID, 5, "nice")
		require.Equal(t, http.StatusCreated, code)
	}

	code, env, detail := getDetail(t, r, fmt.Sprintf("/api/v1/books/%d", bookID))
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, detail.Reviews, 5, "默认每页5条")
	require.NotNil(t, env.Pagination)
	assert.Equal(t, int64(7), env.Pagination.Total)
	assert.Equal(t, 2, env.Pagination.TotalPages)

	_, _, detail = getDetail(t, r, fmt.Sprintf("/api/v1/books/%d?page=2", bookID))
	assert.Len(t, detail.Reviews, 2)

	_, _, detail = getDetail(t, r, fmt.Sprintf("/api/v1/books/%d?page=3", bookID))
	assert.Empty(t, detail.Reviews, "超出范围返回空页")
	assert.Equal(t, int64(7), detail.Book.TotalReviews)

	for _, bad := range []string{"?page=0", "?page_size=0", "?page_size=101", "?page=x"} {
		code, _, _ = getDetail(t, r, fmt.Sprintf("/api/v1/books/%d%s", bookID, bad))
		assert.Equal(t, http.StatusBadRequest, code, bad)
	}

	code, _, _ = getDetail(t, r, "/api/v1/books/404")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_SearchBooks(t *testing.T) {
	r := newTestRouter(t)
	token := signup(t, r, "alice@example.com", "Alice")
	addBook(t, r, token, "Dune Messiah", "Frank Herbert", "Science Fiction")
	addBook(t, r, token, "Children of Dune", "Frank Herbert", "Science Fiction")
	addBook(t, r, token, "Arrakis Notes", "Dune", "Essay")
	duneID := addBook(t, r, token, "Dune", "Frank Herbert", "Science Fiction")
	addBook(t, r, token, "Foundation", "Isaac Asimov", "Science Fiction")

	code, _ := addReview(t, r, token, duneID, 5, "classic")
	require.Equal(t, http.StatusCreated, code)

	code, env := doRequest(t, r, http.MethodGet, "/api/v1/books/search?query=%20DUNE%20", "", nil)
	require.Equal(t, http.StatusOK, code, env.Message)

	var items []struct {
		ID            uint            `json:"id"`
		Title         string          `json:"title"`
		MatchTier     int             `json:"match_tier"`
		AverageRating json.RawMessage `json:"average_rating"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 4)

	titles := make([]string, len(items))
	for i, it := range items {
		titles[i] = it.Title
	}
	assert.Equal(t, []string{"Dune", "Arrakis Notes", "Children of Dune", "Dune Messiah"}, titles)
	assert.Equal(t, 0, items[0].MatchTier)
	assert.Equal(t, 1, items[1].MatchTier)
	assert.Equal(t, "5.0", string(items[0].AverageRating))
	assert.Equal(t, int64(4), env.Pagination.Total)

	code, env = doRequest(t, r, http.MethodGet, "/api/v1/books/search?query=dune&page=2&page_size=3", "", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "Dune Messiah", items[0].Title)

	code, _ = doRequest(t, r, http.MethodGet, "/api/v1/books/search?query=%20%20", "", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	for _, bad := range []string{"&page=0", "&page_size=0", "&page_size=101"} {
		code, _ = doRequest(t, r, http.MethodGet, "/api/v1/books/search?query=dune"+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, bad)
	}

	code, env = doRequest(t, r, http.MethodGet, "/api/v1/books/search?query=zzz", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, int64(0), env.Pagination.Total)
}

func TestRouter_ListBooks(t *testing.T) {
	r := newTestRouter(t)
	token := signup(t, r, "alice@example.com", "Alice")
	addBook(t, r, token, "Dune", "Frank Herbert", "Science Fiction")
	addBook(t, r, token, "Emma", "Jane Austen", "Romance")
	addBook(t, r, token, "Persuasion", "Jane Austen", "Romance")

	code, env := doRequest(t, r, http.MethodGet, "/api/v1/books?author=austen", "", nil)
	require.Equal(t, http.StatusOK, code)

	var items []struct {
		Title string `json:"title"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Emma", items[0].Title)
	assert.Equal(t, "Persuasion", items[1].Title)

	for _, bad := range []string{"?page=0", "?page_size=0", "?page_size=500", "?page=-1"} {
		code, _ = doRequest(t, r, http.MethodGet, "/api/v1/books"+bad, "", nil)
		assert.Equal(t, http.StatusBadRequest, code, bad)
	}

	code, _ = doRequest(t, r, http.MethodPost, "/api/v1/books", "", gin.H{"title": "x", "author": "y", "genre": "z"})
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestRouter_Logout(t *testing.T) {
	r := newTestRouter(t)
	token := signup(t, r, "alice@example.com", "Alice")

	code, _ := doRequest(t, r, http.MethodPost, "/api/v1/users/logout", token, nil)
	require.Equal(t, http.StatusOK, code)

	code, env := doRequest(t, r, http.MethodPost, "/api/v1/books", token, gin.H{
		"title": "Dune", "author": "Frank Herbert", "genre": "Science Fiction",
	})
	assert.Equal(t, http.StatusUnauthorized, code, "登出后Token失效")
	assert.False(t, env.Success)
}

func TestRouter_RegisterDuplicateEmail(t *testing.T) {
	r := newTestRouter(t)
	signup(t, r, "alice@example.com", "Alice")

	code, _ := doRequest(t, r, http.MethodPost, "/api/v1/users/register", "", gin.H{
		"email": "ALICE@example.com", "password": "passw0rd1", "name": "Alice2",
	})
	assert.Equal(t, http.StatusConflict, code)

	code, _ = doRequest(t, r, http.MethodPost, "/api/v1/users/login", "", gin.H{
		"email": "alice@example.com", "password": "wrongpass1",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
}
