//go:build integration

// Package integration 针对运行中服务的黑盒测试
//
// 运行方式：
//
//	go run ./cmd/api
//	go test -tags=integration ./test/integration/...
//
// 服务地址通过BOOKREVIEW_BASE_URL指定，默认 http://localhost:8080/api/v1
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	defaultBaseURL = "http://localhost:8080/api/v1"
	// Timeout HTTP请求超时时间
	Timeout = 10 * time.Second
	// TestPassword 测试用户统一密码
	TestPassword = "Test1234"
)

var seq atomic.Int64

// BaseURL API基础URL
func BaseURL() string {
	if u := os.Getenv("BOOKREVIEW_BASE_URL"); u != "" {
		return u
	}
	return defaultBaseURL
}

// Response 统一响应结构
type Response struct {
	Status     int             `json:"-"`
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Code       int             `json:"code"`
	Data       json.RawMessage `json:"data"`
	Pagination *Pagination     `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// LoginData 登录响应数据
type LoginData struct {
	AccessToken string `json:"access_token"`
}

// BookData 图书响应数据
type BookData struct {
	ID            uint            `json:"id"`
	Title         string          `json:"title"`
	Author        string          `json:"author"`
	AverageRating json.RawMessage `json:"average_rating"`
	TotalReviews  int64           `json:"total_reviews"`
	MatchTier     int             `json:"match_tier"`
}

// ReviewData 评论响应数据
type ReviewData struct {
	ID       uint   `json:"id"`
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
}

// DetailData 图书详情响应数据
type DetailData struct {
	Book    BookData     `json:"book"`
	Reviews []ReviewData `json:"reviews"`
}

// Do 发送请求并解析统一响应
// 使用require断言，失败立即终止当前测试
func Do(t *testing.T, method, url string, data interface{}, token string) *Response {
	t.Helper()

	var payload io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		require.NoError(t, err, "JSON序列化失败")
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, payload)
	require.NoError(t, err, "创建HTTP请求失败")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: Timeout}
	resp, err := client.Do(req)
	require.NoError(t, err, "发送HTTP请求失败")
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "读取响应体失败")

	result := Response{Status: resp.StatusCode}
	require.NoError(t, json.Unmarshal(body, &result), "解析JSON响应失败: %s", string(body))
	return &result
}

// Unique 生成本次运行内唯一的后缀，避免重复运行时数据冲突
func Unique(prefix string) string {
	return fmt.Sprintf("%s_%d_%d", prefix, time.Now().UnixNano(), seq.Add(1))
}

// RegisterTestUser 注册并登录测试用户，返回Token
func RegisterTestUser(t *testing.T, name string) string {
	t.Helper()

	email := Unique(name) + "@test.com"
	resp := Do(t, http.MethodPost, BaseURL()+"/users/register", map[string]string{
		"email":    email,
		"password": TestPassword,
		"name":     name,
	}, "")
	require.Equal(t, http.StatusCreated, resp.Status, "注册失败: %s", resp.Message)

	resp = Do(t, http.MethodPost, BaseURL()+"/users/login", map[string]string{
		"email":    email,
		"password": TestPassword,
	}, "")
	require.Equal(t, http.StatusOK, resp.Status, "登录失败: %s", resp.Message)

	var login LoginData
	require.NoError(t, json.Unmarshal(resp.Data, &login), "解析登录响应失败")
	return login.AccessToken
}

// AddTestBook 添加测试图书并返回图书ID
func AddTestBook(t *testing.T, token, title, author string) uint {
	t.Helper()

	resp := Do(t, http.MethodPost, BaseURL()+"/books", map[string]string{
		"title":  title,
		"author": author,
		"genre":  "集成测试",
	}, token)
	require.Equal(t, http.StatusCreated, resp.Status, "添加图书失败: %s", resp.Message)

	var b BookData
	require.NoError(t, json.Unmarshal(resp.Data, &b), "解析图书响应失败")
	return b.ID
}

// GetDetail 查询图书详情
func GetDetail(t *testing.T, bookID uint) DetailData {
	t.Helper()

	resp := Do(t, http.MethodGet, fmt.Sprintf("%s/books/%d", BaseURL(), bookID), nil, "")
	require.Equal(t, http.StatusOK, resp.Status, "查询详情失败: %s", resp.Message)

	var d DetailData
	require.NoError(t, json.Unmarshal(resp.Data, &d))
	return d
}
