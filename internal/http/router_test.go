package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/config"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/domain"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/http/handlers"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/http/middleware"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/repo"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/seed"
	"github.com/Nireeksha2317/bharath-scheme-bot-multilingual-ai-guide/internal/services"
)

type stack struct {
	r    *gin.Engine
	db   *gorm.DB
	chat *services.ChatService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:        "/api",
		RateRPS:            100,
		RateBurst:          50,
		StateAlwaysInclude: []string{"Pan India", "Karnataka"},
		OTEL:               config.OTELConfig{ServiceName: "test-svc"},
	}
}

// newStack seeds the embedded catalogue and wires the real services.
func newStack(t *testing.T, cfg config.Config) stack {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := newTestDB(t)

	list, err := seed.Default()
	if err != nil {
		t.Fatalf("seed.Default: %v", err)
	}
	schemes := services.NewSchemeService(db, services.Store{})
	schemes.StateAlwaysInclude = cfg.StateAlwaysInclude
	if _, err := schemes.Seed(context.Background(), list); err != nil {
		t.Fatalf("seed: %v", err)
	}
	chat := services.NewChatService(db, services.Store{})
	chat.StateAlwaysInclude = cfg.StateAlwaysInclude
	t.Cleanup(chat.Wait)

	r := gin.New()
	RegisterRoutes(r, Services{
		Schemes:     schemes,
		Chat:        chat,
		Idempotency: services.NewIdempotencyService(db, time.Hour),
	}, cfg)
	return stack{r: r, db: db, chat: chat}
}

func send(r http.Handler, method, target, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_OpsEndpointsAndFallbacks(t *testing.T) {
	s := newStack(t, testConfig())

	w := send(s.r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Fatalf("health = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" || w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("missing CORS or request id headers: %v", w.Header())
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("security headers missing")
	}

	w = send(s.r, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "http_requests_total") {
		t.Fatalf("metrics = %d", w.Code)
	}

	w = send(s.r, http.MethodGet, "/nope", "", nil)
	if w.Code != http.StatusNotFound || !strings.Contains(w.Body.String(), "route not found") {
		t.Fatalf("no route = %d %s", w.Code, w.Body.String())
	}

	w = send(s.r, http.MethodDelete, "/api/schemes", "", nil)
	if w.Code != http.StatusMethodNotAllowed || !strings.Contains(w.Body.String(), handlers.ErrCodeMethodNotAllowed) {
		t.Fatalf("no method = %d %s", w.Code, w.Body.String())
	}

	if w := send(s.r, http.MethodGet, "/swagger/index.html", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("swagger should be off by default, got %d", w.Code)
	}
}

func TestRouter_SwaggerWhenEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.SwaggerEnabled = true
	s := newStack(t, cfg)

	w := send(s.r, http.MethodGet, "/swagger/doc.json", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("doc.json = %d", w.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("doc.json is not JSON: %v", err)
	}
	if doc["basePath"] != "/api" {
		t.Fatalf("basePath = %v", doc["basePath"])
	}
}

func TestRouter_ListingFiltersAndETag(t *testing.T) {
	s := newStack(t, testConfig())

	w := send(s.r, http.MethodGet, "/api/schemes", "", nil)
	var all []domain.Scheme
	if w.Code != http.StatusOK || json.Unmarshal(w.Body.Bytes(), &all) != nil || len(all) != 16 {
		t.Fatalf("full listing = %d (%d schemes)", w.Code, len(all))
	}

	w = send(s.r, http.MethodGet, "/api/schemes?category=education&state=Karnataka", "", nil)
	var edu []domain.Scheme
	if err := json.Unmarshal(w.Body.Bytes(), &edu); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(edu) == 0 {
		t.Fatalf("expected education schemes")
	}
	for _, sc := range edu {
		if !strings.Contains(strings.ToLower(sc.Category), "education") {
			t.Fatalf("category filter leaked %q", sc.Category)
		}
	}

	etag := w.Header().Get("ETag")
	w = send(s.r, http.MethodGet, "/api/schemes?category=education&state=Karnataka", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", w.Code)
	}

	w = send(s.r, http.MethodGet, "/api/schemes", "", map[string]string{"Accept-Encoding": "gzip"})
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("listing should be gzip encoded when asked")
	}
}

func TestRouter_GetAndCreateScheme(t *testing.T) {
	s := newStack(t, testConfig())

	w := send(s.r, http.MethodGet, "/api/schemes/1", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"id":1`) {
		t.Fatalf("get = %d %s", w.Code, w.Body.String())
	}
	if w := send(s.r, http.MethodGet, "/api/schemes/999", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("missing = %d", w.Code)
	}
	if w := send(s.r, http.MethodGet, "/api/schemes/abc", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("bad id = %d", w.Code)
	}

	body := `{"name":"Ujjwala","category":"Women & Child Welfare","description":"LPG","beneficiaries":"BPL women",
		"eligibility":"e","benefits":"connection","documents":"Aadhaar","applicationProcess":"apply"}`
	w = send(s.r, http.MethodPost, "/api/schemes", body, nil)
	if w.Code != http.StatusCreated || !strings.Contains(w.Body.String(), `"id":17`) {
		t.Fatalf("create = %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("POST responses must not be cached")
	}
}

func TestRouter_ChatEndToEnd(t *testing.T) {
	s := newStack(t, testConfig())

	w := send(s.r, http.MethodPost, "/api/chat", `{"message":"I am a farmer, what schemes can I get?"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("chat = %d %s", w.Code, w.Body.String())
	}
	var resp handlers.ChatResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Intent != "scheme_query" || len(resp.Schemes) != 3 {
		t.Fatalf("resp = %+v", resp)
	}
	if !strings.HasPrefix(resp.Response, "I found 4 schemes related to") {
		t.Fatalf("response text = %q", resp.Response)
	}

	w = send(s.r, http.MethodPost, "/api/chat", `{"message":"Namaste"}`, nil)
	if !strings.Contains(w.Body.String(), `"intent":"greeting"`) {
		t.Fatalf("greeting = %s", w.Body.String())
	}

	w = send(s.r, http.MethodPost, "/api/chat", `{}`, nil)
	if w.Code != http.StatusBadRequest || !strings.Contains(w.Body.String(), "message is required") {
		t.Fatalf("validation = %d %s", w.Code, w.Body.String())
	}

	s.chat.Wait()
	logs, err := repo.RecentChatLogs(context.Background(), s.db, 0)
	if err != nil || len(logs) != 2 {
		t.Fatalf("chat logs = %d, %v", len(logs), err)
	}
}

func TestRouter_ChatIdempotentReplay(t *testing.T) {
	s := newStack(t, testConfig())
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "retry-42"}

	first := send(s.r, http.MethodPost, "/api/chat", `{"message":"scholarship for students"}`, hdr)
	second := send(s.r, http.MethodPost, "/api/chat", `{"message":"scholarship for students"}`, hdr)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("codes = %d/%d", first.Code, second.Code)
	}
	if first.Header().Get(handlers.HeaderIdempotencyReplayed) != "" || second.Header().Get(handlers.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("replay header: first=%q second=%q",
			first.Header().Get(handlers.HeaderIdempotencyReplayed), second.Header().Get(handlers.HeaderIdempotencyReplayed))
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay should answer the same:\n%s\n%s", first.Body.String(), second.Body.String())
	}

	if w := send(s.r, http.MethodPost, "/api/chat", `{"message":"hi"}`, map[string]string{middleware.HeaderIdempotencyKey: "bad key!"}); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed key = %d", w.Code)
	}

	s.chat.Wait()
	logs, err := repo.RecentChatLogs(context.Background(), s.db, 0)
	if err != nil || len(logs) != 1 {
		t.Fatalf("replay must not be logged twice: %d logs, %v", len(logs), err)
	}
}

func TestRouter_ChatKeyReusedForDifferentMessage(t *testing.T) {
	s := newStack(t, testConfig())
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "retry-43"}

	if w := send(s.r, http.MethodPost, "/api/chat", `{"message":"scholarship for students"}`, hdr); w.Code != http.StatusOK {
		t.Fatalf("first = %d %s", w.Code, w.Body.String())
	}
	for _, msg := range []string{"farmer schemes", "health insurance", "housing", "women welfare", "Namaste"} {
		w := send(s.r, http.MethodPost, "/api/chat", `{"message":"`+msg+`"}`, hdr)
		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("%q under a used key = %d %s", msg, w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), `"code":"idempotency_key_reused"`) || w.Header().Get(handlers.HeaderIdempotencyReplayed) != "" {
			t.Fatalf("%q: body=%s", msg, w.Body.String())
		}
	}

	// A fresh key is a fresh request.
	if w := send(s.r, http.MethodPost, "/api/chat", `{"message":"farmer schemes"}`, map[string]string{middleware.HeaderIdempotencyKey: "retry-44"}); w.Code != http.StatusOK {
		t.Fatalf("new key = %d", w.Code)
	}

	s.chat.Wait()
	logs, err := repo.RecentChatLogs(context.Background(), s.db, 0)
	if err != nil || len(logs) != 2 {
		t.Fatalf("chat logs = %d, %v", len(logs), err)
	}
}

func TestRouter_ChatReplaysAreRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 2
	s := newStack(t, cfg)
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "retry-45"}

	for i := 0; i < 2; i++ {
		if w := send(s.r, http.MethodPost, "/api/chat", `{"message":"farmer schemes"}`, hdr); w.Code != http.StatusOK {
			t.Fatalf("attempt %d = %d", i, w.Code)
		}
	}
	if w := send(s.r, http.MethodPost, "/api/chat", `{"message":"farmer schemes"}`, hdr); w.Code != http.StatusTooManyRequests {
		t.Fatalf("replay past the burst = %d", w.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateRPS = 0.001
	cfg.RateBurst = 2
	s := newStack(t, cfg)

	for i := 0; i < 2; i++ {
		if w := send(s.r, http.MethodGet, "/api/schemes/1", "", nil); w.Code != http.StatusOK {
			t.Fatalf("request %d = %d", i, w.Code)
		}
	}
	w := send(s.r, http.MethodGet, "/api/schemes/1", "", nil)
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") == "" {
		t.Fatalf("third request = %d", w.Code)
	}
}

func TestRouter_CORSAllowlistEchoesOrigin(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"https://schemes.example.in"}}
	s := newStack(t, cfg)

	w := send(s.r, http.MethodGet, "/health", "", map[string]string{"Origin": "https://schemes.example.in"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://schemes.example.in" {
		t.Fatalf("ACAO = %q", got)
	}
	w = send(s.r, http.MethodGet, "/health", "", map[string]string{"Origin": "https://evil.example"})
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unlisted origin echoed: %q", got)
	}
}

func TestLimitBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestGroupWithPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s = %d %q", path, w.Code, w.Body.String())
		}
	}
}
