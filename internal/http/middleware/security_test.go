package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func securityRouter(opt SecurityOptions, pre gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if pre != nil {
		r.Use(pre)
	}
	r.Use(SecurityHeaders(opt))
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/schemes", ok)
	r.POST("/chat", ok)
	return r
}

func TestSecurityHeaders_BaselineOnly(t *testing.T) {
	r := securityRouter(SecurityOptions{}, func(c *gin.Context) { c.Header(requestIDHeader, "rid-1") })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schemes", nil))

	h := w.Header()
	if h.Get("X-Content-Type-Options") != "nosniff" || h.Get("X-Frame-Options") != "DENY" || h.Get("Referrer-Policy") != "no-referrer" {
		t.Fatalf("baseline headers missing: %v", h)
	}
	for _, k := range []string{"Permissions-Policy", "Cache-Control", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Fatalf("unexpected %s on a plain GET: %q", k, h.Get(k))
		}
	}
	if h.Get("Access-Control-Expose-Headers") != requestIDHeader {
		t.Fatalf("expose header = %q", h.Get("Access-Control-Expose-Headers"))
	}
}

func TestSecurityHeaders_ExposeAppendsOnce(t *testing.T) {
	pre := func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-2")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
	}
	w := httptest.NewRecorder()
	securityRouter(SecurityOptions{}, pre).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schemes", nil))
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "Content-Length, X-Request-ID" {
		t.Fatalf("expose header = %q", got)
	}

	pre = func(c *gin.Context) {
		c.Header(requestIDHeader, "rid-3")
		c.Header("Access-Control-Expose-Headers", "X-Request-ID, ETag")
	}
	w = httptest.NewRecorder()
	securityRouter(SecurityOptions{}, pre).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schemes", nil))
	if got := w.Header().Get("Access-Control-Expose-Headers"); got != "X-Request-ID, ETag" {
		t.Fatalf("expose header should be untouched, got %q", got)
	}
}

func TestSecurityHeaders_PostIsNeverCached(t *testing.T) {
	w := httptest.NewRecorder()
	securityRouter(SecurityOptions{}, nil).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/chat", nil))
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("Pragma") != "no-cache" {
		t.Fatalf("POST should be no-store: %v", w.Header())
	}
}

func TestSecurityHeaders_PolicyAndNoStore(t *testing.T) {
	w := httptest.NewRecorder()
	securityRouter(SecurityOptions{EnablePolicy: true, NoStore: true}, nil).
		ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schemes", nil))
	h := w.Header()
	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Fatalf("policy headers missing: %v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Expires") != "0" {
		t.Fatalf("no-store headers missing: %v", h)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	r := securityRouter(SecurityOptions{EnableHSTS: true, HSTSMaxAge: 24 * time.Hour}, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schemes", nil))
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Fatalf("HSTS must not be sent over plain HTTP")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/schemes", nil)
	req.Header.Set("X-Forwarded-Proto", "HTTPS")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Fatalf("HSTS via proxy = %q", got)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "https://example.org/schemes", nil)
	req.TLS = &tls.ConnectionState{}
	securityRouter(SecurityOptions{EnableHSTS: true}, nil).ServeHTTP(w, req)
	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=15552000; includeSubDomains; preload" {
		t.Fatalf("default HSTS = %q", got)
	}
}
