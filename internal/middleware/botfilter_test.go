package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/personalization/internal/middleware"
)

func botRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.BotFilter())
	r.GET("/clicks", func(c *gin.Context) {
		if middleware.IsBot(c) {
			c.String(http.StatusOK, "bot")
			return
		}
		c.String(http.StatusOK, "shopper")
	})
	return r
}

func TestBotFilter(t *testing.T) {
	testCases := []struct {
		name      string
		userAgent string
		want      string
	}{
		{name: "browser", userAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64)", want: "shopper"},
		{name: "googlebot", userAgent: "Googlebot/2.1 (+http://www.google.com/bot.html)", want: "bot"},
		{name: "headless chrome", userAgent: "Mozilla/5.0 HeadlessChrome/120.0", want: "bot"},
		{name: "curl", userAgent: "curl/8.4.0", want: "bot"},
		{name: "missing user agent", userAgent: "", want: "bot"},
	}

	r := botRouter()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/clicks", http.NoBody)
			if tc.userAgent != "" {
				req.Header.Set("User-Agent", tc.userAgent)
			}
			r.ServeHTTP(w, req)

			if w.Body.String() != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, w.Body.String())
			}
		})
	}
}
