package middleware

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
	"github.com/gin-gonic/gin"
)

// botKey is the gin context key set for crawler traffic.
const botKey = "is_bot"

// crawlerSignatures are lowercase User-Agent fragments of crawlers and
// scripted clients whose page views must not shape a shopper profile.
var crawlerSignatures = []string{
	"bot", "crawler", "spider", "slurp",
	"facebookexternalhit", "embedly", "quora link preview",
	"pinterest", "headlesschrome", "phantomjs",
	"python-requests", "curl/", "wget/", "go-http-client",
}

// BotFilter flags requests from crawlers and from clients that send no
// User-Agent. Flagged requests are still served; handlers consult IsBot to
// skip recording them.
func BotFilter() gin.HandlerFunc {
	matcher := ahocorasick.NewStringMatcher(crawlerSignatures)

	return func(c *gin.Context) {
		ua := strings.ToLower(c.Request.UserAgent())
		if ua == "" || len(matcher.MatchThreadSafe([]byte(ua))) > 0 {
			c.Set(botKey, true)
		}
		c.Next()
	}
}

// IsBot reports whether BotFilter flagged the request.
func IsBot(c *gin.Context) bool {
	return c.GetBool(botKey)
}
