package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/personalization/internal/handler"
	infralogger "github.com/jonesrussell/north-cloud/personalization/internal/logger"
	"github.com/jonesrussell/north-cloud/personalization/internal/middleware"
	"github.com/jonesrussell/north-cloud/personalization/internal/personalization"
	"github.com/jonesrussell/north-cloud/personalization/internal/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserUA = "Mozilla/5.0 (X11; Linux x86_64) Firefox/130.0"

// stubProcessor returns a fixed outcome and remembers the session it saw.
type stubProcessor struct {
	outcome personalization.Outcome
	seen    personalization.Session
}

func (p *stubProcessor) ProcessClickStream(_ context.Context, sess personalization.Session) personalization.Outcome {
	p.seen = sess
	return p.outcome
}

type fixture struct {
	router    *gin.Engine
	store     *session.Store
	redis     *miniredis.Miniredis
	processor *stubProcessor
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := session.NewStore(client, session.Options{
		KeyPrefix:       "personalization",
		MaxClicks:       50,
		TrackingEnabled: true,
	}, infralogger.NewNop())
	processor := &stubProcessor{outcome: personalization.Outcome{Status: personalization.StatusNoWinner}}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.BotFilter())

	h := handler.NewSessionHandler(store, processor, infralogger.NewNop())
	r.POST("/sessions/:id/clicks", h.RecordClick)
	r.PUT("/sessions/:id/tracking", h.SetTracking)
	r.POST("/sessions/:id/personalization", h.ProcessClickStream)
	r.GET("/sessions/:id/personalization", h.GetPersonalization)

	return &fixture{router: r, store: store, redis: mr, processor: processor}
}

func (f *fixture) do(method, path, body, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRecordClick_StoresClick(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/sessions/s1/clicks", `{"page_id":"Product-Show","query":"pid=sneaker"}`, browserUA)
	require.Equal(t, http.StatusAccepted, w.Code)

	clicks, err := f.store.Session("s1").Clicks(context.Background())
	require.NoError(t, err)
	require.Len(t, clicks, 1)
	assert.Equal(t, "Product-Show", clicks[0].PageID)
	assert.Equal(t, "pid=sneaker", clicks[0].Query)
	assert.False(t, clicks[0].ClickedAt.IsZero())
}

func TestRecordClick_BotIsAcknowledgedNotStored(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/sessions/s1/clicks", `{"page_id":"Product-Show","query":"pid=sneaker"}`, "Googlebot/2.1")
	require.Equal(t, http.StatusAccepted, w.Code)

	clicks, err := f.store.Session("s1").Clicks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, clicks)
}

func TestRecordClick_MissingPageID(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/sessions/s1/clicks", `{"query":"pid=sneaker"}`, browserUA)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordClick_RejectsOversizedSessionID(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/sessions/"+strings.Repeat("x", 129)+"/clicks", `{"page_id":"Home-Show"}`, browserUA)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecordClick_StoreUnavailable(t *testing.T) {
	f := setupRouter(t)
	f.redis.SetError("ERR connection lost")

	w := f.do(http.MethodPost, "/sessions/s1/clicks", `{"page_id":"Home-Show"}`, browserUA)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSetTracking_OptOutAndBackIn(t *testing.T) {
	f := setupRouter(t)
	ctx := context.Background()

	w := f.do(http.MethodPut, "/sessions/s1/tracking", `{"enabled":false}`, browserUA)
	require.Equal(t, http.StatusNoContent, w.Code)

	enabled, err := f.store.Session("s1").ClickstreamEnabled(ctx)
	require.NoError(t, err)
	assert.False(t, enabled)

	w = f.do(http.MethodPut, "/sessions/s1/tracking", `{"enabled":true}`, browserUA)
	require.Equal(t, http.StatusNoContent, w.Code)

	enabled, err = f.store.Session("s1").ClickstreamEnabled(ctx)
	require.NoError(t, err)
	assert.True(t, enabled)
}

func TestSetTracking_RequiresEnabled(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPut, "/sessions/s1/tracking", `{}`, browserUA)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessClickStream_ReturnsOutcome(t *testing.T) {
	f := setupRouter(t)
	f.processor.outcome = personalization.Outcome{
		Status:     personalization.StatusUpdated,
		CategoryID: "cat-shoes",
		Counts: []personalization.TallyEntry{
			{CategoryID: "cat-shoes", Count: 3},
			{CategoryID: "cat-bags", Count: 1},
		},
	}

	w := f.do(http.MethodPost, "/sessions/s7/personalization", "", browserUA)
	require.Equal(t, http.StatusOK, w.Code)

	var body personalization.Outcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, personalization.StatusUpdated, body.Status)
	assert.Equal(t, "cat-shoes", body.CategoryID)
	assert.Len(t, body.Counts, 2)

	sess, ok := f.processor.seen.(*session.Session)
	require.True(t, ok)
	assert.Equal(t, "s7", sess.ID())
}

func TestProcessClickStream_FailureStillAnswersOK(t *testing.T) {
	f := setupRouter(t)
	f.processor.outcome = personalization.Outcome{
		Status: personalization.StatusFailed,
		Err:    errors.New("catalog down"),
	}

	w := f.do(http.MethodPost, "/sessions/s1/personalization", "", browserUA)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"failed"}`, w.Body.String())
}

func TestGetPersonalization(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodGet, "/sessions/s1/personalization", "", browserUA)
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, f.store.Session("s1").SetPersonalization(context.Background(), "cat-bags"))

	w = f.do(http.MethodGet, "/sessions/s1/personalization", "", browserUA)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"session_id":"s1","category_id":"cat-bags"}`, w.Body.String())
}
