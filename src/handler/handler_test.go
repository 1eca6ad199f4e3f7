package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/repository"
	"github.com/adventofai/backend/src/service"
	"github.com/adventofai/backend/src/testutil"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "trigger-secret"

type countingDiscussions struct {
	calls atomic.Int32
	err   error
}

func (d *countingDiscussions) CreateDiscussion(_ context.Context, day int) (*domain.Discussion, error) {
	d.calls.Add(1)
	if d.err != nil {
		return nil, d.err
	}
	return &domain.Discussion{URL: fmt.Sprintf("https://example/d/%d", day), Number: 42}, nil
}

type testServer struct {
	router      *gin.Engine
	discussions *countingDiscussions
	ledger      *repository.ChallengeRepository
}

func newTestServer(t *testing.T, secret string, now time.Time) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledger := repository.NewChallengeRepository(testutil.SetupTestDB(t))
	schedule := domain.DefaultSchedule()
	discussions := &countingDiscussions{}
	clock := func() time.Time { return now }
	registry := prometheus.NewRegistry()

	unlock := service.NewUnlockService(ledger, repository.NewLocalUnlockLock(time.Second), discussions, schedule,
		service.NewMetrics(registry), service.UnlockConfig{Secret: secret, Now: clock})
	content := service.NewContentService(fstest.MapFS{
		"day3.md": {Data: []byte("# Hot Cocoa")},
	})
	challenges := service.NewChallengeService(ledger, schedule, content)

	router := gin.New()
	RegisterRoutes(context.Background(), router, Services{
		Unlock:     unlock,
		Challenges: challenges,
		Ping:       func(context.Context) error { return nil },
		Registry:   registry,
		Now:        clock,
	})

	return &testServer{router: router, discussions: discussions, ledger: ledger}
}

func (s *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded), w.Body.String())
	}
	return w, decoded
}

var dec3Afternoon = time.Date(2025, 12, 3, 18, 0, 0, 0, time.UTC)

func TestUnlock_ThenRepeat(t *testing.T) {
	srv := newTestServer(t, testSecret, dec3Afternoon)

	w, body := srv.do(t, http.MethodPost, "/api/unlock", `{"day":3,"secret":"trigger-secret"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Challenge 3 unlocked successfully", body["message"])

	challenge, ok := body["challenge"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(3), challenge["day"])
	assert.Equal(t, "https://example/d/3", challenge["discussionUrl"])
	assert.Equal(t, float64(42), challenge["discussionNumber"])
	assert.NotEmpty(t, challenge["unlockedAt"])

	w, body = srv.do(t, http.MethodPost, "/api/unlock", `{"day":"3","secret":"trigger-secret"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["alreadyUnlocked"])
	assert.Equal(t, "Challenge 3 is already unlocked", body["message"])
	assert.NotContains(t, body, "challenge")

	assert.Equal(t, int32(1), srv.discussions.calls.Load())
}

func TestUnlock_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		body    string
		status  int
		message string
	}{
		{name: "wrong secret", secret: testSecret, body: `{"day":3,"secret":"nope"}`, status: 401, message: "Unauthorized"},
		{name: "auth before day", secret: testSecret, body: `{"day":99,"secret":"nope"}`, status: 401, message: "Unauthorized"},
		{name: "unset secret", secret: "", body: `{"day":3,"secret":""}`, status: 401, message: "Unauthorized"},
		{name: "unreadable body", secret: testSecret, body: `{"day":`, status: 401, message: "Unauthorized"},
		{name: "day zero", secret: testSecret, body: `{"day":0,"secret":"trigger-secret"}`, status: 400, message: "Invalid day number"},
		{name: "day eighteen", secret: testSecret, body: `{"day":18,"secret":"trigger-secret"}`, status: 400, message: "Invalid day number"},
		{name: "day missing", secret: testSecret, body: `{"secret":"trigger-secret"}`, status: 400, message: "Invalid day number"},
		{name: "day not numeric", secret: testSecret, body: `{"day":"three","secret":"trigger-secret"}`, status: 400, message: "Invalid day number"},
		{name: "fractional day", secret: testSecret, body: `{"day":2.5,"secret":"trigger-secret"}`, status: 400, message: "Invalid day number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.secret, dec3Afternoon)

			w, body := srv.do(t, http.MethodPost, "/api/unlock", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, body["error"])
			assert.NotContains(t, body, "details")
			assert.Equal(t, int32(0), srv.discussions.calls.Load())

			challenges, err := srv.ledger.FindChallenges(context.Background())
			require.NoError(t, err)
			assert.Empty(t, challenges)
		})
	}
}

func TestUnlock_DiscussionFailure(t *testing.T) {
	srv := newTestServer(t, testSecret, dec3Afternoon)
	srv.discussions.err = errors.New("graphql: rate limited")

	w, body := srv.do(t, http.MethodPost, "/api/unlock", `{"day":3,"secret":"trigger-secret"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to unlock challenge", body["error"])
	assert.Contains(t, body["details"], "rate limited")

	_, err := srv.ledger.FindChallengeByDay(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrChallengeNotFound)
}

func TestUnlockDaily(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	t.Run("scheduled day", func(t *testing.T) {
		srv := newTestServer(t, testSecret, time.Date(2025, 12, 8, 12, 1, 0, 0, ny))

		w, body := srv.do(t, http.MethodPost, "/api/unlock-daily", `{"secret":"trigger-secret"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Challenge 6 unlocked successfully", body["message"])

		w, body = srv.do(t, http.MethodPost, "/api/unlock-daily", `{"secret":"trigger-secret"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["alreadyUnlocked"])
		assert.Equal(t, float64(6), body["day"])
		assert.Equal(t, int32(1), srv.discussions.calls.Load())
	})

	t.Run("no challenge", func(t *testing.T) {
		srv := newTestServer(t, testSecret, time.Date(2025, 12, 6, 12, 0, 0, 0, ny))

		w, body := srv.do(t, http.MethodPost, "/api/unlock-daily", `{"secret":"trigger-secret"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["noChallenge"])
		assert.Equal(t, "No challenge scheduled for today (2025-12-06)", body["message"])
		assert.Equal(t, int32(0), srv.discussions.calls.Load())
	})

	t.Run("unauthorized", func(t *testing.T) {
		srv := newTestServer(t, testSecret, time.Date(2025, 12, 8, 12, 1, 0, 0, ny))

		w, body := srv.do(t, http.MethodPost, "/api/unlock-daily", `{}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Unauthorized", body["error"])
	})
}

func TestChallengeRoutes(t *testing.T) {
	srv := newTestServer(t, testSecret, dec3Afternoon)

	w, _ := srv.do(t, http.MethodGet, "/api/challenges/3", "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = srv.do(t, http.MethodGet, "/api/challenges/abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(t, http.MethodGet, "/api/challenges/18", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = srv.do(t, http.MethodPost, "/api/unlock", `{"day":3,"secret":"trigger-secret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := srv.do(t, http.MethodGet, "/api/challenges/3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://example/d/3", body["url"])
	assert.Equal(t, "# Hot Cocoa", body["body"])
	assert.Equal(t, "Day 3: The Hot Cocoa Championship Crisis", body["title"])

	w, body = srv.do(t, http.MethodGet, "/api/challenges", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body, domain.LastDay)
	day3, ok := body["3"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, true, day3["unlocked"])
	day4, ok := body["4"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, false, day4["unlocked"])
	assert.Nil(t, day4["discussionUrl"])
}

func TestChallengeRoutes_UnlockedWithoutContent(t *testing.T) {
	srv := newTestServer(t, testSecret, dec3Afternoon)

	w, _ := srv.do(t, http.MethodPost, "/api/unlock", `{"day":2,"secret":"trigger-secret"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := srv.do(t, http.MethodGet, "/api/challenges/2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Challenge content not found", body["error"])
}

func TestNextUnlock(t *testing.T) {
	srv := newTestServer(t, testSecret, time.Date(2025, 12, 3, 16, 0, 0, 0, time.UTC))

	w, body := srv.do(t, http.MethodGet, "/api/schedule/next", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["day"])
	assert.Equal(t, float64(3600), body["secondsRemaining"])
	assert.Equal(t, "2025-12-03T17:00:00Z", body["unlockAt"])

	srv = newTestServer(t, testSecret, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	w, body = srv.do(t, http.MethodGet, "/api/schedule/next", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["allUnlocked"])
	assert.NotContains(t, body, "day")
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, testSecret, dec3Afternoon)

	w, body := srv.do(t, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["message"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	srv.do(t, http.MethodPost, "/api/unlock", `{"day":3,"secret":"trigger-secret"}`)

	w, _ = srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `advent_unlock_attempts_total{outcome="unlocked"} 1`)
	assert.Contains(t, w.Body.String(), `advent_http_requests_total{method="POST",route="/api/unlock",status="200"} 1`)
}
