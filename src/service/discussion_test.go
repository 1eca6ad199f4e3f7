package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/adventofai/backend/src/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

func newTestGraphQLServer(t *testing.T, repoLookups, mutations *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
			return
		}

		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(req.Query, "createDiscussion"):
			mutations.Add(1)
			input, _ := req.Variables["input"].(map[string]interface{})
			assert.Equal(t, "R_kgDOgoose", input["repositoryId"])
			assert.Equal(t, "DIC_kwDOcat", input["categoryId"])
			assert.Equal(t, "Day 3: The Hot Cocoa Championship Crisis", input["title"])
			assert.Equal(t, "# Hot Cocoa\n", input["body"])
			_, _ = w.Write([]byte(`{"data":{"createDiscussion":{"discussion":{"id":"D_3","number":42,"url":"https://example/d/3","title":"Day 3: The Hot Cocoa Championship Crisis"}}}}`))
		case strings.Contains(req.Query, "repository("):
			repoLookups.Add(1)
			assert.Equal(t, "block", req.Variables["owner"])
			assert.Equal(t, "goose", req.Variables["name"])
			_, _ = w.Write([]byte(`{"data":{"repository":{"id":"R_kgDOgoose"}}}`))
		default:
			_, _ = w.Write([]byte(`{"errors":[{"message":"unexpected query"}]}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestDiscussionService(t *testing.T, url, token string) *GitHubDiscussionService {
	t.Helper()

	content := NewContentService(fstest.MapFS{
		"day3.md": {Data: []byte("# Hot Cocoa\n")},
	})
	svc, err := NewGitHubDiscussionService(DiscussionConfig{
		Token:      token,
		Repository: "block/goose",
		CategoryID: "DIC_kwDOcat",
		GraphQLURL: url,
	}, domain.DefaultSchedule(), content)
	require.NoError(t, err)
	return svc
}

func TestCreateDiscussion(t *testing.T) {
	var repoLookups, mutations atomic.Int32
	srv := newTestGraphQLServer(t, &repoLookups, &mutations)
	svc := newTestDiscussionService(t, srv.URL, "test-token")
	ctx := context.Background()

	discussion, err := svc.CreateDiscussion(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "https://example/d/3", discussion.URL)
	assert.Equal(t, 42, discussion.Number)
	assert.Equal(t, "D_3", discussion.ID)

	// the repository id is looked up once
	_, err = svc.CreateDiscussion(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, int32(1), repoLookups.Load())
	assert.Equal(t, int32(2), mutations.Load())
}

func TestCreateDiscussion_MissingContent(t *testing.T) {
	var repoLookups, mutations atomic.Int32
	srv := newTestGraphQLServer(t, &repoLookups, &mutations)
	svc := newTestDiscussionService(t, srv.URL, "test-token")

	_, err := svc.CreateDiscussion(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrContentNotFound)
	assert.Equal(t, int32(0), mutations.Load())
}

func TestCreateDiscussion_BadCredentials(t *testing.T) {
	var repoLookups, mutations atomic.Int32
	srv := newTestGraphQLServer(t, &repoLookups, &mutations)
	svc := newTestDiscussionService(t, srv.URL, "wrong-token")

	_, err := svc.CreateDiscussion(context.Background(), 3)
	require.Error(t, err)
	assert.Equal(t, int32(0), mutations.Load())
}

func TestNewGitHubDiscussionService_Validation(t *testing.T) {
	content := NewContentService(fstest.MapFS{})
	schedule := domain.DefaultSchedule()

	tests := []struct {
		name   string
		config DiscussionConfig
	}{
		{name: "bad repository", config: DiscussionConfig{Token: "t", Repository: "goose", CategoryID: "c"}},
		{name: "empty owner", config: DiscussionConfig{Token: "t", Repository: "/goose", CategoryID: "c"}},
		{name: "missing token", config: DiscussionConfig{Repository: "block/goose", CategoryID: "c"}},
		{name: "missing category", config: DiscussionConfig{Token: "t", Repository: "block/goose"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewGitHubDiscussionService(tt.config, schedule, content)
			assert.Error(t, err)
		})
	}
}
