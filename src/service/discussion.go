package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/adventofai/backend/src/domain"
	"github.com/rs/zerolog"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

type DiscussionConfig struct {
	Token      string
	Repository string // owner/name
	CategoryID string
	// GraphQLURL overrides the public endpoint, empty means api.github.com
	GraphQLURL string
	// HTTPClient is the base transport, nil means http.DefaultTransport
	HTTPClient *http.Client
}

// GitHubDiscussionService creates one GitHub Discussion per unlocked day.
// Each call creates a new thread; callers must not repeat it for a day.
type GitHubDiscussionService struct {
	client     *githubv4.Client
	owner      string
	name       string
	categoryID githubv4.ID
	schedule   *domain.Schedule
	content    *ContentService

	mu           sync.Mutex
	repositoryID githubv4.ID
}

func NewGitHubDiscussionService(config DiscussionConfig, schedule *domain.Schedule, content *ContentService) (*GitHubDiscussionService, error) {
	owner, name, ok := strings.Cut(config.Repository, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid target repository %q, expected owner/name", config.Repository)
	}
	if config.Token == "" {
		return nil, errors.New("github token is required")
	}
	if config.CategoryID == "" {
		return nil, errors.New("discussion category id is required")
	}

	var base http.RoundTripper = http.DefaultTransport
	if config.HTTPClient != nil && config.HTTPClient.Transport != nil {
		base = config.HTTPClient.Transport
	}
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: config.Token}),
			Base:   base,
		},
	}

	client := githubv4.NewClient(httpClient)
	if config.GraphQLURL != "" {
		client = githubv4.NewEnterpriseClient(config.GraphQLURL, httpClient)
	}

	return &GitHubDiscussionService{
		client:     client,
		owner:      owner,
		name:       name,
		categoryID: githubv4.ID(config.CategoryID),
		schedule:   schedule,
		content:    content,
	}, nil
}

func (s *GitHubDiscussionService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "discussion-service").Logger()
	return &l
}

// resolveRepositoryID looks the repository node ID up once and caches it
func (s *GitHubDiscussionService) resolveRepositoryID(ctx context.Context) (githubv4.ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.repositoryID != nil {
		return s.repositoryID, nil
	}

	var q struct {
		Repository struct {
			ID githubv4.ID
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]interface{}{
		"owner": githubv4.String(s.owner),
		"name":  githubv4.String(s.name),
	}

	if err := s.client.Query(ctx, &q, variables); err != nil {
		return nil, fmt.Errorf("failed to look up repository %s/%s: %w", s.owner, s.name, err)
	}
	if q.Repository.ID == nil {
		return nil, fmt.Errorf("repository %s/%s not found", s.owner, s.name)
	}

	s.repositoryID = q.Repository.ID
	return s.repositoryID, nil
}

// CreateDiscussion posts the challenge of day and returns its reference
func (s *GitHubDiscussionService) CreateDiscussion(ctx context.Context, day int) (*domain.Discussion, error) {
	entry, ok := s.schedule.Entry(day)
	if !ok {
		return nil, fmt.Errorf("day %d is not scheduled", day)
	}

	body, err := s.content.Load(day)
	if err != nil {
		return nil, err
	}

	repositoryID, err := s.resolveRepositoryID(ctx)
	if err != nil {
		return nil, err
	}

	var m struct {
		CreateDiscussion struct {
			Discussion struct {
				ID     githubv4.ID
				Number githubv4.Int
				URL    githubv4.URI
				Title  githubv4.String
			}
		} `graphql:"createDiscussion(input: $input)"`
	}
	input := githubv4.CreateDiscussionInput{
		RepositoryID: repositoryID,
		CategoryID:   s.categoryID,
		Title:        githubv4.String(entry.Title),
		Body:         githubv4.String(body),
	}

	s.logger(ctx).Info().Int("day", day).Str("title", entry.Title).Msg("creating discussion")

	if err := s.client.Mutate(ctx, &m, input, nil); err != nil {
		return nil, fmt.Errorf("createDiscussion mutation failed: %w", err)
	}

	created := m.CreateDiscussion.Discussion
	if created.URL.URL == nil || created.Number == 0 {
		return nil, errors.New("createDiscussion returned an incomplete discussion")
	}

	discussion := &domain.Discussion{
		ID:     fmt.Sprint(created.ID),
		URL:    created.URL.String(),
		Number: int(created.Number),
		Title:  string(created.Title),
	}

	s.logger(ctx).Info().
		Int("day", day).
		Str("discussion_url", discussion.URL).
		Int("discussion_number", discussion.Number).
		Msg("discussion created")

	return discussion, nil
}
