package service

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/repository"
	"github.com/adventofai/backend/src/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChallengeService(t *testing.T) (*ChallengeService, *repository.ChallengeRepository) {
	t.Helper()

	ledger := repository.NewChallengeRepository(testutil.SetupTestDB(t))
	content := NewContentService(fstest.MapFS{
		"day1.md": {Data: []byte("# Fortune Teller\n\nBuild it.")},
		"day2.md": {Data: []byte("# Storyteller")},
	})
	return NewChallengeService(ledger, domain.DefaultSchedule(), content), ledger
}

func commitDay(t *testing.T, ledger *repository.ChallengeRepository, day int, url string) {
	t.Helper()
	_, committed, err := ledger.CommitUnlock(context.Background(), day, &domain.Discussion{URL: url, Number: day + 100}, testNow)
	require.NoError(t, err)
	require.True(t, committed)
}

func TestListStatus(t *testing.T) {
	svc, ledger := newTestChallengeService(t)
	commitDay(t, ledger, 1, "https://example/d/1")

	statuses, err := svc.ListStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, domain.LastDay)

	assert.Equal(t, 1, statuses[0].Day)
	assert.True(t, statuses[0].Unlocked)
	assert.Equal(t, "https://example/d/1", *statuses[0].DiscussionURL)
	assert.Equal(t, 101, *statuses[0].DiscussionNumber)

	assert.Equal(t, 2, statuses[1].Day)
	assert.False(t, statuses[1].Unlocked)
	assert.Nil(t, statuses[1].DiscussionURL)
	assert.Equal(t, "Day 2: The Storyteller's Booth", statuses[1].Title)

	assert.Equal(t, 17, statuses[16].Day)
}

func TestGetChallengeContent(t *testing.T) {
	svc, ledger := newTestChallengeService(t)
	ctx := context.Background()
	commitDay(t, ledger, 1, "https://example/d/1")
	commitDay(t, ledger, 3, "https://example/d/3")

	tests := []struct {
		name   string
		day    int
		status int
		target error
	}{
		{name: "invalid day", day: 0, status: 400, target: domain.ErrInvalidDay},
		{name: "locked", day: 2, status: 403, target: domain.ErrChallengeLocked},
		{name: "unlocked without content", day: 3, status: 404, target: domain.ErrContentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetChallengeContent(ctx, tt.day)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var domainErr domain.DomainError
			require.True(t, errors.As(err, &domainErr))
			assert.Equal(t, tt.status, domainErr.HTTPStatus())
		})
	}

	content, err := svc.GetChallengeContent(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, content.Day)
	assert.Equal(t, "https://example/d/1", content.URL)
	assert.Contains(t, content.Body, "Fortune Teller")
	require.NotNil(t, content.UnlockedAt)
}

func TestGetChallengeContent_LockedEvenAfterScheduledTime(t *testing.T) {
	svc, _ := newTestChallengeService(t)

	// day 2 has long passed its scheduled time but the ledger has no record
	_, err := svc.GetChallengeContent(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrChallengeLocked)
}

func TestNextUnlock(t *testing.T) {
	svc, _ := newTestChallengeService(t)

	// 12:00 EST on Dec 3 is 17:00 UTC
	next := svc.NextUnlock(time.Date(2025, 12, 3, 16, 59, 0, 0, time.UTC))
	assert.False(t, next.AllUnlocked)
	assert.Equal(t, 3, next.Day)
	assert.Equal(t, int64(60), next.SecondsRemaining)

	next = svc.NextUnlock(time.Date(2025, 12, 5, 17, 0, 0, 0, time.UTC))
	assert.Equal(t, 6, next.Day)

	next = svc.NextUnlock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, next.AllUnlocked)
}
