package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/rs/zerolog"
)

// ChallengeStatus is the public state of one scheduled day
type ChallengeStatus struct {
	Day               int        `json:"day"`
	Title             string     `json:"title"`
	Unlocked          bool       `json:"unlocked"`
	DiscussionURL     *string    `json:"discussionUrl"`
	DiscussionNumber  *int       `json:"discussionNumber"`
	UnlockedAt        *time.Time `json:"unlockedAt"`
	ScheduledUnlockAt time.Time  `json:"scheduledUnlockAt"`
}

type ChallengeContent struct {
	Day        int        `json:"day"`
	Title      string     `json:"title"`
	URL        string     `json:"url"`
	Body       string     `json:"body"`
	UnlockedAt *time.Time `json:"unlockedAt"`
}

type NextUnlock struct {
	Day              int
	UnlockAt         time.Time
	SecondsRemaining int64
	AllUnlocked      bool
}

// ChallengeService answers read queries. Access to content is decided by the
// ledger only; the schedule is used for titles and countdowns.
type ChallengeService struct {
	ledger   ChallengeLedger
	schedule *domain.Schedule
	content  *ContentService
}

func NewChallengeService(ledger ChallengeLedger, schedule *domain.Schedule, content *ContentService) *ChallengeService {
	return &ChallengeService{
		ledger:   ledger,
		schedule: schedule,
		content:  content,
	}
}

func (s *ChallengeService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "challenge-service").Logger()
	return &l
}

// ListStatus returns every scheduled day merged with its ledger record
func (s *ChallengeService) ListStatus(ctx context.Context) ([]ChallengeStatus, error) {
	records, err := s.ledger.FindChallenges(ctx)
	if err != nil {
		return nil, domain.NewStorageError(err)
	}

	byDay := make(map[int]*domain.Challenge, len(records))
	for _, r := range records {
		byDay[r.Day] = r
	}

	days := s.schedule.Days()
	statuses := make([]ChallengeStatus, 0, len(days))
	for _, day := range days {
		at, _ := s.schedule.UnlockAt(day)
		status := ChallengeStatus{
			Day:               day,
			Title:             s.schedule.Title(day),
			ScheduledUnlockAt: at,
		}
		if r, ok := byDay[day]; ok && r.Unlocked {
			status.Unlocked = true
			status.DiscussionURL = r.DiscussionURL
			status.DiscussionNumber = r.DiscussionNumber
			status.UnlockedAt = r.UnlockedAt
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

// GetChallengeContent returns the markdown of an unlocked day
func (s *ChallengeService) GetChallengeContent(ctx context.Context, day int) (*ChallengeContent, error) {
	if !domain.ValidDay(day) {
		return nil, domain.NewInvalidDayError(fmt.Errorf("day %d outside %d-%d", day, domain.FirstDay, domain.LastDay))
	}

	record, err := s.ledger.FindChallengeByDay(ctx, day)
	if err != nil && !errors.Is(err, domain.ErrChallengeNotFound) {
		return nil, domain.NewStorageError(err)
	}
	if record == nil || !record.Unlocked {
		return nil, domain.NewError(domain.ErrorCodeAuthPermissionDenied, domain.ErrChallengeLocked,
			domain.WithMsg("Challenge is not unlocked yet"))
	}

	body, err := s.content.Load(day)
	if err != nil {
		if errors.Is(err, domain.ErrContentNotFound) {
			s.logger(ctx).Error().Int("day", day).Msg("unlocked challenge has no content file")
			return nil, domain.NewError(domain.ErrorCodeResourceNotFound, err, domain.WithMsg("Challenge content not found"))
		}
		return nil, domain.NewError(domain.ErrorCodeInternalProcess, err)
	}

	return &ChallengeContent{
		Day:        day,
		Title:      s.schedule.Title(day),
		URL:        deref(record.DiscussionURL),
		Body:       body,
		UnlockedAt: record.UnlockedAt,
	}, nil
}

// NextUnlock returns the countdown to the next scheduled day
func (s *ChallengeService) NextUnlock(now time.Time) NextUnlock {
	day, at, ok := s.schedule.Next(now)
	if !ok {
		return NextUnlock{AllUnlocked: true}
	}
	remaining, _ := s.schedule.TimeUntil(day, now)
	return NextUnlock{
		Day:              day,
		UnlockAt:         at,
		SecondsRemaining: int64(remaining.Seconds()),
	}
}
