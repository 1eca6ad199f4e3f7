package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/repository"
	"github.com/rs/zerolog"
)

// ChallengeLedger is the durable store of unlock transitions
type ChallengeLedger interface {
	FindChallengeByDay(ctx context.Context, day int) (*domain.Challenge, error)
	FindChallenges(ctx context.Context) ([]*domain.Challenge, error)
	CommitUnlock(ctx context.Context, day int, discussion *domain.Discussion, at time.Time) (*domain.Challenge, bool, error)
}

// UnlockLock serializes unlock attempts for one day
type UnlockLock interface {
	Acquire(ctx context.Context, day int) (repository.ReleaseFunc, error)
}

// DiscussionCreator is the remote service producing the proof of unlock.
// It is not idempotent: every call creates a new discussion.
type DiscussionCreator interface {
	CreateDiscussion(ctx context.Context, day int) (*domain.Discussion, error)
}

type UnlockConfig struct {
	Secret            string
	DiscussionTimeout time.Duration
	Now               func() time.Time
}

type UnlockService struct {
	ledger      ChallengeLedger
	lock        UnlockLock
	discussions DiscussionCreator
	schedule    *domain.Schedule
	metrics     *Metrics
	secret      string
	timeout     time.Duration
	now         func() time.Time
}

// UnlockResult is the state of a day after an unlock call
type UnlockResult struct {
	Challenge       *domain.Challenge
	AlreadyUnlocked bool
}

// DailyUnlockResult is the outcome of the date-driven trigger
type DailyUnlockResult struct {
	Date        string
	Day         int
	NoChallenge bool
	Result      *UnlockResult
}

func NewUnlockService(ledger ChallengeLedger, lock UnlockLock, discussions DiscussionCreator, schedule *domain.Schedule, metrics *Metrics, config UnlockConfig) *UnlockService {
	now := config.Now
	if now == nil {
		now = time.Now
	}
	timeout := config.DiscussionTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &UnlockService{
		ledger:      ledger,
		lock:        lock,
		discussions: discussions,
		schedule:    schedule,
		metrics:     metrics,
		secret:      config.Secret,
		timeout:     timeout,
		now:         now,
	}
}

func (s *UnlockService) logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx).With().Str("component", "unlock-service").Logger()
	return &l
}

// Authorize checks a trigger secret. An unset configured secret rejects every caller.
func (s *UnlockService) Authorize(secret string) error {
	if s.secret == "" {
		return domain.NewUnauthorizedError()
	}
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return domain.NewUnauthorizedError()
	}
	return nil
}

// findUnlocked returns the stored record of day when it is already unlocked
func (s *UnlockService) findUnlocked(ctx context.Context, day int) (*domain.Challenge, error) {
	challenge, err := s.ledger.FindChallengeByDay(ctx, day)
	if err != nil {
		if errors.Is(err, domain.ErrChallengeNotFound) {
			return nil, nil
		}
		return nil, domain.NewStorageError(err)
	}
	if !challenge.Unlocked {
		return nil, nil
	}
	return challenge, nil
}

// Unlock moves day from locked to unlocked at most once. When the day is
// already unlocked the stored record is returned and no discussion is created.
func (s *UnlockService) Unlock(ctx context.Context, day int) (*UnlockResult, error) {
	logger := s.logger(ctx).With().Int("day", day).Logger()

	if !domain.ValidDay(day) {
		s.metrics.observeOutcome(OutcomeInvalidDay)
		return nil, domain.NewInvalidDayError(fmt.Errorf("day %d outside %d-%d", day, domain.FirstDay, domain.LastDay))
	}

	existing, err := s.findUnlocked(ctx, day)
	if err != nil {
		s.metrics.observeOutcome(OutcomeStorageError)
		return nil, err
	}
	if existing != nil {
		logger.Info().Msg("challenge is already unlocked")
		s.metrics.observeOutcome(OutcomeAlreadyUnlocked)
		return &UnlockResult{Challenge: existing, AlreadyUnlocked: true}, nil
	}

	release, err := s.lock.Acquire(ctx, day)
	if err != nil {
		if errors.Is(err, domain.ErrUnlockInProgress) {
			s.metrics.observeOutcome(OutcomeInProgress)
			return nil, domain.NewError(domain.ErrorCodeResourceConflict, err, domain.WithMsg("Unlock already in progress"))
		}
		s.metrics.observeOutcome(OutcomeStorageError)
		return nil, domain.NewStorageError(err)
	}

	// from here on the attempt runs to completion even if the caller goes away
	ctx = context.WithoutCancel(ctx)
	defer func() {
		if err := release(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to release unlock lock")
		}
	}()

	// another caller may have finished while we waited for the lock
	existing, err = s.findUnlocked(ctx, day)
	if err != nil {
		s.metrics.observeOutcome(OutcomeStorageError)
		return nil, err
	}
	if existing != nil {
		logger.Info().Msg("challenge was unlocked by a concurrent trigger")
		s.metrics.observeOutcome(OutcomeAlreadyUnlocked)
		return &UnlockResult{Challenge: existing, AlreadyUnlocked: true}, nil
	}

	if scheduled, ok := s.schedule.UnlockAt(day); ok && s.now().Before(scheduled) {
		logger.Warn().Time("scheduled_unlock_at", scheduled).Msg("unlocking before the scheduled time")
	}

	logger.Info().Msg("creating discussion")

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	start := time.Now()
	discussion, err := s.discussions.CreateDiscussion(callCtx, day)
	cancel()
	s.metrics.observeDiscussion(start, err)

	if err == nil && (discussion == nil || discussion.URL == "") {
		err = errors.New("discussion service returned no discussion url")
	}
	if err != nil {
		logger.Error().Err(err).Msg("failed to create discussion")
		s.metrics.observeOutcome(OutcomeUnlockFailed)
		return nil, domain.NewUnlockFailedError(err)
	}

	challenge, committed, err := s.ledger.CommitUnlock(ctx, day, discussion, s.now())
	if err != nil {
		logger.Error().Err(err).
			Str("discussion_url", discussion.URL).
			Msg("discussion created but unlock could not be recorded")
		s.metrics.observeOutcome(OutcomeStorageError)
		return nil, domain.NewStorageError(err)
	}

	if !committed {
		logger.Warn().
			Str("duplicate_discussion_url", discussion.URL).
			Str("discussion_url", deref(challenge.DiscussionURL)).
			Msg("challenge was committed by another trigger, duplicate discussion created")
		s.metrics.observeOutcome(OutcomeAlreadyUnlocked)
		return &UnlockResult{Challenge: challenge, AlreadyUnlocked: true}, nil
	}

	if scheduled, ok := s.schedule.UnlockAt(day); ok && challenge.UnlockedAt != nil {
		s.metrics.observeLag(scheduled, *challenge.UnlockedAt)
	}
	s.metrics.observeOutcome(OutcomeUnlocked)

	logger.Info().
		Str("discussion_url", discussion.URL).
		Int("discussion_number", discussion.Number).
		Msg("challenge unlocked")

	return &UnlockResult{Challenge: challenge}, nil
}

// UnlockToday unlocks the day scheduled on the civil date of now in the
// schedule's timezone. A date without a challenge is a normal outcome.
func (s *UnlockService) UnlockToday(ctx context.Context, now time.Time) (*DailyUnlockResult, error) {
	date := now.In(s.schedule.Location()).Format("2006-01-02")

	day, ok := s.schedule.FindDayForDate(now)
	if !ok {
		s.logger(ctx).Info().Str("date", date).Msg("no challenge scheduled today")
		s.metrics.observeOutcome(OutcomeNoChallenge)
		return &DailyUnlockResult{Date: date, NoChallenge: true}, nil
	}

	result, err := s.Unlock(ctx, day)
	if err != nil {
		return nil, err
	}

	return &DailyUnlockResult{Date: date, Day: day, Result: result}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
