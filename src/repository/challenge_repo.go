package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adventofai/backend/src/domain"
	"gorm.io/gorm"
)

// commitUnlockSQL is a single conditional upsert. It inserts the unlocked row,
// or transitions an existing locked row, and never touches a row that is
// already unlocked. Valid on both PostgreSQL and SQLite.
const commitUnlockSQL = `
INSERT INTO challenges (day, unlocked, discussion_url, discussion_number, unlocked_at, created_at, updated_at)
VALUES (?, TRUE, ?, ?, ?, ?, ?)
ON CONFLICT (day) DO UPDATE SET
	unlocked = TRUE,
	discussion_url = excluded.discussion_url,
	discussion_number = excluded.discussion_number,
	unlocked_at = excluded.unlocked_at,
	updated_at = excluded.updated_at
WHERE challenges.unlocked = FALSE`

type ChallengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

// FindChallengeByDay returns domain.ErrChallengeNotFound when the day has no record yet
func (r *ChallengeRepository) FindChallengeByDay(ctx context.Context, day int) (*domain.Challenge, error) {
	var challenge domain.Challenge
	if err := r.db.WithContext(ctx).Where("day = ?", day).First(&challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to find challenge %d: %w", day, err)
	}
	return &challenge, nil
}

// FindChallenges retrieves all stored records ordered by day
func (r *ChallengeRepository) FindChallenges(ctx context.Context) ([]*domain.Challenge, error) {
	var challenges []*domain.Challenge
	if err := r.db.WithContext(ctx).Order("day ASC").Find(&challenges).Error; err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	return challenges, nil
}

// CommitUnlock records the unlock of day and returns the stored record.
// The boolean is true only when this call performed the transition; when the
// day was already unlocked the existing record is returned unchanged.
func (r *ChallengeRepository) CommitUnlock(ctx context.Context, day int, discussion *domain.Discussion, at time.Time) (*domain.Challenge, bool, error) {
	at = at.UTC()

	result := r.db.WithContext(ctx).Exec(commitUnlockSQL,
		day,
		discussion.URL,
		discussion.Number,
		at,
		at,
		at,
	)

	committed := true
	if err := result.Error; err != nil {
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, false, fmt.Errorf("failed to commit unlock of challenge %d: %w", day, err)
		}
		committed = false
	} else if result.RowsAffected == 0 {
		committed = false
	}

	challenge, err := r.FindChallengeByDay(ctx, day)
	if err != nil {
		return nil, false, err
	}

	return challenge, committed, nil
}
