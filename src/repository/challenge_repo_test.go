package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/adventofai/backend/src/domain"
	"github.com/adventofai/backend/src/testutil"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestChallengeRepository_CommitUnlock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	at := time.Date(2025, 12, 3, 17, 0, 5, 0, time.UTC)
	discussion := &domain.Discussion{URL: "https://example/d/3", Number: 42}

	challenge, committed, err := repo.CommitUnlock(ctx, 3, discussion, at)
	if err != nil {
		t.Fatalf("CommitUnlock failed: %v", err)
	}

	if !committed {
		t.Error("first CommitUnlock should report a committed transition")
	}

	if challenge.Day != 3 {
		t.Errorf("Expected day 3, got %d", challenge.Day)
	}

	if !challenge.Unlocked {
		t.Error("challenge should be unlocked")
	}

	if challenge.DiscussionURL == nil || *challenge.DiscussionURL != discussion.URL {
		t.Errorf("Expected discussion url %s, got %v", discussion.URL, challenge.DiscussionURL)
	}

	if challenge.DiscussionNumber == nil || *challenge.DiscussionNumber != 42 {
		t.Errorf("Expected discussion number 42, got %v", challenge.DiscussionNumber)
	}

	if challenge.UnlockedAt == nil || !challenge.UnlockedAt.Equal(at) {
		t.Errorf("Expected unlocked_at %s, got %v", at, challenge.UnlockedAt)
	}

	if !challenge.IsCommitted() {
		t.Error("committed challenge should satisfy the unlock invariant")
	}
}

func TestChallengeRepository_CommitUnlock_AlreadyUnlocked(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	first := time.Date(2025, 12, 1, 17, 0, 0, 0, time.UTC)
	_, _, err := repo.CommitUnlock(ctx, 1, &domain.Discussion{URL: "https://example/d/1", Number: 7}, first)
	if err != nil {
		t.Fatalf("first CommitUnlock failed: %v", err)
	}

	second := first.Add(time.Hour)
	challenge, committed, err := repo.CommitUnlock(ctx, 1, &domain.Discussion{URL: "https://example/d/other", Number: 8}, second)
	if err != nil {
		t.Fatalf("second CommitUnlock failed: %v", err)
	}

	if committed {
		t.Error("second CommitUnlock must be a no-op")
	}

	if *challenge.DiscussionURL != "https://example/d/1" {
		t.Errorf("discussion url was overwritten: %s", *challenge.DiscussionURL)
	}

	if *challenge.DiscussionNumber != 7 {
		t.Errorf("discussion number was overwritten: %d", *challenge.DiscussionNumber)
	}

	if !challenge.UnlockedAt.Equal(first) {
		t.Errorf("unlocked_at was overwritten: %s", challenge.UnlockedAt)
	}
}

func TestChallengeRepository_CommitUnlock_TransitionsLockedRow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	if err := db.Create(&domain.Challenge{Day: 5}).Error; err != nil {
		t.Fatalf("failed to seed locked row: %v", err)
	}

	locked, err := repo.FindChallengeByDay(ctx, 5)
	if err != nil {
		t.Fatalf("FindChallengeByDay failed: %v", err)
	}
	if locked.Unlocked {
		t.Fatal("seeded row should start locked")
	}

	challenge, committed, err := repo.CommitUnlock(ctx, 5, &domain.Discussion{URL: "https://example/d/5", Number: 50}, time.Now())
	if err != nil {
		t.Fatalf("CommitUnlock failed: %v", err)
	}

	if !committed || !challenge.Unlocked {
		t.Errorf("locked row should transition, committed=%v unlocked=%v", committed, challenge.Unlocked)
	}
}

func TestChallengeRepository_CommitUnlock_RejectsUnknownDay(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewChallengeRepository(db)

	_, _, err := repo.CommitUnlock(context.Background(), 18, &domain.Discussion{URL: "https://example/d/18", Number: 1}, time.Now())
	if err == nil {
		t.Error("Expected check constraint error for day 18, but got none")
	}
}

func TestChallengeRepository_CommitUnlock_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	const callers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		winners   int
		seenURLs  = map[string]int{}
		failures  []error
		startGate = make(chan struct{})
	)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-startGate

			discussion := &domain.Discussion{URL: fmt.Sprintf("https://example/d/%d", i), Number: i}
			challenge, committed, err := repo.CommitUnlock(ctx, 9, discussion, time.Now())

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			if committed {
				winners++
			}
			seenURLs[*challenge.DiscussionURL]++
		}(i)
	}

	close(startGate)
	wg.Wait()

	if len(failures) > 0 {
		t.Fatalf("concurrent CommitUnlock failed: %v", failures)
	}

	if winners != 1 {
		t.Errorf("Expected exactly one committed transition, got %d", winners)
	}

	if len(seenURLs) != 1 {
		t.Errorf("all callers should observe the winning discussion, got %v", seenURLs)
	}

	var count int64
	if err := db.Model(&domain.Challenge{}).Where("day = ?", 9).Count(&count).Error; err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected one ledger row for day 9, got %d", count)
	}
}

func TestChallengeRepository_FindChallengeByDay_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewChallengeRepository(db)

	_, err := repo.FindChallengeByDay(context.Background(), 4)
	if !errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("Expected ErrChallengeNotFound, got %v", err)
	}
}

func TestChallengeRepository_FindChallenges_Ordered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := NewChallengeRepository(db)
	ctx := context.Background()

	for _, day := range []int{12, 2, 7} {
		discussion := &domain.Discussion{URL: fmt.Sprintf("https://example/d/%d", day), Number: day}
		if _, _, err := repo.CommitUnlock(ctx, day, discussion, time.Now()); err != nil {
			t.Fatalf("CommitUnlock(%d) failed: %v", day, err)
		}
	}

	challenges, err := repo.FindChallenges(ctx)
	if err != nil {
		t.Fatalf("FindChallenges failed: %v", err)
	}

	if len(challenges) != 3 {
		t.Fatalf("Expected 3 challenges, got %d", len(challenges))
	}

	for i, want := range []int{2, 7, 12} {
		if challenges[i].Day != want {
			t.Errorf("position %d: expected day %d, got %d", i, want, challenges[i].Day)
		}
	}
}

func TestChallengeRepository_StorageFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open gorm on sqlmock: %v", err)
	}

	repo := NewChallengeRepository(db)
	outage := errors.New("connection refused")

	mock.ExpectExec("INSERT INTO challenges").WillReturnError(outage)

	_, committed, err := repo.CommitUnlock(context.Background(), 2, &domain.Discussion{URL: "https://example/d/2", Number: 2}, time.Now())
	if !errors.Is(err, outage) {
		t.Errorf("Expected wrapped storage error, got %v", err)
	}
	if committed {
		t.Error("failed write must not report a commit")
	}

	mock.ExpectQuery(`SELECT (.+) FROM "challenges"`).WillReturnError(outage)

	_, err = repo.FindChallengeByDay(context.Background(), 2)
	if !errors.Is(err, outage) || errors.Is(err, domain.ErrChallengeNotFound) {
		t.Errorf("Expected storage error distinct from not-found, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet sqlmock expectations: %v", err)
	}
}
