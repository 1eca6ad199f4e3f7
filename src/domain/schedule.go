package domain

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultTimezone   = "America/New_York"
	DefaultUnlockTime = "12:00"

	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// ScheduleEntry maps one challenge day to the civil date it unlocks on
type ScheduleEntry struct {
	Day   int    `yaml:"day" validate:"min=1,max=17"`
	Date  string `yaml:"date" validate:"required,datetime=2006-01-02"`
	Title string `yaml:"title" validate:"required"`
}

type scheduleFile struct {
	Timezone   string          `yaml:"timezone"`
	UnlockTime string          `yaml:"unlock_time" validate:"omitempty,datetime=15:04"`
	Challenges []ScheduleEntry `yaml:"challenges" validate:"len=17,dive"`
}

var defaultEntries = []ScheduleEntry{
	{Day: 1, Date: "2025-12-01", Title: "Day 1: The Fortune Teller's Tent"},
	{Day: 2, Date: "2025-12-02", Title: "Day 2: The Storyteller's Booth"},
	{Day: 3, Date: "2025-12-03", Title: "Day 3: The Hot Cocoa Championship Crisis"},
	{Day: 4, Date: "2025-12-04", Title: "Day 4: The Festival Website Launch"},
	{Day: 5, Date: "2025-12-05", Title: "Day 5: The Homecoming Board"},
	{Day: 6, Date: "2025-12-08", Title: "Day 6: The Festival Feedback System"},
	{Day: 7, Date: "2025-12-09", Title: "Day 7: The Lost & Found Data Detective"},
	{Day: 8, Date: "2025-12-10", Title: "Day 8: Dmitri's Data Dilemma"},
	{Day: 9, Date: "2025-12-11", Title: "Day 9: The Gift Tag Dilemma"},
	{Day: 10, Date: "2025-12-12", Title: "Day 10: The Festival Poster Generator"},
	{Day: 11, Date: "2025-12-15", Title: "Day 11: The Social Media Blitz"},
	{Day: 12, Date: "2025-12-16", Title: "Day 12: The Festival Gossip Column"},
	{Day: 13, Date: "2025-12-17", Title: "Day 13: The Fun House Photo Booth"},
	{Day: 14, Date: "2025-12-18", Title: "Day 14: The Festival Mascot Crisis"},
	{Day: 15, Date: "2025-12-19", Title: "Day 15: The Festival Performance Mystery"},
	{Day: 16, Date: "2025-12-22", Title: "Day 16: The Festival Countdown App"},
	{Day: 17, Date: "2025-12-23", Title: "Day 17: The Winter Wishlist App"},
}

// Schedule is the read-only unlock table. It is safe for concurrent use.
type Schedule struct {
	location *time.Location
	entries  map[int]ScheduleEntry
	unlockAt map[int]time.Time
	byDate   map[string]int
}

// DefaultSchedule returns the built-in 17-day table unlocking at noon US Eastern
func DefaultSchedule() *Schedule {
	s, err := NewSchedule(defaultEntries, DefaultTimezone, DefaultUnlockTime)
	if err != nil {
		panic(fmt.Sprintf("invalid built-in schedule: %v", err))
	}
	return s
}

// LoadSchedule reads a YAML schedule file. An empty path returns the default table.
func LoadSchedule(path string) (*Schedule, error) {
	if path == "" {
		return DefaultSchedule(), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schedule file: %w", err)
	}

	return ParseSchedule(raw)
}

// ParseSchedule decodes and validates a YAML schedule document
func ParseSchedule(raw []byte) (*Schedule, error) {
	var file scheduleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse schedule file: %w", err)
	}

	if err := validator.New().Struct(file); err != nil {
		return nil, fmt.Errorf("invalid schedule file: %w", err)
	}

	tz := file.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	unlockTime := file.UnlockTime
	if unlockTime == "" {
		unlockTime = DefaultUnlockTime
	}

	return NewSchedule(file.Challenges, tz, unlockTime)
}

// NewSchedule builds a schedule whose unlock instants are anchored to timezone.
// Each instant is built with the offset in force on its own date.
func NewSchedule(entries []ScheduleEntry, timezone string, unlockTime string) (*Schedule, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("unknown timezone %q: %w", timezone, err)
	}

	clock, err := time.Parse(timeLayout, unlockTime)
	if err != nil {
		return nil, fmt.Errorf("invalid unlock time %q: %w", unlockTime, err)
	}

	if len(entries) != LastDay {
		return nil, fmt.Errorf("schedule must contain %d challenges, got %d", LastDay, len(entries))
	}

	s := &Schedule{
		location: loc,
		entries:  make(map[int]ScheduleEntry, len(entries)),
		unlockAt: make(map[int]time.Time, len(entries)),
		byDate:   make(map[string]int, len(entries)),
	}

	for _, entry := range entries {
		if !ValidDay(entry.Day) {
			return nil, fmt.Errorf("day %d out of range", entry.Day)
		}
		if _, dup := s.entries[entry.Day]; dup {
			return nil, fmt.Errorf("day %d scheduled twice", entry.Day)
		}
		if other, dup := s.byDate[entry.Date]; dup {
			return nil, fmt.Errorf("date %s already used by day %d", entry.Date, other)
		}

		date, err := time.ParseInLocation(dateLayout, entry.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid date for day %d: %w", entry.Day, err)
		}

		s.entries[entry.Day] = entry
		s.byDate[entry.Date] = entry.Day
		s.unlockAt[entry.Day] = time.Date(date.Year(), date.Month(), date.Day(), clock.Hour(), clock.Minute(), 0, 0, loc)
	}

	return s, nil
}

func (s *Schedule) Location() *time.Location {
	return s.location
}

// Days returns every scheduled day in ascending order
func (s *Schedule) Days() []int {
	days := make([]int, 0, len(s.entries))
	for day := range s.entries {
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

func (s *Schedule) Entry(day int) (ScheduleEntry, bool) {
	e, ok := s.entries[day]
	return e, ok
}

func (s *Schedule) Title(day int) string {
	return s.entries[day].Title
}

// UnlockAt returns the scheduled unlock instant of day
func (s *Schedule) UnlockAt(day int) (time.Time, bool) {
	at, ok := s.unlockAt[day]
	return at, ok
}

// IsUnlocked reports whether the scheduled unlock time of day has passed.
// Unknown days are never unlocked.
func (s *Schedule) IsUnlocked(day int, now time.Time) bool {
	at, ok := s.unlockAt[day]
	if !ok {
		return false
	}
	return !now.Before(at)
}

// UnlockedDays lists the days whose scheduled time has passed
func (s *Schedule) UnlockedDays(now time.Time) []int {
	var days []int
	for _, day := range s.Days() {
		if s.IsUnlocked(day, now) {
			days = append(days, day)
		}
	}
	return days
}

// FindDayForDate returns the day scheduled on the civil date of t in the
// schedule's timezone.
func (s *Schedule) FindDayForDate(t time.Time) (int, bool) {
	day, ok := s.byDate[t.In(s.location).Format(dateLayout)]
	return day, ok
}

// FindDayForDateString looks up a YYYY-MM-DD civil date
func (s *Schedule) FindDayForDateString(date string) (int, bool) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return 0, false
	}
	day, ok := s.byDate[date]
	return day, ok
}

// Next returns the earliest day that has not reached its unlock time yet
func (s *Schedule) Next(now time.Time) (int, time.Time, bool) {
	for _, day := range s.Days() {
		at := s.unlockAt[day]
		if now.Before(at) {
			return day, at, true
		}
	}
	return 0, time.Time{}, false
}

// TimeUntil returns the remaining wait for day, false once it has passed
func (s *Schedule) TimeUntil(day int, now time.Time) (time.Duration, bool) {
	at, ok := s.unlockAt[day]
	if !ok {
		return 0, false
	}
	remaining := at.Sub(now)
	if remaining <= 0 {
		return 0, false
	}
	return remaining, true
}

// ParseDay converts a day given as text into a validated day number
func ParseDay(raw string) (int, error) {
	day, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, NewInvalidDayError(errors.New("day is not a number"))
	}
	if !ValidDay(day) {
		return 0, NewInvalidDayError(fmt.Errorf("day %d outside %d-%d", day, FirstDay, LastDay))
	}
	return day, nil
}
