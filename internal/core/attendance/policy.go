package attendance

import (
	"fmt"
	"time"
)

// LatenessPolicy は始業時刻と猶予時間による遅刻判定規則です。
type LatenessPolicy struct {
	Location    *time.Location
	StartHour   int
	StartMinute int
	Grace       time.Duration
}

// DefaultLatenessPolicy は 09:00 始業、猶予 15 分の規則を返します。
func DefaultLatenessPolicy(loc *time.Location) LatenessPolicy {
	if loc == nil {
		loc = time.UTC
	}
	return LatenessPolicy{Location: loc, StartHour: 9, StartMinute: 0, Grace: 15 * time.Minute}
}

// ParseLatenessPolicy は "HH:MM" 形式の始業時刻から規則を組み立てます。
func ParseLatenessPolicy(workStart string, grace time.Duration, loc *time.Location) (LatenessPolicy, error) {
	start, err := time.Parse("15:04", workStart)
	if err != nil {
		return LatenessPolicy{}, fmt.Errorf("work start %q: %w", workStart, ErrInvalidPolicy)
	}
	if grace < 0 {
		return LatenessPolicy{}, fmt.Errorf("grace %s: %w", grace, ErrInvalidPolicy)
	}
	p := DefaultLatenessPolicy(loc)
	p.StartHour = start.Hour()
	p.StartMinute = start.Minute()
	p.Grace = grace
	return p, nil
}

// Evaluate は at の出勤を判定します。
// 始業時刻は at ではなく today の日付で組み立てるため、today と別の日の出勤は常に ON_TIME です。
func (p LatenessPolicy) Evaluate(today, at time.Time) (Status, int) {
	loc := p.location()
	day := today.In(loc)
	cutoff := time.Date(day.Year(), day.Month(), day.Day(), p.StartHour, p.StartMinute, 0, 0, loc)

	local := at.In(loc)
	if !sameDay(local, cutoff) || !local.After(cutoff) {
		return StatusOnTime, 0
	}

	diff := wholeMinutes(local.Sub(cutoff))
	if diff > wholeMinutes(p.Grace) {
		return StatusLate, diff
	}
	return StatusOnTime, 0
}

// StartOfDay は today が属する日の 0 時を返します。
func (p LatenessPolicy) StartOfDay(today time.Time) time.Time {
	loc := p.location()
	day := today.In(loc)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
}

func (p LatenessPolicy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// wholeMinutes は切り捨ての分数を返します。負の値は 0 とします。
func wholeMinutes(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
