package attendance

import (
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
)

// Status は出勤時刻の判定結果です。
type Status string

const (
	StatusOnTime Status = "ON_TIME"
	StatusLate   Status = "LATE"
)

// Action は打刻で実行された遷移です。
type Action string

const (
	ActionClockIn  Action = "CLOCK_IN"
	ActionClockOut Action = "CLOCK_OUT"
)

// Record は勤怠記録エンティティです。ClockOutTime が nil の記録を「開いた記録」と呼びます。
type Record struct {
	ID           string
	EmployeeID   string
	ClockInTime  time.Time
	ClockOutTime *time.Time
	Status       Status
	LateMinutes  int
	WorkMinutes  int
	Location     *geo.Coordinate
	LocationName *string
	OutletID     *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOpen は退勤がまだ記録されていないかを返します。
func (r *Record) IsOpen() bool {
	return r != nil && r.ClockOutTime == nil
}

// Summary は勤怠記録の集計値です。
type Summary struct {
	Total          int64
	Late           int64
	OnTime         int64
	Today          int64
	LatePercentage float64
}
