package attendance

import (
	"context"
	"time"
)

// Repository は勤怠記録永続化の抽象です。
type Repository interface {
	// LockEmployee は同一社員に対する打刻をトランザクション終了まで直列化します。
	LockEmployee(ctx context.Context, employeeID string) error
	FindLatestByEmployee(ctx context.Context, employeeID string) (*Record, error)
	Create(ctx context.Context, record *Record) (*Record, error)
	Close(ctx context.Context, record *Record) (*Record, error)
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
	List(ctx context.Context, filter ListFilter) ([]*Record, string, error)
	Summarize(ctx context.Context, filter SummaryFilter) (*Summary, error)
}

// ListFilter は一覧取得用フィルタです。
type ListFilter struct {
	EmployeeID string
	Status     *Status
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// SummaryFilter は集計用フィルタです。TodayStart 以降の出勤を Today として数えます。
type SummaryFilter struct {
	EmployeeID string
	Status     *Status
	From       *time.Time
	To         *time.Time
	TodayStart time.Time
}
