package employee

import (
	"context"
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
)

// Repository は社員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, employee *Employee) (*Employee, error)
	Update(ctx context.Context, employee *Employee) (*Employee, error)
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByCode(ctx context.Context, code string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, string, error)
	// ListMissingDescriptors は写真があり記述子が未算出の社員を after より後ろから作成順に返します。
	ListMissingDescriptors(ctx context.Context, after *BackfillCursor, limit int) ([]*Employee, error)
	UpdateDescriptor(ctx context.Context, id string, descriptor face.Descriptor, updatedAt time.Time) error
}

// AttendancePurger は社員削除時に勤怠記録を連鎖削除します。
type AttendancePurger interface {
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
}

// RosterInvalidator は照合用キャッシュを破棄します。
type RosterInvalidator interface {
	Invalidate()
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Department    *string
	HasDescriptor *bool
	Limit         int
	Offset        int
}
