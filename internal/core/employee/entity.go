package employee

import (
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
)

// Employee は顔登録済みの社員エンティティです。
// Descriptor は Photo から算出され、顔が検出できなかった場合や写真が削除された場合は nil になります。
type Employee struct {
	ID         string
	Code       string
	Name       string
	Department *string
	Photo      []byte
	Descriptor face.Descriptor
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasPhoto は参照写真が登録されているかを返します。
func (e *Employee) HasPhoto() bool {
	return e != nil && len(e.Photo) > 0
}

// HasDescriptor は照合可能な記述子を保持しているかを返します。
func (e *Employee) HasDescriptor() bool {
	return e != nil && len(e.Descriptor) > 0
}

// BackfillReport は記述子の一括再計算結果です。
type BackfillReport struct {
	Processed int
	Updated   int
	NoFace    int
	Failed    int
	Failures  []BackfillFailure
	// Next は今回処理した最後の社員の位置です。処理対象が無かった場合は nil です。
	Next *BackfillCursor
}

// BackfillCursor は記述子一括再計算の走査位置です。作成順 (created_at, id) の直前位置を表します。
type BackfillCursor struct {
	CreatedAt time.Time
	ID        string
}

// BackfillFailure は再計算に失敗した社員とその原因です。
type BackfillFailure struct {
	EmployeeID string
	Err        error
}
