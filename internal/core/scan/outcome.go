package scan

import (
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
)

// Kind はスキャン結果の種別です。SUCCESS 以外はすべて利用者向けの拒否理由です。
type Kind string

const (
	KindSuccess           Kind = "SUCCESS"
	KindOutsideGeofence   Kind = "OUTSIDE_GEOFENCE"
	KindNoFaceDetected    Kind = "NO_FACE_DETECTED"
	KindNotRecognized     Kind = "NOT_RECOGNIZED"
	KindNoEnrolledFaces   Kind = "NO_ENROLLED_FACES"
	KindExtractionTimeout Kind = "EXTRACTION_TIMEOUT"
	KindInternalError     Kind = "INTERNAL_ERROR"
)

// Outcome は 1 回のスキャンの判定結果です。Kind によって有効なフィールドが異なります。
type Outcome struct {
	ScanID  string
	Kind    Kind
	Message string

	// OUTSIDE_GEOFENCE
	NearestZoneName       *string
	NearestDistanceMeters *float64

	// NOT_RECOGNIZED
	Distance *float64

	// SUCCESS
	Action       attendance.Action
	EmployeeID   string
	EmployeeName string
	Timestamp    time.Time
	Confidence   float64
	Record       *attendance.Record
	OutletID     *string
	OutletName   *string

	// INTERNAL_ERROR の原因。利用者には返却しません。
	Cause error
}

// Succeeded は打刻が記録されたかを返します。
func (o *Outcome) Succeeded() bool {
	return o != nil && o.Kind == KindSuccess
}
