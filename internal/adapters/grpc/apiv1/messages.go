package apiv1

import "time"

// Attendance は勤怠記録です。
type Attendance struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	OutletID     *string    `json:"outletId,omitempty"`
	ClockInTime  time.Time  `json:"clockInTime"`
	ClockOutTime *time.Time `json:"clockOutTime,omitempty"`
	Status       string     `json:"status"`
	LateMinutes  int32      `json:"lateMinutes"`
	WorkMinutes  int32      `json:"workMinutes"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	LocationName *string    `json:"locationName,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ScanRequest は顔スキャンによる打刻要求です。Image は base64 または data URL です。
// Latitude と Longitude が両方ある場合のみジオフェンス判定を行います。
type ScanRequest struct {
	Image        string   `json:"image"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	LocationName *string  `json:"locationName,omitempty"`
}

// ScanResponse はスキャン判定結果です。Outcome が SUCCESS 以外でも正常応答として返します。
type ScanResponse struct {
	ScanID                string      `json:"scanId"`
	Outcome               string      `json:"outcome"`
	Success               bool        `json:"success"`
	Message               string      `json:"message"`
	Action                string      `json:"action,omitempty"`
	EmployeeID            string      `json:"employeeId,omitempty"`
	EmployeeName          string      `json:"employeeName,omitempty"`
	Timestamp             *time.Time  `json:"timestamp,omitempty"`
	Confidence            *float64    `json:"confidence,omitempty"`
	Distance              *float64    `json:"distance,omitempty"`
	NearestOutlet         *string     `json:"nearestOutlet,omitempty"`
	NearestDistanceMeters *float64    `json:"nearestDistanceMeters,omitempty"`
	OutletID              *string     `json:"outletId,omitempty"`
	OutletName            *string     `json:"outletName,omitempty"`
	Attendance            *Attendance `json:"attendance,omitempty"`
}

// ListAttendancesRequest は勤怠一覧の取得条件です。日付は YYYY-MM-DD 形式です。
type ListAttendancesRequest struct {
	EmployeeID string `json:"employeeId,omitempty" form:"employeeId"`
	Status     string `json:"status,omitempty" form:"status"`
	From       string `json:"from,omitempty" form:"from"`
	To         string `json:"to,omitempty" form:"to"`
	PageSize   int32  `json:"pageSize,omitempty" form:"pageSize"`
	PageToken  string `json:"pageToken,omitempty" form:"pageToken"`
}

type ListAttendancesResponse struct {
	Attendances   []*Attendance `json:"attendances"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

type GetAttendanceSummaryRequest struct {
	EmployeeID string `json:"employeeId,omitempty" form:"employeeId"`
	Status     string `json:"status,omitempty" form:"status"`
	From       string `json:"from,omitempty" form:"from"`
	To         string `json:"to,omitempty" form:"to"`
}

type GetAttendanceSummaryResponse struct {
	Total          int64   `json:"total"`
	Late           int64   `json:"late"`
	OnTime         int64   `json:"onTime"`
	Today          int64   `json:"today"`
	LatePercentage float64 `json:"latePercentage"`
}

// Employee は社員です。写真と記述子は有無のみを返します。
type Employee struct {
	ID            string    `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Department    *string   `json:"department,omitempty"`
	HasPhoto      bool      `json:"hasPhoto"`
	HasDescriptor bool      `json:"hasDescriptor"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CreateEmployeeRequest の Photo は base64 または data URL です。
type CreateEmployeeRequest struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Department *string `json:"department,omitempty"`
	Photo      string  `json:"photo,omitempty"`
}

type CreateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

// UpdateEmployeeRequest は指定されたフィールドのみ更新します。Photo に空文字を指定すると写真を削除します。
type UpdateEmployeeRequest struct {
	ID         string  `json:"id"`
	Code       *string `json:"code,omitempty"`
	Name       *string `json:"name,omitempty"`
	Department *string `json:"department,omitempty"`
	Photo      *string `json:"photo,omitempty"`
}

type UpdateEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type DeleteEmployeeRequest struct {
	ID string `json:"id"`
}

type DeleteEmployeeResponse struct{}

type GetEmployeeRequest struct {
	ID string `json:"id"`
}

type GetEmployeeResponse struct {
	Employee *Employee `json:"employee"`
}

type ListEmployeesRequest struct {
	Department    *string `json:"department,omitempty"`
	HasDescriptor *bool   `json:"hasDescriptor,omitempty"`
	PageSize      int32   `json:"pageSize,omitempty"`
	PageToken     string  `json:"pageToken,omitempty"`
}

type ListEmployeesResponse struct {
	Employees     []*Employee `json:"employees"`
	NextPageToken string      `json:"nextPageToken,omitempty"`
}

// Outlet は打刻可能な店舗です。
type Outlet struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      *string   `json:"address,omitempty"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	RadiusMeters float64   `json:"radiusMeters"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CreateOutletRequest struct {
	Name         string   `json:"name"`
	Address      *string  `json:"address,omitempty"`
	Latitude     float64  `json:"latitude"`
	Longitude    float64  `json:"longitude"`
	RadiusMeters *float64 `json:"radiusMeters,omitempty"`
	Status       string   `json:"status,omitempty"`
}

type CreateOutletResponse struct {
	Outlet *Outlet `json:"outlet"`
}

type UpdateOutletRequest struct {
	ID           string   `json:"id"`
	Name         *string  `json:"name,omitempty"`
	Address      *string  `json:"address,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
	RadiusMeters *float64 `json:"radiusMeters,omitempty"`
	Status       string   `json:"status,omitempty"`
}

type UpdateOutletResponse struct {
	Outlet *Outlet `json:"outlet"`
}

type DeleteOutletRequest struct {
	ID string `json:"id"`
}

type DeleteOutletResponse struct{}

type GetOutletRequest struct {
	ID string `json:"id"`
}

type GetOutletResponse struct {
	Outlet *Outlet `json:"outlet"`
}

type ListOutletsRequest struct {
	Status    string `json:"status,omitempty"`
	PageSize  int32  `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type ListOutletsResponse struct {
	Outlets       []*Outlet `json:"outlets"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}
