package apiv1

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
	"github.com/ogurasousui/codex-face-attendance/internal/core/outlet"
	"github.com/ogurasousui/codex-face-attendance/internal/core/scan"
)

// DateLayout は日付条件の形式です。
const DateLayout = "2006-01-02"

// ErrInvalidDate は日付条件が DateLayout 形式でない場合に返却されます。
var ErrInvalidDate = errors.New("apiv1: invalid date, expected YYYY-MM-DD")

// Decode は画像をデコードし、判定要求に変換します。
// 緯度と経度の片方だけが指定された場合は位置情報なしとして扱います。
func (r *ScanRequest) Decode() (scan.Request, error) {
	if strings.TrimSpace(r.Image) == "" {
		return scan.Request{}, scan.ErrImageRequired
	}

	image, err := face.DecodeImage(r.Image)
	if err != nil {
		return scan.Request{}, err
	}

	out := scan.Request{Image: image, LocationName: r.LocationName}
	if r.Latitude != nil && r.Longitude != nil {
		out.Coordinate = &geo.Coordinate{Latitude: *r.Latitude, Longitude: *r.Longitude}
	}
	return out, nil
}

// FromOutcome はスキャン結果を応答メッセージに変換します。内部エラーの原因は含めません。
func FromOutcome(out *scan.Outcome) *ScanResponse {
	if out == nil {
		return nil
	}

	resp := &ScanResponse{
		ScanID:                out.ScanID,
		Outcome:               string(out.Kind),
		Success:               out.Succeeded(),
		Message:               out.Message,
		Distance:              out.Distance,
		NearestOutlet:         out.NearestZoneName,
		NearestDistanceMeters: out.NearestDistanceMeters,
	}
	if !out.Succeeded() {
		return resp
	}

	ts := out.Timestamp
	confidence := out.Confidence
	resp.Action = string(out.Action)
	resp.EmployeeID = out.EmployeeID
	resp.EmployeeName = out.EmployeeName
	resp.Timestamp = &ts
	resp.Confidence = &confidence
	resp.OutletID = out.OutletID
	resp.OutletName = out.OutletName
	resp.Attendance = FromRecord(out.Record)
	return resp
}

// FromRecord は勤怠記録を変換します。
func FromRecord(rec *attendance.Record) *Attendance {
	if rec == nil {
		return nil
	}

	msg := &Attendance{
		ID:           rec.ID,
		EmployeeID:   rec.EmployeeID,
		OutletID:     rec.OutletID,
		ClockInTime:  rec.ClockInTime,
		ClockOutTime: rec.ClockOutTime,
		Status:       string(rec.Status),
		LateMinutes:  int32(rec.LateMinutes),
		WorkMinutes:  int32(rec.WorkMinutes),
		LocationName: rec.LocationName,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
	if rec.Location != nil {
		lat, lng := rec.Location.Latitude, rec.Location.Longitude
		msg.Latitude = &lat
		msg.Longitude = &lng
	}
	return msg
}

// FromRecords は勤怠記録の一覧を変換します。
func FromRecords(records []*attendance.Record) []*Attendance {
	out := make([]*Attendance, 0, len(records))
	for _, rec := range records {
		out = append(out, FromRecord(rec))
	}
	return out
}

// FromSummary は集計値を変換します。
func FromSummary(s *attendance.Summary) *GetAttendanceSummaryResponse {
	if s == nil {
		return &GetAttendanceSummaryResponse{}
	}
	return &GetAttendanceSummaryResponse{
		Total:          s.Total,
		Late:           s.Late,
		OnTime:         s.OnTime,
		Today:          s.Today,
		LatePercentage: s.LatePercentage,
	}
}

// FromEmployee は社員を変換します。写真本体と記述子は返却しません。
func FromEmployee(emp *employee.Employee) *Employee {
	if emp == nil {
		return nil
	}
	return &Employee{
		ID:            emp.ID,
		Code:          emp.Code,
		Name:          emp.Name,
		Department:    emp.Department,
		HasPhoto:      emp.HasPhoto(),
		HasDescriptor: emp.HasDescriptor(),
		CreatedAt:     emp.CreatedAt,
		UpdatedAt:     emp.UpdatedAt,
	}
}

// FromOutlet は店舗を変換します。
func FromOutlet(o *outlet.Outlet) *Outlet {
	if o == nil {
		return nil
	}
	return &Outlet{
		ID:           o.ID,
		Name:         o.Name,
		Address:      o.Address,
		Latitude:     o.Latitude,
		Longitude:    o.Longitude,
		RadiusMeters: o.RadiusMeters,
		Status:       string(o.Status),
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// Input は一覧条件を変換します。日付は loc の暦日として解釈します。
func (r *ListAttendancesRequest) Input(loc *time.Location) (attendance.ListAttendancesInput, error) {
	from, err := ParseDate(r.From, loc)
	if err != nil {
		return attendance.ListAttendancesInput{}, fmt.Errorf("from: %w", err)
	}
	to, err := ParseDate(r.To, loc)
	if err != nil {
		return attendance.ListAttendancesInput{}, fmt.Errorf("to: %w", err)
	}
	return attendance.ListAttendancesInput{
		EmployeeID: r.EmployeeID,
		Status:     ParseAttendanceStatus(r.Status),
		From:       from,
		To:         to,
		PageSize:   int(r.PageSize),
		PageToken:  r.PageToken,
	}, nil
}

// Input は集計条件を変換します。
func (r *GetAttendanceSummaryRequest) Input(loc *time.Location) (attendance.SummaryInput, error) {
	from, err := ParseDate(r.From, loc)
	if err != nil {
		return attendance.SummaryInput{}, fmt.Errorf("from: %w", err)
	}
	to, err := ParseDate(r.To, loc)
	if err != nil {
		return attendance.SummaryInput{}, fmt.Errorf("to: %w", err)
	}
	return attendance.SummaryInput{
		EmployeeID: r.EmployeeID,
		Status:     ParseAttendanceStatus(r.Status),
		From:       from,
		To:         to,
	}, nil
}

// ParseAttendanceStatus は大文字小文字を区別せずに状態を解釈します。空文字は nil です。
func ParseAttendanceStatus(raw string) *attendance.Status {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if trimmed == "" {
		return nil
	}
	st := attendance.Status(trimmed)
	return &st
}

// ParseDate は YYYY-MM-DD を loc の 0 時として解釈します。空文字は nil です。
func ParseDate(raw string, loc *time.Location) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, trimmed, loc)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &t, nil
}
