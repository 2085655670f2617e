package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
	pgdb "github.com/ogurasousui/codex-face-attendance/internal/platform/db/postgres"
)

const (
	attendanceUniqueViolationCode     = "23505"
	attendanceForeignKeyViolationCode = "23503"
	attendanceCheckViolationCode      = "23514"

	openAttendanceIndex = "attendances_one_open_per_employee"
	attendanceOutletFK  = "attendances_outlet_id_fkey"

	attendanceColumns = `id, employee_id, outlet_id, clock_in_time, clock_out_time, status, late_minutes, work_minutes,
               latitude, longitude, location_name, created_at, updated_at`
)

// AttendanceRepository は PostgreSQL を利用した勤怠記録永続化の実装です。
type AttendanceRepository struct {
	pool pgdb.Queryer
}

// NewAttendanceRepository は AttendanceRepository を生成します。
func NewAttendanceRepository(pool pgdb.Queryer) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

// LockEmployee は社員行を FOR UPDATE で確保します。トランザクション内で呼び出す必要があります。
func (r *AttendanceRepository) LockEmployee(ctx context.Context, employeeID string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var id string
	if err := exec.QueryRow(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, employeeID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.ErrEmployeeNotFound
		}
		return err
	}
	return nil
}

// FindLatestByEmployee は社員の最も新しく作成された記録を取得します。
func (r *AttendanceRepository) FindLatestByEmployee(ctx context.Context, employeeID string) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+attendanceColumns+`
          FROM attendances
         WHERE employee_id = $1
         ORDER BY created_at DESC, id DESC
         LIMIT 1
    `, employeeID)

	found, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return found, nil
}

// Create は出勤記録を作成します。
func (r *AttendanceRepository) Create(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	lat, lng := nullableCoordinate(rec.Location)

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO attendances (employee_id, outlet_id, clock_in_time, status, late_minutes, work_minutes,
                                 latitude, longitude, location_name, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING `+attendanceColumns,
		rec.EmployeeID,
		nullableString(rec.OutletID),
		rec.ClockInTime,
		string(rec.Status),
		rec.LateMinutes,
		rec.WorkMinutes,
		lat,
		lng,
		nullableString(rec.LocationName),
		rec.CreatedAt,
		rec.UpdatedAt,
	)

	created, err := scanAttendance(row)
	if err != nil {
		return nil, translateAttendancePgError(err)
	}
	return created, nil
}

// Close は開いている記録に退勤時刻と勤務時間を設定します。
func (r *AttendanceRepository) Close(ctx context.Context, rec *attendance.Record) (*attendance.Record, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE attendances
           SET clock_out_time = $1,
               work_minutes = $2,
               updated_at = $3
         WHERE id = $4
           AND clock_out_time IS NULL
        RETURNING `+attendanceColumns,
		rec.ClockOutTime,
		rec.WorkMinutes,
		rec.UpdatedAt,
		rec.ID,
	)

	closed, err := scanAttendance(row)
	if err != nil {
		if errors.Is(err, attendance.ErrRecordNotFound) {
			return nil, attendance.ErrRecordAlreadyClosed
		}
		return nil, translateAttendancePgError(err)
	}
	return closed, nil
}

// DeleteByEmployee は社員の勤怠記録をすべて削除し、削除件数を返します。
func (r *AttendanceRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM attendances WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, translateAttendancePgError(err)
	}
	return tag.RowsAffected(), nil
}

// List は勤怠記録を出勤時刻の降順で取得します。
func (r *AttendanceRepository) List(ctx context.Context, filter attendance.ListFilter) ([]*attendance.Record, string, error) {
	if filter.Limit <= 0 {
		return nil, "", attendance.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", attendance.ErrInvalidPageToken
	}

	whereClause, args := attendanceConditions(filter.EmployeeID, filter.Status, filter.From, filter.To)

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + attendanceColumns + `
          FROM attendances` + whereClause + `
         ORDER BY clock_in_time DESC, id DESC
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateAttendancePgError(err)
	}
	defer rows.Close()

	var records []*attendance.Record
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, "", translateAttendancePgError(err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateAttendancePgError(err)
	}

	var nextToken string
	if len(records) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		records = records[:filter.Limit]
	}

	return records, nextToken, nil
}

// Summarize は条件に合う勤怠記録を集計します。遅刻率はサービス層で算出します。
func (r *AttendanceRepository) Summarize(ctx context.Context, filter attendance.SummaryFilter) (*attendance.Summary, error) {
	whereClause, args := attendanceConditions(filter.EmployeeID, filter.Status, filter.From, filter.To)

	args = append(args, filter.TodayStart)
	todayPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'LATE'),
               COUNT(*) FILTER (WHERE status = 'ON_TIME'),
               COUNT(*) FILTER (WHERE clock_in_time >= ` + todayPlaceholder + `)
          FROM attendances` + whereClause

	var summary attendance.Summary
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	if err := exec.QueryRow(ctx, query, args...).Scan(&summary.Total, &summary.Late, &summary.OnTime, &summary.Today); err != nil {
		return nil, translateAttendancePgError(err)
	}
	return &summary, nil
}

func attendanceConditions(employeeID string, status *attendance.Status, from, to *time.Time) (string, []any) {
	args := make([]any, 0, 6)
	conditions := make([]string, 0, 4)

	if employeeID != "" {
		args = append(args, employeeID)
		conditions = append(conditions, "employee_id = $"+strconv.Itoa(len(args)))
	}
	if status != nil {
		args = append(args, string(*status))
		conditions = append(conditions, "status = $"+strconv.Itoa(len(args)))
	}
	if from != nil {
		args = append(args, *from)
		conditions = append(conditions, "clock_in_time >= $"+strconv.Itoa(len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conditions = append(conditions, "clock_in_time <= $"+strconv.Itoa(len(args)))
	}

	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

func scanAttendance(row pgx.Row) (*attendance.Record, error) {
	var (
		id, employeeID       string
		outletID             sql.NullString
		clockIn              time.Time
		clockOut             sql.NullTime
		status               string
		lateMinutes          int
		workMinutes          int
		latitude, longitude  sql.NullFloat64
		locationName         sql.NullString
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(
		&id,
		&employeeID,
		&outletID,
		&clockIn,
		&clockOut,
		&status,
		&lateMinutes,
		&workMinutes,
		&latitude,
		&longitude,
		&locationName,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, attendance.ErrRecordNotFound
		}
		return nil, err
	}

	rec := &attendance.Record{
		ID:          id,
		EmployeeID:  employeeID,
		ClockInTime: clockIn,
		Status:      attendance.Status(status),
		LateMinutes: lateMinutes,
		WorkMinutes: workMinutes,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
	if outletID.Valid {
		v := outletID.String
		rec.OutletID = &v
	}
	if clockOut.Valid {
		v := clockOut.Time
		rec.ClockOutTime = &v
	}
	if latitude.Valid && longitude.Valid {
		rec.Location = &geo.Coordinate{Latitude: latitude.Float64, Longitude: longitude.Float64}
	}
	if locationName.Valid {
		v := locationName.String
		rec.LocationName = &v
	}
	return rec, nil
}

func translateAttendancePgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case attendanceUniqueViolationCode:
			if pgErr.ConstraintName == openAttendanceIndex {
				return attendance.ErrOpenRecordExists
			}
		case attendanceForeignKeyViolationCode:
			if pgErr.ConstraintName == attendanceOutletFK {
				// 判定後に店舗が削除された場合
				return err
			}
			return attendance.ErrEmployeeNotFound
		case attendanceCheckViolationCode:
			return attendance.ErrInvalidStatus
		}
	}
	return err
}

func nullableCoordinate(c *geo.Coordinate) (any, any) {
	if c == nil {
		return nil, nil
	}
	return c.Latitude, c.Longitude
}
