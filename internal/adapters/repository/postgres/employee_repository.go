package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/ogurasousui/codex-face-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	pgdb "github.com/ogurasousui/codex-face-attendance/internal/platform/db/postgres"
	"github.com/pgvector/pgvector-go"
)

const (
	employeeUniqueViolationCode     = "23505"
	employeeForeignKeyViolationCode = "23503"
	employeeCheckViolationCode      = "23514"
	// pgvector は次元不一致を data_exception として報告します。
	vectorDataExceptionCode = "22000"
)

const employeeColumns = `id, code, name, department, photo, face_descriptor, created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
// 顔記述子は pgvector の vector 型として保存します。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は社員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (code, name, department, photo, face_descriptor, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING `+employeeColumns,
		e.Code,
		e.Name,
		nullableString(e.Department),
		nullableBytes(e.Photo),
		vectorParam(e.Descriptor),
		e.CreatedAt,
		e.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は社員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, e *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET code = $1,
               name = $2,
               department = $3,
               photo = $4,
               face_descriptor = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING `+employeeColumns,
		e.Code,
		e.Name,
		nullableString(e.Department),
		nullableBytes(e.Photo),
		vectorParam(e.Descriptor),
		e.UpdatedAt,
		e.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は社員を削除します。勤怠記録は事前に削除されている必要があります。
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で社員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByCode は社員コードで社員を取得します。
func (r *EmployeeRepository) FindByCode(ctx context.Context, code string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE code = $1
         LIMIT 1
    `, code)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は社員の一覧を作成日時の昇順で取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, string, error) {
	if filter.Limit <= 0 {
		return nil, "", employee.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", employee.ErrInvalidPageToken
	}

	args := make([]any, 0, 3)
	conditions := make([]string, 0, 2)

	if filter.Department != nil {
		args = append(args, *filter.Department)
		conditions = append(conditions, "department = $"+strconv.Itoa(len(args)))
	}

	if filter.HasDescriptor != nil {
		if *filter.HasDescriptor {
			conditions = append(conditions, "face_descriptor IS NOT NULL")
		} else {
			conditions = append(conditions, "face_descriptor IS NULL")
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	args = append(args, filter.Limit+1)
	limitPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, filter.Offset)
	offsetPlaceholder := "$" + strconv.Itoa(len(args))

	query := `
        SELECT ` + employeeColumns + `
          FROM employees` + whereClause + `
         ORDER BY created_at, id
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateEmployeePgError(err)
	}
	defer rows.Close()

	var employees []*employee.Employee
	for rows.Next() {
		found, err := scanEmployee(rows)
		if err != nil {
			return nil, "", translateEmployeePgError(err)
		}
		employees = append(employees, found)
	}
	if err := rows.Err(); err != nil {
		return nil, "", translateEmployeePgError(err)
	}

	var nextToken string
	if len(employees) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		employees = employees[:filter.Limit]
	}

	return employees, nextToken, nil
}

// ListMissingDescriptors は写真があり記述子が未算出の社員を作成順に取得します。
// after を指定した場合は (created_at, id) がそれより後ろの社員のみを返します。
func (r *EmployeeRepository) ListMissingDescriptors(ctx context.Context, after *employee.BackfillCursor, limit int) ([]*employee.Employee, error) {
	if limit <= 0 {
		return nil, employee.ErrInvalidPageSize
	}

	query := `
        SELECT ` + employeeColumns + `
          FROM employees
         WHERE photo IS NOT NULL
           AND face_descriptor IS NULL`
	args := []any{}
	if after != nil {
		query += `
           AND (created_at, id) > ($1, $2)`
		args = append(args, after.CreatedAt, after.ID)
	}
	args = append(args, limit)
	query += fmt.Sprintf(`
         ORDER BY created_at, id
         LIMIT $%d`, len(args))

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	var pending []*employee.Employee
	for rows.Next() {
		found, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		pending = append(pending, found)
	}
	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}
	return pending, nil
}

// UpdateDescriptor は記述子のみを更新します。
func (r *EmployeeRepository) UpdateDescriptor(ctx context.Context, id string, descriptor face.Descriptor, updatedAt time.Time) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `
        UPDATE employees
           SET face_descriptor = $1,
               updated_at = $2
         WHERE id = $3
    `, vectorParam(descriptor), updatedAt, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// CachedDescriptors は記述子を持つ社員を保存順 (作成日時の昇順) で返します。
func (r *EmployeeRepository) CachedDescriptors(ctx context.Context) ([]face.Candidate, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, name, face_descriptor
          FROM employees
         WHERE face_descriptor IS NOT NULL
         ORDER BY created_at, id
    `)
	if err != nil {
		return nil, fmt.Errorf("load descriptors: %w", err)
	}
	defer rows.Close()

	var candidates []face.Candidate
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan descriptor: %w", err)
		}
		candidates = append(candidates, candidate)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load descriptors: %w", err)
	}
	return candidates, nil
}

func scanCandidate(row pgx.Row) (face.Candidate, error) {
	var (
		id, name string
		vec      pgvector.Vector
	)
	if err := row.Scan(&id, &name, &vec); err != nil {
		return face.Candidate{}, err
	}
	return face.Candidate{EmployeeID: id, Name: name, Descriptor: face.Descriptor(vec.Slice())}, nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id                   string
		code                 string
		name                 string
		department           sql.NullString
		photo                []byte
		descriptor           *pgvector.Vector
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &code, &name, &department, &photo, &descriptor, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var deptPtr *string
	if department.Valid {
		dept := department.String
		deptPtr = &dept
	}

	var desc face.Descriptor
	if descriptor != nil {
		desc = face.Descriptor(descriptor.Slice())
	}

	return &employee.Employee{
		ID:         id,
		Code:       code,
		Name:       name,
		Department: deptPtr,
		Photo:      photo,
		Descriptor: desc,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case employeeUniqueViolationCode:
			return employee.ErrEmployeeCodeAlreadyExists
		case employeeForeignKeyViolationCode:
			return employee.ErrEmployeeHasAttendances
		case employeeCheckViolationCode:
			return employee.ErrInvalidEmployeeCode
		case vectorDataExceptionCode:
			return fmt.Errorf("%s: %w", pgErr.Message, face.ErrDimensionMismatch)
		}
	}

	return err
}

func vectorParam(d face.Descriptor) any {
	if len(d) == 0 {
		return nil
	}
	return pgvector.NewVector([]float32(d))
}

func nullableBytes(value []byte) any {
	if len(value) == 0 {
		return nil
	}
	return value
}
