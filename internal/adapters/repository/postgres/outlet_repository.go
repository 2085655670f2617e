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
	"github.com/ogurasousui/codex-face-attendance/internal/core/outlet"
	pgdb "github.com/ogurasousui/codex-face-attendance/internal/platform/db/postgres"
)

const (
	outletCheckViolationCode = "23514"
	outletInvalidTextCode    = "22P02"
	outletColumns            = `id, name, address, latitude, longitude, radius_meters, status, created_at, updated_at`
)

// OutletRepository は PostgreSQL を利用した店舗永続化の実装です。
type OutletRepository struct {
	pool pgdb.Queryer
}

// NewOutletRepository は OutletRepository を生成します。
func NewOutletRepository(pool pgdb.Queryer) *OutletRepository {
	return &OutletRepository{pool: pool}
}

// Create は店舗を新規作成します。
func (r *OutletRepository) Create(ctx context.Context, o *outlet.Outlet) (*outlet.Outlet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO outlets (name, address, latitude, longitude, radius_meters, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+outletColumns,
		o.Name, nullableString(o.Address), o.Latitude, o.Longitude, o.RadiusMeters, string(o.Status), o.CreatedAt, o.UpdatedAt)

	created, err := scanOutlet(row)
	if err != nil {
		return nil, translateOutletPgError(err)
	}
	return created, nil
}

// Update は店舗情報を更新します。
func (r *OutletRepository) Update(ctx context.Context, o *outlet.Outlet) (*outlet.Outlet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE outlets
           SET name = $1,
               address = $2,
               latitude = $3,
               longitude = $4,
               radius_meters = $5,
               status = $6,
               updated_at = $7
         WHERE id = $8
        RETURNING `+outletColumns,
		o.Name, nullableString(o.Address), o.Latitude, o.Longitude, o.RadiusMeters, string(o.Status), o.UpdatedAt, o.ID)

	updated, err := scanOutlet(row)
	if err != nil {
		return nil, translateOutletPgError(err)
	}
	return updated, nil
}

// Delete は店舗を削除します。紐づく勤怠記録の outlet_id は NULL になります。
func (r *OutletRepository) Delete(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM outlets WHERE id = $1`, id)
	if err != nil {
		return translateOutletPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return outlet.ErrOutletNotFound
	}
	return nil
}

// FindByID は ID で店舗を取得します。
func (r *OutletRepository) FindByID(ctx context.Context, id string) (*outlet.Outlet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+outletColumns+`
          FROM outlets
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanOutlet(row)
	if err != nil {
		return nil, translateOutletPgError(err)
	}
	return found, nil
}

// List は店舗の一覧を取得します。
func (r *OutletRepository) List(ctx context.Context, filter outlet.ListOutletsFilter) ([]*outlet.Outlet, string, error) {
	if filter.Limit <= 0 {
		return nil, "", outlet.ErrInvalidPageSize
	}
	if filter.Offset < 0 {
		return nil, "", outlet.ErrInvalidPageToken
	}

	limitWithBuffer := filter.Limit + 1

	args := make([]any, 0, 3)
	conditions := make([]string, 0, 1)

	if filter.Status != nil {
		placeholder := "$" + strconv.Itoa(len(args)+1)
		conditions = append(conditions, "status = "+placeholder)
		args = append(args, string(*filter.Status))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, limitWithBuffer)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query := `
        SELECT ` + outletColumns + `
          FROM outlets` + whereClause + `
         ORDER BY created_at, id
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder + `
    `

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, "", translateOutletPgError(err)
	}
	defer rows.Close()

	outlets, err := collectOutlets(rows)
	if err != nil {
		return nil, "", err
	}

	var nextToken string
	if len(outlets) > filter.Limit {
		nextToken = strconv.Itoa(filter.Offset + filter.Limit)
		outlets = outlets[:filter.Limit]
	}

	return outlets, nextToken, nil
}

// ListActive は有効な店舗を保存順で取得します。ジオフェンス判定はこの順序で先勝ちになります。
func (r *OutletRepository) ListActive(ctx context.Context) ([]*outlet.Outlet, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+outletColumns+`
          FROM outlets
         WHERE status = 'active'
         ORDER BY created_at, id
    `)
	if err != nil {
		return nil, translateOutletPgError(err)
	}
	defer rows.Close()

	return collectOutlets(rows)
}

func collectOutlets(rows pgx.Rows) ([]*outlet.Outlet, error) {
	var outlets []*outlet.Outlet
	for rows.Next() {
		found, err := scanOutlet(rows)
		if err != nil {
			return nil, translateOutletPgError(err)
		}
		outlets = append(outlets, found)
	}
	if err := rows.Err(); err != nil {
		return nil, translateOutletPgError(err)
	}
	return outlets, nil
}

func scanOutlet(row pgx.Row) (*outlet.Outlet, error) {
	var (
		id                   string
		name                 string
		address              sql.NullString
		latitude, longitude  float64
		radius               float64
		status               string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &address, &latitude, &longitude, &radius, &status, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, outlet.ErrOutletNotFound
		}
		return nil, err
	}

	var addrPtr *string
	if address.Valid {
		addr := address.String
		addrPtr = &addr
	}

	return &outlet.Outlet{
		ID:           id,
		Name:         name,
		Address:      addrPtr,
		Latitude:     latitude,
		Longitude:    longitude,
		RadiusMeters: radius,
		Status:       outlet.Status(status),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

func translateOutletPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case outletCheckViolationCode:
			switch pgErr.ConstraintName {
			case "outlets_radius_meters_check":
				return outlet.ErrInvalidRadius
			case "outlets_status_check":
				return outlet.ErrInvalidStatus
			default:
				return outlet.ErrInvalidCoordinate
			}
		case outletInvalidTextCode:
			return outlet.ErrOutletNotFound
		}
	}
	return err
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
