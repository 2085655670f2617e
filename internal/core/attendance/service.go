package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-face-attendance/internal/core/geo"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListPageSize = 50
	maxListPageSize     = 200
)

// Service は社員ごとの出勤/退勤状態遷移と勤怠記録の参照をまとめます。
type Service struct {
	repo   Repository
	clock  Clock
	tx     TransactionManager
	policy LatenessPolicy
	locks  *keyedMutex
}

// UseCase は勤怠ユースケースの公開インターフェースです。
type UseCase interface {
	Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error)
	ListAttendances(ctx context.Context, in ListAttendancesInput) (*ListAttendancesResult, error)
	Summarize(ctx context.Context, in SummaryInput) (*Summary, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager, policy LatenessPolicy) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx, policy: policy, locks: newKeyedMutex()}
}

// SubmitInput は打刻時の入力です。At がゼロ値の場合は現在時刻を用います。
type SubmitInput struct {
	EmployeeID   string
	At           time.Time
	Location     *geo.Coordinate
	LocationName *string
	OutletID     *string
}

// SubmitResult は打刻結果です。
type SubmitResult struct {
	Action Action
	Record *Record
}

// ListAttendancesInput は一覧取得時の入力です。To は当日の終わりまでを含みます。
type ListAttendancesInput struct {
	EmployeeID string
	Status     *Status
	From       *time.Time
	To         *time.Time
	PageSize   int
	PageToken  string
}

// ListAttendancesResult は一覧取得結果です。
type ListAttendancesResult struct {
	Records       []*Record
	NextPageToken string
}

// SummaryInput は集計時の入力です。
type SummaryInput struct {
	EmployeeID string
	Status     *Status
	From       *time.Time
	To         *time.Time
}

// Submit は社員の直近の記録を確認し、開いた記録があれば退勤、なければ出勤として記録します。
// 同一社員への同時打刻は直列化され、開いた記録が 2 件になることはありません。
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	employeeID, err := normalizeEmployeeID(in.EmployeeID)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(employeeID)
	defer unlock()

	at := in.At
	if at.IsZero() {
		at = s.clock.Now()
	}

	var result *SubmitResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockEmployee(txCtx, employeeID); err != nil {
			return err
		}

		latest, err := s.repo.FindLatestByEmployee(txCtx, employeeID)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}

		if latest.IsOpen() {
			closed, err := s.clockOut(txCtx, latest, at)
			if err != nil {
				return err
			}
			result = &SubmitResult{Action: ActionClockOut, Record: closed}
			return nil
		}

		created, err := s.clockIn(txCtx, employeeID, at, in)
		if err != nil {
			return err
		}
		result = &SubmitResult{Action: ActionClockIn, Record: created}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

func (s *Service) clockOut(ctx context.Context, open *Record, at time.Time) (*Record, error) {
	out := at
	open.ClockOutTime = &out
	open.WorkMinutes = wholeMinutes(at.Sub(open.ClockInTime))
	open.UpdatedAt = s.clock.Now()

	closed, err := s.repo.Close(ctx, open)
	if err != nil {
		return nil, err
	}
	return closed, nil
}

func (s *Service) clockIn(ctx context.Context, employeeID string, at time.Time, in SubmitInput) (*Record, error) {
	status, late := s.policy.Evaluate(s.clock.Now(), at)

	now := s.clock.Now()
	rec := &Record{
		EmployeeID:   employeeID,
		ClockInTime:  at,
		Status:       status,
		LateMinutes:  late,
		Location:     cloneCoordinate(in.Location),
		LocationName: normalizeOptional(in.LocationName),
		OutletID:     normalizeOptional(in.OutletID),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, ErrOpenRecordExists) {
			return nil, fmt.Errorf("employee %s: %w", employeeID, err)
		}
		return nil, err
	}
	return created, nil
}

// ListAttendances は勤怠記録を出勤時刻の降順で取得します。
func (s *Service) ListAttendances(ctx context.Context, in ListAttendancesInput) (*ListAttendancesResult, error) {
	filter, err := s.buildListFilter(in.EmployeeID, in.Status, in.From, in.To)
	if err != nil {
		return nil, err
	}

	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}
	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}
	filter.Limit = limit
	filter.Offset = offset

	var (
		records   []*Record
		nextToken string
	)
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, token, err := s.repo.List(txCtx, filter)
		if err != nil {
			return err
		}
		records = found
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListAttendancesResult{Records: records, NextPageToken: nextToken}, nil
}

// Summarize は条件に合う勤怠記録の件数と遅刻率を集計します。
func (s *Service) Summarize(ctx context.Context, in SummaryInput) (*Summary, error) {
	filter, err := s.buildListFilter(in.EmployeeID, in.Status, in.From, in.To)
	if err != nil {
		return nil, err
	}

	var summary *Summary
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.Summarize(txCtx, SummaryFilter{
			EmployeeID: filter.EmployeeID,
			Status:     filter.Status,
			From:       filter.From,
			To:         filter.To,
			TodayStart: s.policy.StartOfDay(s.clock.Now()),
		})
		if err != nil {
			return err
		}
		summary = found
		return nil
	}); err != nil {
		return nil, err
	}

	if summary.Total > 0 {
		summary.LatePercentage = math.Round(float64(summary.Late)/float64(summary.Total)*1000) / 10
	}
	return summary, nil
}

func (s *Service) buildListFilter(employeeID string, status *Status, from, to *time.Time) (ListFilter, error) {
	var filter ListFilter

	if strings.TrimSpace(employeeID) != "" {
		id, err := normalizeEmployeeID(employeeID)
		if err != nil {
			return ListFilter{}, err
		}
		filter.EmployeeID = id
	}

	if status != nil {
		if !isValidStatus(*status) {
			return ListFilter{}, ErrInvalidStatus
		}
		st := *status
		filter.Status = &st
	}

	if from != nil {
		start := s.policy.StartOfDay(*from)
		filter.From = &start
	}
	if to != nil {
		end := s.policy.StartOfDay(*to).AddDate(0, 0, 1).Add(-time.Nanosecond)
		filter.To = &end
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return ListFilter{}, ErrInvalidDateRange
	}

	return filter, nil
}

func normalizeEmployeeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmployeeID
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%q: %w", trimmed, ErrInvalidEmployeeID)
	}
	return id.String(), nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func cloneCoordinate(c *geo.Coordinate) *geo.Coordinate {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusOnTime, StatusLate:
		return true
	default:
		return false
	}
}

func normalizePageSize(pageSize int) (int, error) {
	if pageSize <= 0 {
		return defaultListPageSize, nil
	}
	if pageSize > maxListPageSize {
		return 0, ErrInvalidPageSize
	}
	return pageSize, nil
}

func parsePageToken(token string) (int, error) {
	if strings.TrimSpace(token) == "" {
		return 0, nil
	}

	offset, err := strconv.Atoi(token)
	if err != nil || offset < 0 {
		return 0, ErrInvalidPageToken
	}

	return offset, nil
}
