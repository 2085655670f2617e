package employee

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
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

	defaultBackfillBatch = 100
)

var employeeCodePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Service は社員登録と顔記述子の管理に関するユースケースをまとめます。
type Service struct {
	repo        Repository
	extractor   face.Extractor
	clock       Clock
	tx          TransactionManager
	purger      AttendancePurger
	invalidator RosterInvalidator
}

// UseCase は社員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
	BackfillDescriptors(ctx context.Context, in BackfillInput) (*BackfillReport, error)
}

// Option は Service の任意設定です。
type Option func(*Service)

// WithAttendancePurger は社員削除時に勤怠記録を削除する実装を設定します。
func WithAttendancePurger(p AttendancePurger) Option {
	return func(s *Service) {
		s.purger = p
	}
}

// WithRosterInvalidator は記述子変更時に破棄する照合キャッシュを設定します。
func WithRosterInvalidator(inv RosterInvalidator) Option {
	return func(s *Service) {
		s.invalidator = inv
	}
}

// NewService は Service を生成します。
func NewService(repo Repository, extractor face.Extractor, clock Clock, tx TransactionManager, opts ...Option) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	s := &Service{repo: repo, extractor: extractor, clock: clock, tx: tx}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateEmployeeInput は社員作成時の入力です。Photo はデコード済みの画像です。
type CreateEmployeeInput struct {
	Code       string
	Name       string
	Department *string
	Photo      []byte
}

// UpdateEmployeeInput は社員更新時の入力です。
// PhotoSet が true の場合は Photo で置き換え、Photo が空なら写真と記述子を削除します。
type UpdateEmployeeInput struct {
	ID         string
	Code       *string
	Name       *string
	Department *string
	Photo      []byte
	PhotoSet   bool
}

// DeleteEmployeeInput は社員削除時の入力です。
type DeleteEmployeeInput struct {
	ID string
}

// GetEmployeeInput は社員取得時の入力です。
type GetEmployeeInput struct {
	ID string
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Department    *string
	HasDescriptor *bool
	PageSize      int
	PageToken     string
}

// ListEmployeesResult は一覧取得結果を表します。
type ListEmployeesResult struct {
	Employees     []*Employee
	NextPageToken string
}

// BackfillInput は記述子一括再計算の入力です。Limit が 0 以下なら既定値を用います。
// After には前回の BackfillReport.Next を渡し、顔が検出できなかった社員を再処理せずに先へ進みます。
type BackfillInput struct {
	Limit int
	After *BackfillCursor
}

// CreateEmployee は新しい社員を登録します。写真がある場合は記述子を算出します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	code, err := normalizeEmployeeCode(in.Code)
	if err != nil {
		return nil, err
	}

	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	descriptor, err := s.computeDescriptor(ctx, in.Photo)
	if err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmployeeCodeNotExists(txCtx, code); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			Code:       code,
			Name:       name,
			Department: normalizeOptional(in.Department),
			Photo:      clonePhoto(in.Photo),
			Descriptor: descriptor,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	if created.HasDescriptor() {
		s.invalidateRoster()
	}
	return created, nil
}

// UpdateEmployee は社員情報を更新します。写真が変わった場合は記述子を再計算します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var descriptor face.Descriptor
	if in.PhotoSet {
		descriptor, err = s.computeDescriptor(ctx, in.Photo)
		if err != nil {
			return nil, err
		}
	}

	var (
		updated           *Employee
		descriptorChanged bool
	)
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if in.Code != nil {
			code, err := normalizeEmployeeCode(*in.Code)
			if err != nil {
				return err
			}
			if code != existing.Code {
				if err := s.ensureEmployeeCodeNotExists(txCtx, code); err != nil {
					return err
				}
				existing.Code = code
			}
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			if name != existing.Name {
				existing.Name = name
				descriptorChanged = existing.HasDescriptor()
			}
		}

		if in.Department != nil {
			existing.Department = normalizeOptional(in.Department)
		}

		if in.PhotoSet {
			descriptorChanged = descriptorChanged || existing.HasDescriptor() || len(descriptor) > 0
			existing.Photo = clonePhoto(in.Photo)
			existing.Descriptor = descriptor
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	if descriptorChanged {
		s.invalidateRoster()
	}
	return updated, nil
}

// DeleteEmployee は社員とその勤怠記録を同一トランザクションで削除します。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, id); err != nil {
			return err
		}
		if s.purger != nil {
			if _, err := s.purger.DeleteByEmployee(txCtx, id); err != nil {
				return fmt.Errorf("purge attendances: %w", err)
			}
		}
		return s.repo.Delete(txCtx, id)
	}); err != nil {
		return err
	}

	s.invalidateRoster()
	return nil
}

// GetEmployee は社員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は社員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) (*ListEmployeesResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var (
		employees []*Employee
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		resultEmployees, token, err := s.repo.List(txCtx, ListEmployeesFilter{
			Department:    normalizeOptional(in.Department),
			HasDescriptor: in.HasDescriptor,
			Limit:         limit,
			Offset:        offset,
		})
		if err != nil {
			return err
		}
		employees = resultEmployees
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListEmployeesResult{Employees: employees, NextPageToken: nextToken}, nil
}

// BackfillDescriptors は写真があり記述子が未算出の社員について記述子を算出します。
// 個々の失敗は BackfillReport に記録し、処理は継続します。
func (s *Service) BackfillDescriptors(ctx context.Context, in BackfillInput) (*BackfillReport, error) {
	if s.extractor == nil {
		return nil, ErrExtractorUnavailable
	}

	limit := in.Limit
	if limit <= 0 {
		limit = defaultBackfillBatch
	}

	var pending []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.ListMissingDescriptors(txCtx, in.After, limit)
		if err != nil {
			return err
		}
		pending = found
		return nil
	}); err != nil {
		return nil, err
	}

	report := &BackfillReport{}
	for _, emp := range pending {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Processed++
		report.Next = &BackfillCursor{CreatedAt: emp.CreatedAt, ID: emp.ID}

		descriptor, err := s.extractor.Extract(ctx, emp.Photo)
		if errors.Is(err, face.ErrNoFace) {
			report.NoFace++
			continue
		}
		if err == nil {
			err = descriptor.Validate()
		}
		if err != nil {
			report.Failed++
			report.Failures = append(report.Failures, BackfillFailure{EmployeeID: emp.ID, Err: err})
			continue
		}

		if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
			return s.repo.UpdateDescriptor(txCtx, emp.ID, descriptor, s.clock.Now())
		}); err != nil {
			report.Failed++
			report.Failures = append(report.Failures, BackfillFailure{EmployeeID: emp.ID, Err: err})
			continue
		}
		report.Updated++
	}

	if report.Updated > 0 {
		s.invalidateRoster()
	}
	return report, nil
}

// computeDescriptor は写真から記述子を算出します。写真が無い場合や顔が検出できない場合は nil を返します。
func (s *Service) computeDescriptor(ctx context.Context, photo []byte) (face.Descriptor, error) {
	if len(photo) == 0 {
		return nil, nil
	}
	if s.extractor == nil {
		return nil, ErrExtractorUnavailable
	}

	descriptor, err := s.extractor.Extract(ctx, photo)
	if errors.Is(err, face.ErrNoFace) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescriptorExtraction, err)
	}
	if err := descriptor.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDescriptorExtraction, err)
	}
	return descriptor, nil
}

func (s *Service) invalidateRoster() {
	if s.invalidator != nil {
		s.invalidator.Invalidate()
	}
}

func (s *Service) ensureEmployeeCodeNotExists(ctx context.Context, code string) error {
	emp, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if emp != nil {
		return ErrEmployeeCodeAlreadyExists
	}
	return nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("id: %w", ErrInvalidID)
	}
	id, err := uuid.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("id %q: %w", trimmed, ErrInvalidID)
	}
	return id.String(), nil
}

func normalizeEmployeeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmployeeCode
	}

	lower := strings.ToLower(trimmed)
	if !employeeCodePattern.MatchString(lower) {
		return "", ErrInvalidEmployeeCode
	}
	return lower, nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeOptional(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func clonePhoto(photo []byte) []byte {
	if len(photo) == 0 {
		return nil
	}
	out := make([]byte, len(photo))
	copy(out, photo)
	return out
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
