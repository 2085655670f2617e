package outlet

import (
	"context"
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

// Service は店舗に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は店舗ユースケースの公開インターフェースです。
type UseCase interface {
	CreateOutlet(ctx context.Context, in CreateOutletInput) (*Outlet, error)
	GetOutlet(ctx context.Context, in GetOutletInput) (*Outlet, error)
	ListOutlets(ctx context.Context, in ListOutletsInput) (*ListOutletsResult, error)
	UpdateOutlet(ctx context.Context, in UpdateOutletInput) (*Outlet, error)
	DeleteOutlet(ctx context.Context, in DeleteOutletInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateOutletInput は店舗作成時の入力です。RadiusMeters が nil の場合は DefaultRadiusMeters を用います。
type CreateOutletInput struct {
	Name         string
	Address      *string
	Latitude     float64
	Longitude    float64
	RadiusMeters *float64
	Status       *Status
}

// UpdateOutletInput は店舗更新時の入力です。
type UpdateOutletInput struct {
	ID           string
	Name         *string
	Address      *string
	Latitude     *float64
	Longitude    *float64
	RadiusMeters *float64
	Status       *Status
}

// DeleteOutletInput は店舗削除時の入力です。
type DeleteOutletInput struct {
	ID string
}

// GetOutletInput は店舗取得時の入力です。
type GetOutletInput struct {
	ID string
}

// ListOutletsInput は一覧取得時の入力です。
type ListOutletsInput struct {
	PageSize  int
	PageToken string
	Status    *Status
}

// ListOutletsResult は一覧取得結果を表します。
type ListOutletsResult struct {
	Outlets       []*Outlet
	NextPageToken string
}

// CreateOutlet は新しい店舗を作成します。
func (s *Service) CreateOutlet(ctx context.Context, in CreateOutletInput) (*Outlet, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	if err := validateCoordinate(in.Latitude, in.Longitude); err != nil {
		return nil, err
	}

	radius := float64(DefaultRadiusMeters)
	if in.RadiusMeters != nil {
		radius, err = normalizeRadius(*in.RadiusMeters)
		if err != nil {
			return nil, err
		}
	}

	status := StatusActive
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status = *in.Status
	}

	var created *Outlet
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Outlet{
			Name:         name,
			Address:      normalizeAddress(in.Address),
			Latitude:     in.Latitude,
			Longitude:    in.Longitude,
			RadiusMeters: radius,
			Status:       status,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
		if err != nil {
			return err
		}
		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateOutlet は店舗情報を更新します。
func (s *Service) UpdateOutlet(ctx context.Context, in UpdateOutletInput) (*Outlet, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var updated *Outlet
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name, err := normalizeName(*in.Name)
			if err != nil {
				return err
			}
			existing.Name = name
		}

		if in.Address != nil {
			existing.Address = normalizeAddress(in.Address)
		}

		if in.Latitude != nil {
			existing.Latitude = *in.Latitude
		}
		if in.Longitude != nil {
			existing.Longitude = *in.Longitude
		}
		if err := validateCoordinate(existing.Latitude, existing.Longitude); err != nil {
			return err
		}

		if in.RadiusMeters != nil {
			radius, err := normalizeRadius(*in.RadiusMeters)
			if err != nil {
				return err
			}
			existing.RadiusMeters = radius
		}

		if in.Status != nil {
			if !isValidStatus(*in.Status) {
				return ErrInvalidStatus
			}
			existing.Status = *in.Status
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

	return updated, nil
}

// DeleteOutlet は店舗を削除します。
func (s *Service) DeleteOutlet(ctx context.Context, in DeleteOutletInput) error {
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

// GetOutlet は ID で店舗を取得します。
func (s *Service) GetOutlet(ctx context.Context, in GetOutletInput) (*Outlet, error) {
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}

	var found *Outlet
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		found = result
		return nil
	}); err != nil {
		return nil, err
	}

	return found, nil
}

// ListOutlets は店舗の一覧を取得します。
func (s *Service) ListOutlets(ctx context.Context, in ListOutletsInput) (*ListOutletsResult, error) {
	limit, err := normalizePageSize(in.PageSize)
	if err != nil {
		return nil, err
	}

	offset, err := parsePageToken(in.PageToken)
	if err != nil {
		return nil, err
	}

	var statusPtr *Status
	if in.Status != nil {
		if !isValidStatus(*in.Status) {
			return nil, ErrInvalidStatus
		}
		status := *in.Status
		statusPtr = &status
	}

	var (
		outlets   []*Outlet
		nextToken string
	)

	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, token, err := s.repo.List(txCtx, ListOutletsFilter{
			Limit:  limit,
			Offset: offset,
			Status: statusPtr,
		})
		if err != nil {
			return err
		}
		outlets = result
		nextToken = token
		return nil
	}); err != nil {
		return nil, err
	}

	return &ListOutletsResult{Outlets: outlets, NextPageToken: nextToken}, nil
}

// ActiveZones は有効な店舗を保存順のジオフェンス区域として返します。
func (s *Service) ActiveZones(ctx context.Context) ([]geo.Zone, error) {
	var zones []geo.Zone
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		outlets, err := s.repo.ListActive(txCtx)
		if err != nil {
			return err
		}
		zones = make([]geo.Zone, 0, len(outlets))
		for _, o := range outlets {
			if o.Status != StatusActive {
				continue
			}
			zones = append(zones, o.Zone())
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return zones, nil
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

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func normalizeAddress(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func normalizeRadius(r float64) (float64, error) {
	if r < 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, ErrInvalidRadius
	}
	return r, nil
}

func validateCoordinate(lat, lng float64) error {
	if math.IsNaN(lat) || math.IsNaN(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

func isValidStatus(status Status) bool {
	switch status {
	case StatusActive, StatusInactive:
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
