package handler

import (
	"context"
	"strings"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/apiv1"
	"github.com/ogurasousui/codex-face-attendance/internal/core/outlet"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// OutletGrpcHandler は OutletService の gRPC 実装です。
type OutletGrpcHandler struct {
	svc outlet.UseCase
	apiv1.UnimplementedOutletServiceServer
}

// NewOutletGrpcHandler は OutletGrpcHandler を生成します。
func NewOutletGrpcHandler(svc outlet.UseCase) *OutletGrpcHandler {
	return &OutletGrpcHandler{svc: svc}
}

// CreateOutlet は店舗を作成します。
func (h *OutletGrpcHandler) CreateOutlet(ctx context.Context, req *apiv1.CreateOutletRequest) (*apiv1.CreateOutletResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	created, err := h.svc.CreateOutlet(ctx, outlet.CreateOutletInput{
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
		Status:       toOutletDomainStatus(req.Status),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.CreateOutletResponse{Outlet: apiv1.FromOutlet(created)}, nil
}

// UpdateOutlet は店舗を更新します。
func (h *OutletGrpcHandler) UpdateOutlet(ctx context.Context, req *apiv1.UpdateOutletRequest) (*apiv1.UpdateOutletResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	updated, err := h.svc.UpdateOutlet(ctx, outlet.UpdateOutletInput{
		ID:           req.ID,
		Name:         req.Name,
		Address:      req.Address,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: req.RadiusMeters,
		Status:       toOutletDomainStatus(req.Status),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.UpdateOutletResponse{Outlet: apiv1.FromOutlet(updated)}, nil
}

// DeleteOutlet は店舗を削除します。
func (h *OutletGrpcHandler) DeleteOutlet(ctx context.Context, req *apiv1.DeleteOutletRequest) (*apiv1.DeleteOutletResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := h.svc.DeleteOutlet(ctx, outlet.DeleteOutletInput{ID: req.ID}); err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.DeleteOutletResponse{}, nil
}

// GetOutlet は店舗を取得します。
func (h *OutletGrpcHandler) GetOutlet(ctx context.Context, req *apiv1.GetOutletRequest) (*apiv1.GetOutletResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.GetOutlet(ctx, outlet.GetOutletInput{ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.GetOutletResponse{Outlet: apiv1.FromOutlet(found)}, nil
}

// ListOutlets は店舗の一覧を取得します。
func (h *OutletGrpcHandler) ListOutlets(ctx context.Context, req *apiv1.ListOutletsRequest) (*apiv1.ListOutletsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.svc.ListOutlets(ctx, outlet.ListOutletsInput{
		PageSize:  int(req.PageSize),
		PageToken: req.PageToken,
		Status:    toOutletDomainStatus(req.Status),
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	outlets := make([]*apiv1.Outlet, 0, len(result.Outlets))
	for _, o := range result.Outlets {
		outlets = append(outlets, apiv1.FromOutlet(o))
	}

	return &apiv1.ListOutletsResponse{
		Outlets:       outlets,
		NextPageToken: result.NextPageToken,
	}, nil
}

func toOutletDomainStatus(raw string) *outlet.Status {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return nil
	}
	st := outlet.Status(trimmed)
	return &st
}
