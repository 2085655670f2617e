package handler

import (
	"context"
	"time"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/apiv1"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/scan"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Scanner はスキャン判定を実行します。
type Scanner interface {
	ProcessScan(ctx context.Context, req scan.Request) (*scan.Outcome, error)
}

// AttendanceGrpcHandler は AttendanceService の gRPC 実装です。
type AttendanceGrpcHandler struct {
	scanner Scanner
	svc     attendance.UseCase
	loc     *time.Location
	apiv1.UnimplementedAttendanceServiceServer
}

// NewAttendanceGrpcHandler は AttendanceGrpcHandler を生成します。loc は日付条件の解釈に用います。
func NewAttendanceGrpcHandler(scanner Scanner, svc attendance.UseCase, loc *time.Location) *AttendanceGrpcHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceGrpcHandler{scanner: scanner, svc: svc, loc: loc}
}

// Scan は顔画像と位置情報から打刻を判定します。拒否理由は応答の Outcome で返します。
func (h *AttendanceGrpcHandler) Scan(ctx context.Context, req *apiv1.ScanRequest) (*apiv1.ScanResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	scanReq, err := req.Decode()
	if err != nil {
		return nil, toStatusError(err)
	}

	out, err := h.scanner.ProcessScan(ctx, scanReq)
	if err != nil {
		return nil, toStatusError(err)
	}

	return apiv1.FromOutcome(out), nil
}

// ListAttendances は勤怠記録の一覧を取得します。
func (h *AttendanceGrpcHandler) ListAttendances(ctx context.Context, req *apiv1.ListAttendancesRequest) (*apiv1.ListAttendancesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in, err := req.Input(h.loc)
	if err != nil {
		return nil, toStatusError(err)
	}

	result, err := h.svc.ListAttendances(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.ListAttendancesResponse{
		Attendances:   apiv1.FromRecords(result.Records),
		NextPageToken: result.NextPageToken,
	}, nil
}

// GetAttendanceSummary は勤怠記録を集計します。
func (h *AttendanceGrpcHandler) GetAttendanceSummary(ctx context.Context, req *apiv1.GetAttendanceSummaryRequest) (*apiv1.GetAttendanceSummaryResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in, err := req.Input(h.loc)
	if err != nil {
		return nil, toStatusError(err)
	}

	summary, err := h.svc.Summarize(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return apiv1.FromSummary(summary), nil
}
