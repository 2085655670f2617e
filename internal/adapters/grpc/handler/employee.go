package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/apiv1"
	"github.com/ogurasousui/codex-face-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EmployeeGrpcHandler は EmployeeService の gRPC 実装です。
type EmployeeGrpcHandler struct {
	svc employee.UseCase
	apiv1.UnimplementedEmployeeServiceServer
}

// NewEmployeeGrpcHandler は EmployeeGrpcHandler を生成します。
func NewEmployeeGrpcHandler(svc employee.UseCase) *EmployeeGrpcHandler {
	return &EmployeeGrpcHandler{svc: svc}
}

// CreateEmployee は社員を登録します。写真がある場合は記述子も算出されます。
func (h *EmployeeGrpcHandler) CreateEmployee(ctx context.Context, req *apiv1.CreateEmployeeRequest) (*apiv1.CreateEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	var photo []byte
	if strings.TrimSpace(req.Photo) != "" {
		decoded, err := face.DecodeImage(req.Photo)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("photo: %v", err))
		}
		photo = decoded
	}

	created, err := h.svc.CreateEmployee(ctx, employee.CreateEmployeeInput{
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
		Photo:      photo,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.CreateEmployeeResponse{Employee: apiv1.FromEmployee(created)}, nil
}

// UpdateEmployee は社員情報を更新します。
func (h *EmployeeGrpcHandler) UpdateEmployee(ctx context.Context, req *apiv1.UpdateEmployeeRequest) (*apiv1.UpdateEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := employee.UpdateEmployeeInput{
		ID:         req.ID,
		Code:       req.Code,
		Name:       req.Name,
		Department: req.Department,
	}
	if req.Photo != nil {
		in.PhotoSet = true
		if strings.TrimSpace(*req.Photo) != "" {
			decoded, err := face.DecodeImage(*req.Photo)
			if err != nil {
				return nil, status.Error(codes.InvalidArgument, fmt.Sprintf("photo: %v", err))
			}
			in.Photo = decoded
		}
	}

	updated, err := h.svc.UpdateEmployee(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.UpdateEmployeeResponse{Employee: apiv1.FromEmployee(updated)}, nil
}

// DeleteEmployee は社員と勤怠記録を削除します。
func (h *EmployeeGrpcHandler) DeleteEmployee(ctx context.Context, req *apiv1.DeleteEmployeeRequest) (*apiv1.DeleteEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	if err := h.svc.DeleteEmployee(ctx, employee.DeleteEmployeeInput{ID: req.ID}); err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.DeleteEmployeeResponse{}, nil
}

// GetEmployee は社員を取得します。
func (h *EmployeeGrpcHandler) GetEmployee(ctx context.Context, req *apiv1.GetEmployeeRequest) (*apiv1.GetEmployeeResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	found, err := h.svc.GetEmployee(ctx, employee.GetEmployeeInput{ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}

	return &apiv1.GetEmployeeResponse{Employee: apiv1.FromEmployee(found)}, nil
}

// ListEmployees は社員の一覧を取得します。
func (h *EmployeeGrpcHandler) ListEmployees(ctx context.Context, req *apiv1.ListEmployeesRequest) (*apiv1.ListEmployeesResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.svc.ListEmployees(ctx, employee.ListEmployeesInput{
		Department:    req.Department,
		HasDescriptor: req.HasDescriptor,
		PageSize:      int(req.PageSize),
		PageToken:     req.PageToken,
	})
	if err != nil {
		return nil, toStatusError(err)
	}

	employees := make([]*apiv1.Employee, 0, len(result.Employees))
	for _, emp := range result.Employees {
		employees = append(employees, apiv1.FromEmployee(emp))
	}

	return &apiv1.ListEmployeesResponse{
		Employees:     employees,
		NextPageToken: result.NextPageToken,
	}, nil
}
