package handler

import (
	"context"
	"errors"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/apiv1"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/employee"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"github.com/ogurasousui/codex-face-attendance/internal/core/outlet"
	"github.com/ogurasousui/codex-face-attendance/internal/core/scan"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, scan.ErrImageRequired),
		errors.Is(err, apiv1.ErrInvalidDate),
		errors.Is(err, face.ErrInvalidImage),
		errors.Is(err, attendance.ErrInvalidEmployeeID),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidPageSize),
		errors.Is(err, attendance.ErrInvalidPageToken),
		errors.Is(err, attendance.ErrInvalidDateRange),
		errors.Is(err, employee.ErrInvalidID),
		errors.Is(err, employee.ErrInvalidEmployeeCode),
		errors.Is(err, employee.ErrInvalidName),
		errors.Is(err, employee.ErrInvalidPageSize),
		errors.Is(err, employee.ErrInvalidPageToken),
		errors.Is(err, outlet.ErrInvalidID),
		errors.Is(err, outlet.ErrInvalidName),
		errors.Is(err, outlet.ErrInvalidCoordinate),
		errors.Is(err, outlet.ErrInvalidRadius),
		errors.Is(err, outlet.ErrInvalidStatus),
		errors.Is(err, outlet.ErrInvalidPageSize),
		errors.Is(err, outlet.ErrInvalidPageToken):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, employee.ErrEmployeeCodeAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, outlet.ErrOutletNotFound),
		errors.Is(err, attendance.ErrEmployeeNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, employee.ErrEmployeeHasAttendances),
		errors.Is(err, employee.ErrExtractorUnavailable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, employee.ErrDescriptorExtraction):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
