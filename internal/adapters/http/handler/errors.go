package handler

import (
	"errors"
	"net/http"

	"github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/apiv1"
	"github.com/ogurasousui/codex-face-attendance/internal/core/attendance"
	"github.com/ogurasousui/codex-face-attendance/internal/core/face"
	"github.com/ogurasousui/codex-face-attendance/internal/core/scan"
)

// Code はエラー応答の種別です。
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodePayloadTooLarge Code = "PAYLOAD_TOO_LARGE"
	CodeInternal        Code = "INTERNAL"
)

type errDTO struct {
	Error struct {
		Code    Code   `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErr(code Code, msg string) errDTO {
	var e errDTO
	e.Error.Code = code
	e.Error.Message = msg
	return e
}

func apiErrFrom(err error) errDTO {
	switch toHTTPStatus(err) {
	case http.StatusBadRequest:
		return apiErr(CodeInvalidArgument, err.Error())
	case http.StatusNotFound:
		return apiErr(CodeNotFound, err.Error())
	default:
		return apiErr(CodeInternal, "internal error")
	}
}

func toHTTPStatus(err error) int {
	switch {
	case errors.Is(err, scan.ErrImageRequired),
		errors.Is(err, face.ErrInvalidImage),
		errors.Is(err, apiv1.ErrInvalidDate),
		errors.Is(err, attendance.ErrInvalidEmployeeID),
		errors.Is(err, attendance.ErrInvalidStatus),
		errors.Is(err, attendance.ErrInvalidPageSize),
		errors.Is(err, attendance.ErrInvalidPageToken),
		errors.Is(err, attendance.ErrInvalidDateRange):
		return http.StatusBadRequest
	case errors.Is(err, attendance.ErrEmployeeNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func outcomeStatus(kind scan.Kind) int {
	switch kind {
	case scan.KindSuccess:
		return http.StatusOK
	case scan.KindOutsideGeofence:
		return http.StatusForbidden
	case scan.KindNoFaceDetected:
		return http.StatusUnprocessableEntity
	case scan.KindNotRecognized:
		return http.StatusUnauthorized
	case scan.KindNoEnrolledFaces:
		return http.StatusNotFound
	case scan.KindExtractionTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
