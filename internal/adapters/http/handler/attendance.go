package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ogurasousui/codex-face-attendance/internal/adapters/grpc/apiv1"
)

// Scan は POST /api/v1/attendance/scan を処理します。判定結果の種別に応じた HTTP ステータスを返します。
func (h *Handler) Scan(c *gin.Context) {
	if h.maxBodyBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBodyBytes)
	}

	var req apiv1.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, apiErr(CodePayloadTooLarge, "request body too large"))
			return
		}
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid json"))
		return
	}

	scanReq, err := req.Decode()
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	out, err := h.scanner.ProcessScan(c.Request.Context(), scanReq)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	c.JSON(outcomeStatus(out.Kind), apiv1.FromOutcome(out))
}

// ListAttendances は GET /api/v1/attendances を処理します。
func (h *Handler) ListAttendances(c *gin.Context) {
	var req apiv1.ListAttendancesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid query"))
		return
	}

	in, err := req.Input(h.loc)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	result, err := h.svc.ListAttendances(c.Request.Context(), in)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	c.JSON(http.StatusOK, apiv1.ListAttendancesResponse{
		Attendances:   apiv1.FromRecords(result.Records),
		NextPageToken: result.NextPageToken,
	})
}

// GetAttendanceSummary は GET /api/v1/attendances/summary を処理します。
func (h *Handler) GetAttendanceSummary(c *gin.Context) {
	var req apiv1.GetAttendanceSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, apiErr(CodeInvalidArgument, "invalid query"))
		return
	}

	in, err := req.Input(h.loc)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	summary, err := h.svc.Summarize(c.Request.Context(), in)
	if err != nil {
		c.JSON(toHTTPStatus(err), apiErrFrom(err))
		return
	}

	c.JSON(http.StatusOK, apiv1.FromSummary(summary))
}
