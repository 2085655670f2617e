package attendance

import "errors"

var (
	ErrInvalidEmployeeID   = errors.New("attendance: invalid employee id")
	ErrInvalidStatus       = errors.New("attendance: invalid status")
	ErrInvalidPageSize     = errors.New("attendance: invalid page size")
	ErrInvalidPageToken    = errors.New("attendance: invalid page token")
	ErrInvalidDateRange    = errors.New("attendance: invalid date range")
	ErrInvalidPolicy       = errors.New("attendance: invalid lateness policy")
	ErrEmployeeNotFound    = errors.New("attendance: employee not found")
	ErrRecordNotFound      = errors.New("attendance: record not found")
	ErrOpenRecordExists    = errors.New("attendance: open record already exists")
	ErrRecordAlreadyClosed = errors.New("attendance: record already closed")
)
