package employee

import "errors"

var (
	ErrInvalidID                 = errors.New("employee: invalid id")
	ErrInvalidEmployeeCode       = errors.New("employee: invalid employee code")
	ErrInvalidName               = errors.New("employee: invalid name")
	ErrInvalidPageSize           = errors.New("employee: invalid page size")
	ErrInvalidPageToken          = errors.New("employee: invalid page token")
	ErrEmployeeNotFound          = errors.New("employee: not found")
	ErrEmployeeCodeAlreadyExists = errors.New("employee: employee code already exists")
	ErrExtractorUnavailable      = errors.New("employee: descriptor extractor is not configured")
	ErrDescriptorExtraction      = errors.New("employee: descriptor extraction failed")
	ErrEmployeeHasAttendances    = errors.New("employee: attendance records still reference the employee")
)
