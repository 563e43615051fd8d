package payrollerrors

import (
	"net/http"

	"go-crewpay/internal/shared/apperror"
)

var (
	ErrPeriodNotFound = apperror.New(
		apperror.CodeNotFound,
		"Payroll period not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found for this payroll period",
		http.StatusNotFound,
	)
	ErrPeriodOverlap = apperror.New(
		apperror.CodeConflict,
		"Employee already has a payroll period overlapping this date range",
		http.StatusConflict,
	)
	ErrInvalidPeriodID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid payroll period ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"from_date must not be after to_date",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Payroll period status must be PENDING or PAID",
		http.StatusBadRequest,
	)
)
