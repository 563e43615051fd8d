package debterrors

import (
	"net/http"

	"go-crewpay/internal/shared/apperror"
)

var (
	ErrInstrumentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Debt instrument not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found for this debt instrument",
		http.StatusNotFound,
	)
	ErrInvalidInstrumentID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid debt instrument ID",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"Amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidKind = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown debt instrument kind",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrMissingListFilter = apperror.New(
		apperror.CodeInvalidInput,
		"Either employee_id or status filter is required",
		http.StatusBadRequest,
	)
	ErrInvalidDirection = apperror.New(
		apperror.CodeInvalidInput,
		"Settlement direction must be apply or revert",
		http.StatusBadRequest,
	)
)
