package batcherrors

import (
	"net/http"

	"go-crewpay/internal/shared/apperror"
)

var (
	ErrBatchNotFound = apperror.New(
		apperror.CodeNotFound,
		"Payroll batch not found",
		http.StatusNotFound,
	)
	ErrDuplicateBatch = apperror.New(
		apperror.CodeConflict,
		"A payroll batch already exists for this project, foreman and period date",
		http.StatusConflict,
	)
	ErrEmptyEntries = apperror.New(
		apperror.CodeInvalidInput,
		"Payroll batch requires at least one roster entry",
		http.StatusBadRequest,
	)
	ErrInvalidBatchID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid payroll batch ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidEntryStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Roster entry status must be pending, draft or paid",
		http.StatusBadRequest,
	)
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"Roster entry not found in this batch",
		http.StatusNotFound,
	)
)
