package foremanerrors

import (
	"net/http"

	"go-crewpay/internal/shared/apperror"
)

var (
	ErrLedgerNotFound = apperror.New(
		apperror.CodeNotFound,
		"Foreman ledger not found",
		http.StatusNotFound,
	)
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"Ledger entry not found",
		http.StatusNotFound,
	)
	ErrDuplicateAssignment = apperror.New(
		apperror.CodeConflict,
		"A ledger already exists for this foreman and project",
		http.StatusConflict,
	)
	ErrLedgerConflict = apperror.New(
		apperror.CodeConflict,
		"Ledger was modified concurrently, retry the operation",
		http.StatusConflict,
	)
	ErrInvalidLedgerID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid foreman ledger ID",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrMirrorRemovalFailed = apperror.New(
		apperror.CodeServiceUnavailable,
		"Could not remove the mirrored project cost entry, ledger line left untouched",
		http.StatusServiceUnavailable,
	)
)
