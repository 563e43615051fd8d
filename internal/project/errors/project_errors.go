package projecterrors

import (
	"net/http"

	"go-crewpay/internal/shared/apperror"
)

var (
	ErrProjectNotFound = apperror.New(
		apperror.CodeNotFound,
		"Project not found",
		http.StatusNotFound,
	)
	ErrInvalidProjectID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid project ID",
		http.StatusBadRequest,
	)
)
