package apperror

import (
	"fmt"
	"net/http"
)

var (
	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInvalidInput = New(
		CodeInvalidInput,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrStorageFailure = New(
		CodeStorageFailure,
		"Failed to persist uploaded file",
		http.StatusInternalServerError,
	)
)

func RequiredField(field string) *AppError {
	return New(
		CodeValidationError,
		fmt.Sprintf("%s is required", field),
		http.StatusUnprocessableEntity,
	)
}

func InvalidField(field string) *AppError {
	return New(
		CodeValidationError,
		fmt.Sprintf("%s is invalid", field),
		http.StatusUnprocessableEntity,
	)
}
