package autherrors

import (
	"net/http"

	"go-absensi/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		"AUTH_FAILED",
		"Email atau password salah",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = apperror.New(
		"INVALID_TOKEN",
		"Token is invalid",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		"TOKEN_EXPIRED",
		"Token has expired",
		http.StatusUnauthorized,
	)

	ErrInvalidRefreshToken = apperror.New(
		"INVALID_REFRESH_TOKEN",
		"Refresh token is invalid",
		http.StatusUnauthorized,
	)

	ErrInvalidUserID = apperror.New(
		"INVALID_USER_ID",
		"User id is not a valid identifier",
		http.StatusBadRequest,
	)

	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"User not found",
		http.StatusNotFound,
	)

	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Failed to generate token",
		http.StatusInternalServerError,
	)

	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"Email is already registered",
		http.StatusConflict,
	)

	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)
)
