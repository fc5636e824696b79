package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrInvalidID        = &AppError{http.StatusBadRequest, "INVALID_ID", "Contact id must be an integer"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrEmptyUpdate   = &AppError{http.StatusBadRequest, "EMPTY_UPDATE", "At least one field must be provided"}
	ErrBatchTooLarge = &AppError{http.StatusBadRequest, "BATCH_TOO_LARGE", "Too many log entries in one request"}
	ErrInvalidHours  = &AppError{http.StatusBadRequest, "INVALID_HOURS", "hours must be a positive integer"}
)
