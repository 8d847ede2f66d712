package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeInvalidToken        = "INVALID_TOKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeDuplicateEmail      = "DUPLICATE_EMAIL"
	CodeAlreadyLiked        = "ALREADY_LIKED"
	CodeNotLiked            = "NOT_LIKED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeInternal            = "INTERNAL_ERROR"
)

// ErrorMessage is a single entry of an error response.
type ErrorMessage struct {
	Msg   string `json:"msg"`
	Param string `json:"param,omitempty"`
}

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Errors []ErrorMessage `json:"errors"`
	Code   string         `json:"code,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Fields  []ErrorMessage
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Messages returns the field messages, or the top-level message when there are none.
func (e *AppError) Messages() []ErrorMessage {
	if len(e.Fields) > 0 {
		return e.Fields
	}
	return []ErrorMessage{{Msg: e.Message}}
}

// Predefined error constructors

// NewNotFoundMessage builds a NOT_FOUND error with a caller-supplied message.
func NewNotFoundMessage(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
	}
}

// NewFieldErrors builds a VALIDATION_ERROR carrying one message per failed field.
func NewFieldErrors(fields ...ErrorMessage) *AppError {
	msg := "Validation failed"
	if len(fields) > 0 {
		msg = fields[0].Msg
	}
	return &AppError{Code: CodeValidation, Message: msg, Fields: fields}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInvalidTokenError(err error) *AppError {
	return &AppError{
		Code:    CodeInvalidToken,
		Message: "Token is not valid",
		Err:     err,
	}
}

func NewInvalidCredentialsError() *AppError {
	return &AppError{Code: CodeInvalidCredentials, Message: "Invalid Credentials"}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewDuplicateEmailError() *AppError {
	return &AppError{Code: CodeDuplicateEmail, Message: "User already exists"}
}

func NewAlreadyLikedError() *AppError {
	return &AppError{Code: CodeAlreadyLiked, Message: "Post already liked"}
}

func NewNotLikedError() *AppError {
	return &AppError{Code: CodeNotLiked, Message: "Post has not yet been liked"}
}

func NewUpstreamUnavailableError(err error) *AppError {
	return &AppError{
		Code:    CodeUpstreamUnavailable,
		Message: "No Github profile found",
		Err:     err,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "Server Error",
		Err:     err,
	}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// StatusFor maps an error to its HTTP status.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeValidation, CodeInvalidCredentials, CodeDuplicateEmail, CodeAlreadyLiked, CodeNotLiked:
		return fiber.StatusBadRequest
	case CodeUnauthorized, CodeInvalidToken:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound, CodeUpstreamUnavailable:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError creates a standardized error response.
// Internal errors never expose their cause to the client.
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != CodeInternal {
		response = ErrorResponse{
			Errors: appErr.Messages(),
			Code:   appErr.Code,
		}
	} else {
		response = ErrorResponse{
			Errors: []ErrorMessage{{Msg: "Server Error"}},
			Code:   CodeInternal,
		}
	}

	return c.Status(status).JSON(response)
}
