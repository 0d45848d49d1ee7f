// Package apperr 业务错误分类，handler 据此映射 HTTP 状态码
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code 错误类型
type Code string

const (
	CodeUnauthorized    Code = "unauthorized"
	CodeForbidden       Code = "forbidden"
	CodeNotFound        Code = "not_found"
	CodeAlreadyShared   Code = "already_shared"
	CodeInvalidCode     Code = "invalid_code"
	CodeValidation      Code = "validation"
	CodePending         Code = "pending"
	CodeTooManyRequests Code = "too_many_requests"
	CodeConflict        Code = "conflict"
	CodeInternal        Code = "internal"
)

// Error 业务错误
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus 对应的 HTTP 状态码
func (e *Error) HTTPStatus() int {
	return StatusOf(e.Code)
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap 包装底层错误
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

func Forbidden(message string) *Error {
	return New(CodeForbidden, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func AlreadyShared(message string) *Error {
	return New(CodeAlreadyShared, message)
}

func InvalidCode(message string) *Error {
	return New(CodeInvalidCode, message)
}

func Validation(message string) *Error {
	return New(CodeValidation, message)
}

func Pending(message string) *Error {
	return New(CodePending, message)
}

func TooManyRequests(message string) *Error {
	return New(CodeTooManyRequests, message)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

// Internal 内部错误，message 面向用户，err 仅写日志
func Internal(message string, err error) *Error {
	return Wrap(CodeInternal, message, err)
}

// As 提取业务错误
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is 判断错误类型
func Is(err error, code Code) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// CodeOf 非业务错误视为 internal
func CodeOf(err error) Code {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return CodeInternal
}

// StatusOf 错误类型到 HTTP 状态码
func StatusOf(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeAlreadyShared, CodePending, CodeConflict:
		return http.StatusConflict
	case CodeInvalidCode, CodeValidation:
		return http.StatusBadRequest
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
