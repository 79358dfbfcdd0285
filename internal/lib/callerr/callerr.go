// Package callerr описывает ошибки вызываемых операций с кодом, который
// клиент получает вместе с сообщением.
package callerr

import (
	"errors"
	"net/http"
)

// Code код ошибки вызываемой операции.
type Code string

const (
	Unauthenticated Code = "unauthenticated"
	InvalidArgument Code = "invalid-argument"
	Internal        Code = "internal"
)

// Error ошибка с кодом и сообщением для клиента. Err хранит причину для логов.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Code) + ": " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создаёт ошибку без причины.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap создаёт ошибку с причиной err.
func Wrap(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf возвращает код ошибки. Ошибки без кода считаются внутренними.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Internal
}

// MessageOf возвращает сообщение для клиента. Текст внутренних ошибок без кода не раскрывается.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}

// HTTPStatus переводит код ошибки в статус HTTP.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case Unauthenticated:
		return http.StatusUnauthorized
	case InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
