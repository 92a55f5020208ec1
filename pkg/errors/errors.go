package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

type Code string

const (
	CodeValidation              Code = "VALIDATION_ERROR"
	CodeInvalidCredentials      Code = "INVALID_CREDENTIALS"
	CodeAuthenticationRequired  Code = "AUTHENTICATION_REQUIRED"
	CodeInvalidToken            Code = "INVALID_TOKEN"
	CodeTokenExpired            Code = "TOKEN_EXPIRED"
	CodeUserNotFound            Code = "USER_NOT_FOUND"
	CodeInsufficientPermissions Code = "INSUFFICIENT_PERMISSIONS"
	CodeVesselNotFound          Code = "VESSEL_NOT_FOUND"
	CodeRouteNotFound           Code = "ROUTE_NOT_FOUND"
	CodeResourceNotFound        Code = "RESOURCE_NOT_FOUND"
	CodeMethodNotAllowed        Code = "METHOD_NOT_ALLOWED"
	CodeDuplicateVessel         Code = "DUPLICATE_VESSEL"
	CodeDuplicateResource       Code = "DUPLICATE_RESOURCE"
	CodeInvalidIDFormat         Code = "INVALID_ID_FORMAT"
	CodeRequestTooLarge         Code = "REQUEST_TOO_LARGE"
	CodeTooManyRequests         Code = "TOO_MANY_REQUESTS"
	CodeTooManyAuthAttempts     Code = "TOO_MANY_AUTH_ATTEMPTS"
	CodeInternal                Code = "INTERNAL_SERVER_ERROR"
	CodeDatabase                Code = "DATABASE_ERROR"
	CodeServiceUnavailable      Code = "SERVICE_UNAVAILABLE"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeInvalidCredentials: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "invalid credentials",
	},
	CodeAuthenticationRequired: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication required",
	},
	CodeInvalidToken: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "invalid or expired authentication token",
	},
	CodeTokenExpired: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "authentication token has expired",
	},
	CodeUserNotFound: {
		HTTPStatus:    http.StatusUnauthorized,
		PublicMessage: "user not found",
	},
	CodeInsufficientPermissions: {
		HTTPStatus:     http.StatusForbidden,
		PublicMessage:  "insufficient permissions",
		DetailsAllowed: true,
	},
	CodeVesselNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "vessel not found",
	},
	CodeRouteNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "route not found",
	},
	CodeResourceNotFound: {
		HTTPStatus:    http.StatusNotFound,
		PublicMessage: "resource not found",
	},
	CodeMethodNotAllowed: {
		HTTPStatus:    http.StatusMethodNotAllowed,
		PublicMessage: "method not allowed",
	},
	CodeDuplicateVessel: {
		HTTPStatus:     http.StatusConflict,
		PublicMessage:  "vessel with this name and voyage number already exists",
		DetailsAllowed: true,
	},
	CodeDuplicateResource: {
		HTTPStatus:    http.StatusConflict,
		PublicMessage: "resource already exists",
	},
	CodeInvalidIDFormat: {
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "invalid id format",
		DetailsAllowed: true,
	},
	CodeRequestTooLarge: {
		HTTPStatus:    http.StatusRequestEntityTooLarge,
		PublicMessage: "request body too large",
	},
	CodeTooManyRequests: {
		HTTPStatus:    http.StatusTooManyRequests,
		Retryable:     true,
		PublicMessage: "too many requests, please try again later",
	},
	CodeTooManyAuthAttempts: {
		HTTPStatus:    http.StatusTooManyRequests,
		Retryable:     true,
		PublicMessage: "too many authentication attempts, please try again later",
	},
	CodeInternal: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "internal server error",
	},
	CodeDatabase: {
		HTTPStatus:    http.StatusInternalServerError,
		Retryable:     true,
		PublicMessage: "database operation failed",
	},
	CodeServiceUnavailable: {
		HTTPStatus:    http.StatusServiceUnavailable,
		Retryable:     true,
		PublicMessage: "service unavailable",
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// IsClientFacing reports whether the code describes a caller mistake (4xx).
func IsClientFacing(code Code) bool {
	status := MetadataFor(code).HTTPStatus
	return status >= 400 && status < 500
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
	stack   []uintptr
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message, stack: callers()}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err, stack: callers()}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// Stack renders the frames captured when the error was constructed.
func (e *Error) Stack() string {
	if e == nil || len(e.stack) == 0 {
		return ""
	}
	frames := runtime.CallersFrames(e.stack)
	var b strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return strings.TrimSpace(b.String())
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

// IsCode reports whether err carries the given code anywhere in its chain.
func IsCode(err error, code Code) bool {
	typed := As(err)
	return typed != nil && typed.Code() == code
}

func callers() []uintptr {
	pcs := make([]uintptr, 32)
	// skip runtime.Callers, callers, and New/Wrap
	n := runtime.Callers(3, pcs)
	return pcs[:n]
}
