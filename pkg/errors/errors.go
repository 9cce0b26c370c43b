package errors

import (
	stdErrors "errors"
	"fmt"
)

type Code string

const (
	// CodeMalformedResponse marks a payload that matches neither recognized
	// response shape. Recoverable: callers can log and discard the response.
	CodeMalformedResponse Code = "MALFORMED_RESPONSE"
	// CodeDecodeFailure marks a raw body that could not be decoded into a
	// payload mapping at all.
	CodeDecodeFailure Code = "DECODE_FAILURE"
	// CodeInvalidState marks an accessor called before a payload was set or
	// in the wrong response state. This is a programming contract violation,
	// not a runtime condition to retry.
	CodeInvalidState Code = "INVALID_STATE"
)

type Metadata struct {
	Recoverable    bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeMalformedResponse: {
		Recoverable:    true,
		PublicMessage:  "response payload is malformed",
		DetailsAllowed: true,
	},
	CodeDecodeFailure: {
		Recoverable:    true,
		PublicMessage:  "response body could not be decoded",
		DetailsAllowed: true,
	},
	CodeInvalidState: {
		Recoverable:    false,
		PublicMessage:  "response accessed in an invalid state",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInvalidState]
}

type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInvalidState
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

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.code, e.message, e.cause)
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
