package errcode

import (
	"fmt"

	"github.com/pkg/errors"
)

// Code is the kind of a failure. Codes are errors themselves so callers can
// test with errors.Is(err, errcode.IoFailure).
type Code int

const (
	CodeSuccess Code = iota
	ParseFailure
	InvalidAddressLength
	IoFailure
	NoInterfaceFound
	InvalidHardwareAddress
	UnsupportedChannel
)

var code2str = map[Code]string{
	CodeSuccess:            "success",
	ParseFailure:           "parse failure",
	InvalidAddressLength:   "invalid address length",
	IoFailure:              "io failure",
	NoInterfaceFound:       "no interface found",
	InvalidHardwareAddress: "invalid hardware address",
	UnsupportedChannel:     "unsupported channel",
}

func (c Code) String() string {
	s, ok := code2str[c]
	if !ok {
		return fmt.Sprintf("unknown code: %d", c)
	}
	return s
}

func (c Code) Error() string { return c.String() }

type ErrorCode struct {
	code    Code
	message string
	cause   error
}

func (e ErrorCode) Code() Code { return e.code }
func (e ErrorCode) Message() string {
	if e.message == "" {
		return e.code.String()
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e ErrorCode) Error() string {
	if e.cause == nil {
		return e.Message()
	}
	return fmt.Sprintf("%s: %v", e.Message(), e.cause)
}

func (e ErrorCode) Unwrap() error { return e.cause }

func (e ErrorCode) Is(target error) bool {
	switch t := target.(type) {
	case Code:
		return e.code == t
	case ErrorCode:
		return e.code == t.code
	}
	return false
}

func New(code Code, format string, a ...any) ErrorCode {
	return ErrorCode{
		code:    code,
		message: fmt.Sprintf(format, a...),
	}
}

// Wrap attaches code and context to err, the cause stays reachable through
// errors.Is and errors.As.
func Wrap(code Code, err error, format string, a ...any) ErrorCode {
	return ErrorCode{
		code:    code,
		message: fmt.Sprintf(format, a...),
		cause:   err,
	}
}

// KindOf returns the code of the first ErrorCode in err's chain, or
// CodeSuccess for nil.
func KindOf(err error) (Code, bool) {
	if err == nil {
		return CodeSuccess, true
	}

	var e ErrorCode
	if errors.As(err, &e) {
		return e.code, true
	}

	var c Code
	if errors.As(err, &c) {
		return c, true
	}
	return CodeSuccess, false
}
