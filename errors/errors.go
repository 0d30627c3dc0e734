package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/kostaleonard/leocoin/jsonx"
)

// Code identifies a failure kind. Every error produced by the node carries one.
type Code string

const (
	CodeInvalidInput                 Code = "invalid_input"
	CodeBufferTooSmall               Code = "buffer_too_small"
	CodeInvalidCommandPrefix         Code = "invalid_command_prefix"
	CodeInvalidCommand               Code = "invalid_command"
	CodeInvalidCommandLength         Code = "invalid_command_length"
	CodeSignatureTooLong             Code = "signature_too_long"
	CodeCouldNotFindValidProofOfWork Code = "could_not_find_valid_proof_of_work"
	CodeNetworkFunction              Code = "network_function"
	CodeInvalidBlockchain            Code = "invalid_blockchain"
	CodeStoppedEarly                 Code = "stopped_early"
	CodeFileIO                       Code = "file_io"
)

// Error is a coded node error.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	out, _ := jsonx.Marshal(Error{Code: e.Code, Message: e.Message})
	return string(out)
}

// Is matches any error of the same code, so the package sentinels work with
// errors.Is regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

var (
	ErrInvalidInput                 = &Error{Code: CodeInvalidInput}
	ErrBufferTooSmall               = &Error{Code: CodeBufferTooSmall}
	ErrInvalidCommandPrefix         = &Error{Code: CodeInvalidCommandPrefix}
	ErrInvalidCommand               = &Error{Code: CodeInvalidCommand}
	ErrInvalidCommandLength         = &Error{Code: CodeInvalidCommandLength}
	ErrSignatureTooLong             = &Error{Code: CodeSignatureTooLong}
	ErrCouldNotFindValidProofOfWork = &Error{Code: CodeCouldNotFindValidProofOfWork}
	ErrNetworkFunction              = &Error{Code: CodeNetworkFunction}
	ErrInvalidBlockchain            = &Error{Code: CodeInvalidBlockchain}
	ErrStoppedEarly                 = &Error{Code: CodeStoppedEarly}
	ErrFileIO                       = &Error{Code: CodeFileIO}
)

// NewError creates a new Error and returns it as error interface
func NewError(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...interface{}) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code of the first coded error in err's chain, or the
// empty code.
func CodeOf(err error) Code {
	var coded *Error
	if stderrors.As(err, &coded) {
		return coded.Code
	}
	return ""
}
